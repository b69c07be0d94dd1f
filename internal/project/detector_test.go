package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestDetect_NodeWithStartScript(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{
		"name": "demo",
		"main": "server.js",
		"scripts": {"start": "node server.js", "test": "jest"}
	}`)

	p, err := NewDetector().Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if p.Kind != "nodejs" {
		t.Fatalf("kind = %q, want nodejs", p.Kind)
	}
	if p.RunCommand != "npm start" {
		t.Errorf("run command = %q, want 'npm start'", p.RunCommand)
	}
	if p.TestCommand != "npm test" {
		t.Errorf("test command = %q, want 'npm test'", p.TestCommand)
	}
	if p.InstallCommand != "npm install" {
		t.Errorf("install command = %q, want 'npm install'", p.InstallCommand)
	}
	if p.EntryPoint != "server.js" {
		t.Errorf("entry point = %q, want server.js", p.EntryPoint)
	}
}

func TestDetect_NodeMainFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"main": "index.js"}`)

	p, err := NewDetector().Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if p.RunCommand != "node index.js" {
		t.Errorf("run command = %q, want 'node index.js'", p.RunCommand)
	}
}

func TestDetect_ReactBeforeNode(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{
		"dependencies": {"react": "^18.0.0", "react-dom": "^18.0.0"},
		"scripts": {"start": "react-scripts start"}
	}`)

	p, err := NewDetector().Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if p.Kind != "react" {
		t.Fatalf("kind = %q, want react", p.Kind)
	}
	if p.Environment["BROWSER"] != "none" {
		t.Error("react profile must suppress browser auto-open")
	}
}

func TestDetect_NextBeforeReact(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{
		"dependencies": {"next": "14.0.0", "react": "^18.0.0"}
	}`)

	p, err := NewDetector().Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if p.Kind != "nextjs" {
		t.Fatalf("kind = %q, want nextjs", p.Kind)
	}
	if p.BuildCommand != "next build" {
		t.Errorf("build command = %q, want 'next build'", p.BuildCommand)
	}
}

func TestDetect_FlaskFromRequirements(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "Flask==3.0.0\nrequests\n")
	writeFile(t, dir, "app.py", "from flask import Flask\napp = Flask(__name__)\n")

	p, err := NewDetector().Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if p.Kind != "flask" {
		t.Fatalf("kind = %q, want flask", p.Kind)
	}
	if p.Environment["FLASK_APP"] != "app.py" {
		t.Errorf("FLASK_APP = %q, want app.py", p.Environment["FLASK_APP"])
	}
	if len(p.Ports) != 1 || p.Ports[0] != 5000 {
		t.Errorf("ports = %v, want [5000]", p.Ports)
	}
}

func TestDetect_DjangoFromManagePy(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "manage.py", "#!/usr/bin/env python\nimport django\n")
	writeFile(t, dir, "requirements.txt", "Django==5.0\n")

	p, err := NewDetector().Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if p.Kind != "django" {
		t.Fatalf("kind = %q, want django", p.Kind)
	}
	if p.RunCommand != "python manage.py runserver" {
		t.Errorf("run command = %q", p.RunCommand)
	}
	if p.TestCommand != "python manage.py test" {
		t.Errorf("test command = %q", p.TestCommand)
	}
}

func TestDetect_PythonEntryPoint(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.py", "print('hi')\n")
	writeFile(t, dir, "requirements.txt", "requests\n")

	p, err := NewDetector().Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if p.Kind != "python" {
		t.Fatalf("kind = %q, want python", p.Kind)
	}
	if p.RunCommand != "python main.py" {
		t.Errorf("run command = %q, want 'python main.py'", p.RunCommand)
	}
	if p.InstallCommand != "pip install -r requirements.txt" {
		t.Errorf("install command = %q", p.InstallCommand)
	}
}

func TestDetect_GoModule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/demo\n\ngo 1.22\n")

	p, err := NewDetector().Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if p.Kind != "go" {
		t.Fatalf("kind = %q, want go", p.Kind)
	}
	if p.TestCommand != "go test ./..." {
		t.Errorf("test command = %q", p.TestCommand)
	}
}

func TestDetect_Cargo(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Cargo.toml", "[package]\nname = \"demo\"\n")

	p, err := NewDetector().Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if p.Kind != "cargo" {
		t.Fatalf("kind = %q, want cargo", p.Kind)
	}
}

func TestDetect_GenericFallbackAlwaysMatches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "run.sh", "#!/bin/sh\necho hi\n")

	p, err := NewDetector().Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if p.Kind != "generic" {
		t.Fatalf("kind = %q, want generic", p.Kind)
	}
	if p.RunCommand != "bash run.sh" {
		t.Errorf("run command = %q, want 'bash run.sh'", p.RunCommand)
	}
}

func TestDetect_EmptyDirStillGeneric(t *testing.T) {
	p, err := NewDetector().Detect(t.TempDir())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if p.Kind != "generic" {
		t.Fatalf("kind = %q, want generic", p.Kind)
	}
	if p.RunCommand != "" {
		t.Errorf("run command = %q, want empty", p.RunCommand)
	}
}

func TestDetect_MalformedManifestFallsThrough(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", "{not valid json")

	p, err := NewDetector().Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	// A broken manifest still identifies a node project; the profile just
	// has no script-derived commands.
	if p.Kind != "nodejs" {
		t.Fatalf("kind = %q, want nodejs", p.Kind)
	}
	if p.TestCommand != "" {
		t.Errorf("test command = %q, want empty", p.TestCommand)
	}
}

func TestDetect_OverridesApplied(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"scripts": {"start": "node server.js"}}`)
	writeFile(t, dir, ".bringup.yaml", `
project:
  run_command: npm run serve
  ports: [8080]
  environment:
    NODE_ENV: development
`)

	p, err := NewDetector().Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if p.RunCommand != "npm run serve" {
		t.Errorf("run command = %q, want override", p.RunCommand)
	}
	if len(p.Ports) != 1 || p.Ports[0] != 8080 {
		t.Errorf("ports = %v, want [8080]", p.Ports)
	}
	if p.Environment["NODE_ENV"] != "development" {
		t.Errorf("environment override not applied: %v", p.Environment)
	}
	// Detection results not named in the override survive.
	if p.Kind != "nodejs" {
		t.Errorf("kind = %q, want nodejs", p.Kind)
	}
}

func TestDetect_MalformedOverridesError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".bringup.yaml", "project: [not: a: mapping")

	_, err := NewDetector().Detect(dir)
	if err == nil {
		t.Fatal("expected error for malformed override file")
	}
}
