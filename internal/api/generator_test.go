package api

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ShayCichocki/bringup/pkg/models"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"confidence": 0.8}`, `{"confidence": 0.8}`},
		{"fenced", "```json\n{\"confidence\": 0.8}\n```", `{"confidence": 0.8}`},
		{"prose around", "Here is the fix:\n{\"confidence\": 0.8}\nDone.", `{"confidence": 0.8}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("extractJSON = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	in := "```python\nprint('hi')\n```"
	if got := stripCodeFences(in); got != "print('hi')" {
		t.Errorf("stripped = %q", got)
	}
	if got := stripCodeFences("plain"); got != "plain" {
		t.Errorf("plain passthrough = %q", got)
	}
}

func TestValidateFix(t *testing.T) {
	tests := []struct {
		name string
		fix  models.GeneratedFix
		want bool
	}{
		{"file change", models.GeneratedFix{FileChanges: map[string]string{"app.py": "x = 1\n"}}, true},
		{"commands only", models.GeneratedFix{Commands: []string{"pip install flask"}}, true},
		{"empty fix", models.GeneratedFix{}, false},
		{"empty content", models.GeneratedFix{FileChanges: map[string]string{"app.py": "  "}}, false},
		{"absolute path", models.GeneratedFix{FileChanges: map[string]string{"/etc/passwd": "x"}}, false},
		{"path escape", models.GeneratedFix{FileChanges: map[string]string{"../outside.py": "x"}}, false},
		{"bad json file", models.GeneratedFix{FileChanges: map[string]string{"package.json": "{broken"}}, false},
		{"good json file", models.GeneratedFix{FileChanges: map[string]string{"package.json": `{"name":"a"}`}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validateFix(&tt.fix); got != tt.want {
				t.Errorf("validateFix = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFixTypeFor(t *testing.T) {
	withFiles := fixReply{Files: map[string]string{"a.py": "x"}}
	if fixTypeFor(withFiles) != models.FixCodeModification {
		t.Error("file replies are code modifications")
	}
	withCommands := fixReply{Commands: []string{"npm install"}}
	if fixTypeFor(withCommands) != models.FixCommand {
		t.Error("command-only replies are command fixes")
	}
}

func TestAffectedFile(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, "app.py"), []byte("import flask\n"), 0o644)

	g := NewGenerator(nil)

	content, rel := g.affectedFile(models.DetectedError{FilePath: "app.py"}, root)
	if content != "import flask\n" || rel != "app.py" {
		t.Errorf("content=%q rel=%q", content, rel)
	}

	content, rel = g.affectedFile(models.DetectedError{FilePath: "missing.py"}, root)
	if content != "" || rel != "missing.py" {
		t.Errorf("missing file: content=%q rel=%q", content, rel)
	}

	if content, _ := g.affectedFile(models.DetectedError{}, root); content != "" {
		t.Errorf("no file path should yield empty content, got %q", content)
	}
}

func TestBuildPrompt(t *testing.T) {
	g := NewGenerator(nil)
	detected := models.DetectedError{
		Category:   models.CategoryRuntime,
		Message:    "RuntimeError: boom",
		LineNumber: 12,
		StackTrace: "Traceback (most recent call last):\n  ...",
		ContextLines: []string{"before", "RuntimeError: boom", "after"},
	}

	prompt := g.buildPrompt(detected, "app.py", "x = 1\n")

	for _, want := range []string{
		"Category: runtime",
		"RuntimeError: boom",
		"File: app.py",
		"Line: 12",
		"Stack trace:",
		"Content of app.py:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
