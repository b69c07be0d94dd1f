package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ShayCichocki/bringup/pkg/models"
)

// packageManifest is the subset of package.json that detection cares about.
type packageManifest struct {
	Name            string            `json:"name"`
	Main            string            `json:"main"`
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// readManifest parses package.json defensively; a missing or malformed file
// yields an empty manifest rather than an error, since detection must never
// fail on a broken project (broken projects are the whole point).
func readManifest(root string) packageManifest {
	var m packageManifest
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return m
	}
	_ = json.Unmarshal(data, &m)
	return m
}

func (m packageManifest) hasScript(name string) bool {
	_, ok := m.Scripts[name]
	return ok
}

// hasDependency checks dependencies and devDependencies.
func (m packageManifest) hasDependency(name string) bool {
	if _, ok := m.Dependencies[name]; ok {
		return true
	}
	_, ok := m.DevDependencies[name]
	return ok
}

type nodejsHandler struct{}

func (nodejsHandler) Name() string  { return "nodejs" }
func (nodejsHandler) Priority() int { return 10 }

func (nodejsHandler) Detect(root string) bool {
	return fileExists(root, "package.json")
}

func (h nodejsHandler) Profile(root string) models.ProjectProfile {
	m := readManifest(root)

	var runCmd, devCmd, testCmd, buildCmd string
	if m.hasScript("start") {
		runCmd = "npm start"
	}
	if m.hasScript("dev") {
		devCmd = "npm run dev"
	}
	if runCmd == "" && m.Main != "" {
		runCmd = "node " + m.Main
	}
	if runCmd == "" {
		runCmd = devCmd
	}
	if m.hasScript("test") {
		testCmd = "npm test"
	}
	if m.hasScript("build") {
		buildCmd = "npm run build"
	}

	entry := m.Main
	if entry == "" {
		entry = "index.js"
	}

	return models.ProjectProfile{
		Kind:             h.Name(),
		RootPath:         root,
		InstallCommand:   "npm install",
		RunCommand:       runCmd,
		DevCommand:       devCmd,
		TestCommand:      testCmd,
		BuildCommand:     buildCmd,
		EntryPoint:       entry,
		DependenciesFile: "package.json",
		ConfigFiles:      []string{"package.json", "package-lock.json", "tsconfig.json"},
		Ports:            []int{3000},
		ErrorPatterns:    nodeErrorPatterns,
	}
}

var nodeErrorPatterns = []string{
	`Error: Cannot find module`,
	`SyntaxError:`,
	`TypeError:`,
	`ReferenceError:`,
	`ENOENT:`,
	`EADDRINUSE:`,
	`UnhandledPromiseRejection`,
	`npm ERR!`,
	`node:internal`,
	`at Object\.<anonymous>`,
}

type reactHandler struct{}

func (reactHandler) Name() string  { return "react" }
func (reactHandler) Priority() int { return 20 }

func (reactHandler) Detect(root string) bool {
	if !fileExists(root, "package.json") {
		return false
	}
	m := readManifest(root)
	return m.hasDependency("react") && !m.hasDependency("next")
}

func (h reactHandler) Profile(root string) models.ProjectProfile {
	m := readManifest(root)

	var runCmd, testCmd, buildCmd string
	if m.hasScript("start") {
		runCmd = "npm start"
	}
	if m.hasScript("test") {
		testCmd = "npm test"
	}
	if m.hasScript("build") {
		buildCmd = "npm run build"
	}
	devCmd := "npm start"
	if m.hasScript("dev") {
		devCmd = "npm run dev"
	}

	return models.ProjectProfile{
		Kind:             h.Name(),
		RootPath:         root,
		InstallCommand:   "npm install",
		RunCommand:       runCmd,
		DevCommand:       devCmd,
		TestCommand:      testCmd,
		BuildCommand:     buildCmd,
		EntryPoint:       "src/index.js",
		DependenciesFile: "package.json",
		ConfigFiles:      []string{"package.json", "tsconfig.json", "vite.config.js", "webpack.config.js"},
		// Dev servers must not pop a browser during automated runs.
		Environment:   map[string]string{"BROWSER": "none"},
		Ports:         []int{3000},
		ErrorPatterns: reactErrorPatterns,
	}
}

var reactErrorPatterns = []string{
	`Error: Cannot find module`,
	`SyntaxError:`,
	`TypeError:`,
	`Module not found:`,
	`Failed to compile`,
	`Invalid hook call`,
	`React\.createElement:`,
	`Warning: Each child in a list`,
	`Uncaught Error:`,
}

type nextjsHandler struct{}

func (nextjsHandler) Name() string  { return "nextjs" }
func (nextjsHandler) Priority() int { return 25 }

func (nextjsHandler) Detect(root string) bool {
	if !fileExists(root, "package.json") {
		return false
	}
	m := readManifest(root)
	_, ok := m.Dependencies["next"]
	return ok
}

func (h nextjsHandler) Profile(root string) models.ProjectProfile {
	m := readManifest(root)

	var runCmd, testCmd string
	if m.hasScript("start") {
		runCmd = "npm start"
	}
	if m.hasScript("test") {
		testCmd = "npm test"
	}
	buildCmd := "next build"
	if m.hasScript("build") {
		buildCmd = "npm run build"
	}
	devCmd := "next dev"
	if m.hasScript("dev") {
		devCmd = "npm run dev"
	}

	return models.ProjectProfile{
		Kind:             h.Name(),
		RootPath:         root,
		InstallCommand:   "npm install",
		RunCommand:       runCmd,
		DevCommand:       devCmd,
		TestCommand:      testCmd,
		BuildCommand:     buildCmd,
		EntryPoint:       "pages/index.js",
		DependenciesFile: "package.json",
		ConfigFiles:      []string{"package.json", "next.config.js", "next.config.mjs", "tsconfig.json"},
		Ports:            []int{3000},
		ErrorPatterns:    nextjsErrorPatterns,
	}
}

var nextjsErrorPatterns = []string{
	`Error: Cannot find module`,
	`SyntaxError:`,
	`TypeError:`,
	`Module not found:`,
	`Failed to compile`,
	`Server Error`,
	`Error occurred prerendering`,
	`getServerSideProps`,
	`getStaticProps`,
	`Unhandled Runtime Error`,
}
