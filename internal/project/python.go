package project

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ShayCichocki/bringup/pkg/models"
)

// fileContains reports whether a file under root contains the substring,
// case-insensitively. Unreadable files simply do not match.
func fileContains(root, name, substr string) bool {
	data, err := os.ReadFile(filepath.Join(root, name))
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), strings.ToLower(substr))
}

type pythonHandler struct{}

func (pythonHandler) Name() string  { return "python" }
func (pythonHandler) Priority() int { return 5 }

func (pythonHandler) Detect(root string) bool {
	indicators := []string{
		"requirements.txt", "setup.py", "setup.cfg",
		"pyproject.toml", "Pipfile", "main.py", "app.py",
	}
	for _, f := range indicators {
		if fileExists(root, f) {
			return true
		}
	}
	return false
}

func (h pythonHandler) Profile(root string) models.ProjectProfile {
	var entry string
	for _, candidate := range []string{"main.py", "app.py", "run.py", "__main__.py"} {
		if fileExists(root, candidate) {
			entry = candidate
			break
		}
	}

	var installCmd, depsFile string
	switch {
	case fileExists(root, "requirements.txt"):
		installCmd = "pip install -r requirements.txt"
		depsFile = "requirements.txt"
	case fileExists(root, "pyproject.toml"):
		installCmd = "pip install -e ."
		depsFile = "pyproject.toml"
	case fileExists(root, "Pipfile"):
		installCmd = "pipenv install"
		depsFile = "Pipfile"
	}

	var runCmd string
	if entry != "" {
		runCmd = "python " + entry
	}

	var testCmd string
	if fileExists(root, "pytest.ini") || hasPythonTests(root) {
		testCmd = "pytest"
	}

	return models.ProjectProfile{
		Kind:             h.Name(),
		RootPath:         root,
		InstallCommand:   installCmd,
		RunCommand:       runCmd,
		TestCommand:      testCmd,
		EntryPoint:       entry,
		DependenciesFile: depsFile,
		ConfigFiles:      []string{"pyproject.toml", "setup.py", "setup.cfg", "pytest.ini", "tox.ini"},
		ErrorPatterns:    pythonErrorPatterns,
	}
}

func hasPythonTests(root string) bool {
	if isDir(root, "tests") || isDir(root, "test") {
		return true
	}
	matches, _ := filepath.Glob(filepath.Join(root, "test_*.py"))
	return len(matches) > 0
}

var pythonErrorPatterns = []string{
	`Traceback \(most recent call last\)`,
	`SyntaxError:`,
	`IndentationError:`,
	`TypeError:`,
	`ValueError:`,
	`KeyError:`,
	`ImportError:`,
	`ModuleNotFoundError:`,
	`AttributeError:`,
	`NameError:`,
	`FileNotFoundError:`,
	`RuntimeError:`,
	`AssertionError:`,
}

type flaskHandler struct{}

func (flaskHandler) Name() string  { return "flask" }
func (flaskHandler) Priority() int { return 15 }

func (flaskHandler) Detect(root string) bool {
	if fileContains(root, "requirements.txt", "flask") {
		return true
	}
	for _, entry := range []string{"app.py", "application.py", "wsgi.py"} {
		if fileContains(root, entry, "from flask import") || fileContains(root, entry, "import flask") {
			return true
		}
	}
	return false
}

func (h flaskHandler) Profile(root string) models.ProjectProfile {
	entry := "app.py"
	for _, candidate := range []string{"app.py", "application.py", "wsgi.py", "main.py"} {
		if fileExists(root, candidate) {
			entry = candidate
			break
		}
	}

	var installCmd string
	if fileExists(root, "requirements.txt") {
		installCmd = "pip install -r requirements.txt"
	}

	return models.ProjectProfile{
		Kind:             h.Name(),
		RootPath:         root,
		InstallCommand:   installCmd,
		RunCommand:       "flask run",
		DevCommand:       "flask run --debug",
		TestCommand:      "pytest",
		EntryPoint:       entry,
		DependenciesFile: "requirements.txt",
		ConfigFiles:      []string{"config.py", ".flaskenv", ".env"},
		Environment:      map[string]string{"FLASK_APP": entry},
		Ports:            []int{5000},
		ErrorPatterns:    flaskErrorPatterns,
	}
}

var flaskErrorPatterns = []string{
	`Traceback \(most recent call last\)`,
	`werkzeug\.exceptions`,
	`jinja2\.exceptions`,
	`BuildError:`,
	`TemplateNotFound:`,
	`RuntimeError:`,
	`Address already in use`,
	`ModuleNotFoundError:`,
	`ImportError:`,
	`flask\.cli\.NoAppException`,
}

type djangoHandler struct{}

func (djangoHandler) Name() string  { return "django" }
func (djangoHandler) Priority() int { return 15 }

func (djangoHandler) Detect(root string) bool {
	if fileExists(root, "manage.py") && fileContains(root, "manage.py", "django") {
		return true
	}
	return fileContains(root, "requirements.txt", "django")
}

func (h djangoHandler) Profile(root string) models.ProjectProfile {
	var installCmd string
	if fileExists(root, "requirements.txt") {
		installCmd = "pip install -r requirements.txt"
	}

	return models.ProjectProfile{
		Kind:             h.Name(),
		RootPath:         root,
		InstallCommand:   installCmd,
		RunCommand:       "python manage.py runserver",
		TestCommand:      "python manage.py test",
		EntryPoint:       "manage.py",
		DependenciesFile: "requirements.txt",
		ConfigFiles:      []string{"manage.py", "settings.py", ".env"},
		Ports:            []int{8000},
		ErrorPatterns:    djangoErrorPatterns,
	}
}

var djangoErrorPatterns = []string{
	`Traceback \(most recent call last\)`,
	`django\.core\.exceptions`,
	`ImproperlyConfigured:`,
	`TemplateDoesNotExist:`,
	`TemplateSyntaxError:`,
	`OperationalError:`,
	`IntegrityError:`,
	`ModuleNotFoundError:`,
	`ImportError:`,
	`django\.db\.utils`,
}
