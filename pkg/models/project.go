package models

// ProjectProfile describes how to install, run, and test a detected project.
// It is produced once by detection and treated as immutable afterwards.
type ProjectProfile struct {
	// Kind is the handler name that produced this profile (e.g. "nodejs").
	Kind string `json:"kind"`
	// RootPath is the absolute project root.
	RootPath string `json:"root_path"`
	// InstallCommand installs dependencies; empty means no install step.
	InstallCommand string `json:"install_command,omitempty"`
	// RunCommand starts the project.
	RunCommand string `json:"run_command,omitempty"`
	// DevCommand starts the project in development mode, used as a
	// fallback when RunCommand is empty.
	DevCommand string `json:"dev_command,omitempty"`
	// TestCommand runs the test suite.
	TestCommand string `json:"test_command,omitempty"`
	// BuildCommand builds the project.
	BuildCommand string `json:"build_command,omitempty"`
	// EntryPoint is the main source file, when one is identifiable.
	EntryPoint string `json:"entry_point,omitempty"`
	// DependenciesFile is the dependency manifest (package.json, ...).
	DependenciesFile string `json:"dependencies_file,omitempty"`
	// ConfigFiles lists configuration files relevant to this project kind.
	ConfigFiles []string `json:"config_files,omitempty"`
	// Environment holds environment overrides applied to every command.
	// Later writers win when profiles and caller env are merged.
	Environment map[string]string `json:"environment,omitempty"`
	// Ports lists the ports the project conventionally binds.
	Ports []int `json:"ports,omitempty"`
	// ErrorPatterns are kind-specific regexes layered over the generic
	// detection tables.
	ErrorPatterns []string `json:"error_patterns,omitempty"`
}
