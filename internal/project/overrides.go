package project

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/bringup/pkg/models"
)

// overrideFile is the project-local config file name.
const overrideFile = ".bringup.yaml"

// profileOverrides is the "project" section of .bringup.yaml. Set fields
// replace the detected values; unset fields leave detection alone.
type profileOverrides struct {
	Kind           string            `yaml:"kind"`
	InstallCommand string            `yaml:"install_command"`
	RunCommand     string            `yaml:"run_command"`
	DevCommand     string            `yaml:"dev_command"`
	TestCommand    string            `yaml:"test_command"`
	BuildCommand   string            `yaml:"build_command"`
	EntryPoint     string            `yaml:"entry_point"`
	Environment    map[string]string `yaml:"environment"`
	Ports          []int             `yaml:"ports"`
}

type overrideDoc struct {
	Project profileOverrides `yaml:"project"`
}

// loadOverrides reads the project section of .bringup.yaml at root. A
// missing file yields zero overrides; a malformed one is an error the user
// should hear about rather than silently losing their settings.
func loadOverrides(root string) (profileOverrides, error) {
	var doc overrideDoc

	data, err := os.ReadFile(filepath.Join(root, overrideFile))
	if err != nil {
		if os.IsNotExist(err) {
			return doc.Project, nil
		}
		return doc.Project, err
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc.Project, fmt.Errorf("parsing %s: %w", overrideFile, err)
	}
	return doc.Project, nil
}

func (o profileOverrides) apply(p *models.ProjectProfile) {
	if o.Kind != "" {
		p.Kind = o.Kind
	}
	if o.InstallCommand != "" {
		p.InstallCommand = o.InstallCommand
	}
	if o.RunCommand != "" {
		p.RunCommand = o.RunCommand
	}
	if o.DevCommand != "" {
		p.DevCommand = o.DevCommand
	}
	if o.TestCommand != "" {
		p.TestCommand = o.TestCommand
	}
	if o.BuildCommand != "" {
		p.BuildCommand = o.BuildCommand
	}
	if o.EntryPoint != "" {
		p.EntryPoint = o.EntryPoint
	}
	if len(o.Environment) > 0 {
		if p.Environment == nil {
			p.Environment = make(map[string]string, len(o.Environment))
		}
		for k, v := range o.Environment {
			p.Environment[k] = v
		}
	}
	if len(o.Ports) > 0 {
		p.Ports = o.Ports
	}
}
