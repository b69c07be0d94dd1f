// Package project detects what kind of project lives in a directory and
// builds a profile describing how to install, run, and test it.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ShayCichocki/bringup/pkg/models"
)

// Handler recognizes one project kind. Handlers are plain values held in a
// priority list; a higher priority handler is consulted first.
type Handler interface {
	// Name is the kind written into the profile (e.g. "nextjs").
	Name() string
	// Priority orders handlers; ties keep registration order.
	Priority() int
	// Detect reports whether the directory looks like this kind.
	Detect(root string) bool
	// Profile builds the full profile for a detected project.
	Profile(root string) models.ProjectProfile
}

// Detector walks its handler list in priority order and returns the first
// match. The generic handler matches everything, so detection never fails.
type Detector struct {
	handlers []Handler
}

// NewDetector creates a Detector with the built-in handlers.
func NewDetector() *Detector {
	return NewDetectorWith(defaultHandlers())
}

// NewDetectorWith creates a Detector from an explicit handler list, sorted
// by descending priority. Tests use this to pin the list.
func NewDetectorWith(handlers []Handler) *Detector {
	sorted := make([]Handler, len(handlers))
	copy(sorted, handlers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})
	return &Detector{handlers: sorted}
}

// Detect identifies the project kind at root and returns its profile with
// any .bringup.yaml overrides applied. The error is non-nil only for a
// malformed override file; detection itself always succeeds.
func (d *Detector) Detect(root string) (models.ProjectProfile, error) {
	abs, err := filepath.Abs(root)
	if err == nil {
		root = abs
	}

	profile := d.baseProfile(root)

	overrides, err := loadOverrides(root)
	if err != nil {
		return profile, fmt.Errorf("reading project overrides: %w", err)
	}
	overrides.apply(&profile)

	return profile, nil
}

func (d *Detector) baseProfile(root string) models.ProjectProfile {
	for _, h := range d.handlers {
		if h.Detect(root) {
			return h.Profile(root)
		}
	}
	// Unreachable with the default list, kept for custom handler sets.
	return genericHandler{}.Profile(root)
}

func defaultHandlers() []Handler {
	return []Handler{
		nextjsHandler{},
		reactHandler{},
		djangoHandler{},
		flaskHandler{},
		nodejsHandler{},
		goHandler{},
		cargoHandler{},
		pythonHandler{},
		genericHandler{},
	}
}

// fileExists checks for a file or directory directly under root.
func fileExists(root, name string) bool {
	_, err := os.Stat(filepath.Join(root, name))
	return err == nil
}

// isDir checks for a directory directly under root.
func isDir(root, name string) bool {
	info, err := os.Stat(filepath.Join(root, name))
	return err == nil && info.IsDir()
}
