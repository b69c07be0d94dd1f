// Package state provides SQLite-based persistence for verification runs.
package state

import (
	"io"

	"github.com/ShayCichocki/bringup/pkg/models"
)

// RunStore handles run-history persistence operations.
type RunStore interface {
	SaveReport(report *models.LoopReport) error
	GetReport(runID string) (*models.LoopReport, error)
	RecentRuns(limit int) ([]RunRecord, error)
	RunsForProject(projectPath string, limit int) ([]RunRecord, error)
}

// Migrator handles database schema migrations.
// Separating this allows clients to depend only on migration functionality.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// StateStore defines the interface for state persistence.
// This interface allows callers to work with any state backend without
// depending on the concrete SQLite implementation.
type StateStore interface {
	io.Closer
	Migrator
	RunStore
}

// Compile-time verification that DB implements all interfaces.
var (
	_ StateStore = (*DB)(nil)
	_ Migrator   = (*DB)(nil)
	_ RunStore   = (*DB)(nil)
)
