package main

import (
	"testing"
	"time"

	"github.com/ShayCichocki/bringup/internal/state"
	"github.com/ShayCichocki/bringup/pkg/models"
)

func saveRun(t *testing.T, db *state.DB, id, project string, startedAgo time.Duration) {
	t.Helper()
	start := time.Now().Add(-startedAgo)
	err := db.SaveReport(&models.LoopReport{
		RunID:       id,
		ProjectPath: project,
		Status:      models.LoopSuccess,
		StartTime:   start,
		EndTime:     start.Add(time.Minute),
		Duration:    time.Minute,
		Summary:     "Project came up clean after 1 cycle(s).",
	})
	if err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
}

func TestRunStatus_PurgeDeletesOldRuns(t *testing.T) {
	dir := t.TempDir()

	db, err := state.OpenProject(dir)
	if err != nil {
		t.Fatalf("OpenProject: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	saveRun(t, db, "run-stale", dir, 72*time.Hour)
	saveRun(t, db, "run-fresh", dir, time.Hour)
	db.Close()

	statusPurge = 24 * time.Hour
	defer func() { statusPurge = 0 }()

	if err := runStatus(statusCmd, []string{dir}); err != nil {
		t.Fatalf("runStatus: %v", err)
	}

	db, err = state.OpenProject(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	runs, err := db.RunsForProject(dir, 10)
	if err != nil {
		t.Fatalf("RunsForProject: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-fresh" {
		t.Errorf("remaining runs = %+v, want only run-fresh", runs)
	}
}
