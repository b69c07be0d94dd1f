package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ShayCichocki/bringup/pkg/models"
)

// RunRecord is the summary row stored per verification run. The full report
// is kept alongside as JSON for exact replay.
type RunRecord struct {
	ID          string            `json:"id"`
	ProjectPath string            `json:"project_path"`
	Status      models.LoopStatus `json:"status"`
	Cycles      int               `json:"cycles"`
	ErrorsFound int               `json:"errors_found"`
	ErrorsFixed int               `json:"errors_fixed"`
	Trend       string            `json:"trend"`
	StartedAt   time.Time         `json:"started_at"`
	EndedAt     time.Time         `json:"ended_at"`
	Duration    time.Duration     `json:"duration"`
	Summary     string            `json:"summary"`
}

// SaveReport persists a finished run: the summary row plus one row per
// cycle, atomically.
func (db *DB) SaveReport(report *models.LoopReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	return db.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO runs (id, project_path, status, cycles, errors_found, errors_fixed,
				trend, started_at, ended_at, duration_ms, summary, report)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			report.RunID,
			report.ProjectPath,
			string(report.Status),
			report.Progress.TotalCycles,
			report.Progress.TotalErrorsFound,
			report.Progress.TotalErrorsFixed,
			string(report.Progress.Trend),
			formatTime(report.StartTime),
			formatTime(report.EndTime),
			report.Duration.Milliseconds(),
			report.Summary,
			string(reportJSON),
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for _, c := range report.Cycles {
			_, err := tx.Exec(`
				INSERT INTO cycles (run_id, cycle, status, errors, fixes_succeeded, fixes_failed, duration_ms)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`,
				report.RunID,
				c.Cycle,
				string(c.Status),
				len(c.ErrorsFound),
				c.FixesSuccessful,
				c.FixesFailed,
				c.Duration.Milliseconds(),
			)
			if err != nil {
				return fmt.Errorf("insert cycle %d: %w", c.Cycle, err)
			}
		}

		return nil
	})
}

// GetReport loads the full report for a run. Returns nil when the run does
// not exist.
func (db *DB) GetReport(runID string) (*models.LoopReport, error) {
	row := db.QueryRow(`SELECT report FROM runs WHERE id = ?`, runID)

	var reportJSON string
	err := row.Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}

	var report models.LoopReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &report, nil
}

// RecentRuns returns the most recent run summaries, newest first.
func (db *DB) RecentRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.Query(`
		SELECT id, project_path, status, cycles, errors_found, errors_fixed,
			trend, started_at, ended_at, duration_ms, summary
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		var startedAt, endedAt string
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.ProjectPath, &r.Status, &r.Cycles, &r.ErrorsFound,
			&r.ErrorsFixed, &r.Trend, &startedAt, &endedAt, &durationMS, &r.Summary); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt, _ = parseTime(startedAt)
		r.EndedAt, _ = parseTime(endedAt)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, r)
	}
	return records, rows.Err()
}

// RunsForProject returns run summaries for one project, newest first.
func (db *DB) RunsForProject(projectPath string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.Query(`
		SELECT id, project_path, status, cycles, errors_found, errors_fixed,
			trend, started_at, ended_at, duration_ms, summary
		FROM runs
		WHERE project_path = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, projectPath, limit)
	if err != nil {
		return nil, fmt.Errorf("list project runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		var startedAt, endedAt string
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.ProjectPath, &r.Status, &r.Cycles, &r.ErrorsFound,
			&r.ErrorsFixed, &r.Trend, &startedAt, &endedAt, &durationMS, &r.Summary); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt, _ = parseTime(startedAt)
		r.EndedAt, _ = parseTime(endedAt)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, r)
	}
	return records, rows.Err()
}

// CycleRecord is the per-cycle summary row. Counts only; the run's JSON
// report carries the full error details.
type CycleRecord struct {
	Cycle          int                `json:"cycle"`
	Status         models.CycleStatus `json:"status"`
	Errors         int                `json:"errors"`
	FixesSucceeded int                `json:"fixes_succeeded"`
	FixesFailed    int                `json:"fixes_failed"`
	Duration       time.Duration      `json:"duration"`
}

// CycleRows returns the per-cycle rows for a run, in cycle order.
func (db *DB) CycleRows(runID string) ([]CycleRecord, error) {
	rows, err := db.Query(`
		SELECT cycle, status, errors, fixes_succeeded, fixes_failed, duration_ms
		FROM cycles
		WHERE run_id = ?
		ORDER BY cycle
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	defer rows.Close()

	var cycles []CycleRecord
	for rows.Next() {
		var c CycleRecord
		var durationMS int64
		if err := rows.Scan(&c.Cycle, &c.Status, &c.Errors, &c.FixesSucceeded, &c.FixesFailed, &durationMS); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		c.Duration = time.Duration(durationMS) * time.Millisecond
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}
