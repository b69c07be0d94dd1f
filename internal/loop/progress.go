package loop

import (
	"sort"
	"strings"

	"github.com/ShayCichocki/bringup/pkg/models"
)

// trendWindow is how many recent cycles the trend looks at.
const trendWindow = 3

// stuckWindow is how many consecutive identical error sets mean the loop is
// going in circles.
const stuckWindow = 3

// progressTracker accumulates per-cycle observations and derives the trend
// and stuck-loop signals. It is owned by a single Run and never shared.
type progressTracker struct {
	progress   models.LoopProgress
	seenHashes map[string]bool
	signatures []string
}

func newProgressTracker() *progressTracker {
	return &progressTracker{
		seenHashes: make(map[string]bool),
	}
}

// recordCycle folds one cycle's errors into the running totals.
func (p *progressTracker) recordCycle(errors []models.DetectedError) {
	p.progress.TotalCycles++
	p.progress.TotalErrorsFound += len(errors)
	p.progress.ErrorCountHistory = append(p.progress.ErrorCountHistory, len(errors))

	for _, e := range errors {
		h := e.Hash()
		if p.seenHashes[h] {
			p.progress.RepeatedErrors++
		} else {
			p.seenHashes[h] = true
			p.progress.UniqueErrorsSeen++
		}
	}

	p.signatures = append(p.signatures, errorSignature(errors))
	p.progress.Trend = p.trend()
}

// recordFix counts one successful repair.
func (p *progressTracker) recordFix() {
	p.progress.TotalErrorsFixed++
}

// trend compares the oldest and newest error counts in the window. Counts
// moving down is improving, up is regressing, flat is stalled.
func (p *progressTracker) trend() models.ProgressTrend {
	history := p.progress.ErrorCountHistory
	if len(history) < 2 {
		return models.TrendUnknown
	}
	if len(history) > trendWindow {
		history = history[len(history)-trendWindow:]
	}

	first, last := history[0], history[len(history)-1]
	switch {
	case last < first:
		return models.TrendImproving
	case last > first:
		return models.TrendRegressing
	default:
		return models.TrendStalled
	}
}

// stuck reports whether the last stuckWindow cycles produced the identical
// non-empty error set.
func (p *progressTracker) stuck() bool {
	if len(p.signatures) < stuckWindow {
		return false
	}
	recent := p.signatures[len(p.signatures)-stuckWindow:]
	if recent[0] == "" {
		return false
	}
	for _, sig := range recent[1:] {
		if sig != recent[0] {
			return false
		}
	}
	return true
}

// errorSignature is an order-independent identity for a cycle's error set.
func errorSignature(errors []models.DetectedError) string {
	if len(errors) == 0 {
		return ""
	}
	hashes := make([]string, len(errors))
	for i, e := range errors {
		hashes[i] = e.Hash()
	}
	sort.Strings(hashes)
	return strings.Join(hashes, ",")
}
