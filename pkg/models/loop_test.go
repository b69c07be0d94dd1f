package models

import "testing"

func TestLoopStatusValid(t *testing.T) {
	valid := []LoopStatus{
		LoopNotStarted, LoopRunning, LoopSuccess, LoopFailed,
		LoopMaxCyclesReached, LoopStuck, LoopNeedsHumanHelp, LoopCancelled,
	}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}

	if LoopStatus("nope").Valid() {
		t.Error("expected 'nope' to be invalid")
	}
}

func TestLoopStatusTerminal(t *testing.T) {
	tests := []struct {
		status LoopStatus
		want   bool
	}{
		{LoopNotStarted, false},
		{LoopRunning, false},
		{LoopSuccess, true},
		{LoopFailed, true},
		{LoopMaxCyclesReached, true},
		{LoopStuck, true},
		{LoopNeedsHumanHelp, true},
		{LoopCancelled, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("%q.Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestFixStrategyAppliesTo(t *testing.T) {
	s := FixStrategy{
		Name:       "npm_install",
		Categories: []ErrorCategory{CategoryDependency, CategoryImport},
	}

	if !s.AppliesTo(CategoryImport) {
		t.Error("expected strategy to apply to import errors")
	}
	if s.AppliesTo(CategoryPortInUse) {
		t.Error("expected strategy not to apply to port errors")
	}
}
