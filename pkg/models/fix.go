package models

import "time"

// FixType tags the kind of repair a strategy or generated fix performs.
type FixType string

const (
	// FixDependency installs or repairs dependencies.
	FixDependency FixType = "dependency"
	// FixImport repairs import statements or paths.
	FixImport FixType = "import"
	// FixSyntax repairs source syntax.
	FixSyntax FixType = "syntax"
	// FixConfiguration creates or repairs configuration files.
	FixConfiguration FixType = "configuration"
	// FixPort frees or reassigns a network port.
	FixPort FixType = "port"
	// FixPermission adjusts filesystem permissions.
	FixPermission FixType = "permission"
	// FixFileCreation materializes a missing file.
	FixFileCreation FixType = "file_creation"
	// FixCodeModification rewrites source content.
	FixCodeModification FixType = "code_modification"
	// FixCommand runs an arbitrary repair command.
	FixCommand FixType = "command"
)

// FixStrategy is a deterministic, non-AI repair action. Confidence is
// static per strategy: it encodes how reliably the message shape implies
// the fix, and is what the loop's threshold filters against.
type FixStrategy struct {
	// Name is the unique strategy identifier.
	Name string `json:"name"`
	// Description is a human summary of the repair.
	Description string `json:"description"`
	// Type tags the repair kind.
	Type FixType `json:"type"`
	// Categories lists the error categories this strategy addresses.
	Categories []ErrorCategory `json:"categories"`
	// Confidence in [0,1], static per strategy.
	Confidence float64 `json:"confidence"`
	// Command is an optional shell command template for the repair.
	Command string `json:"command,omitempty"`
	// RequiresRestart indicates the project must be re-run after the fix.
	RequiresRestart bool `json:"requires_restart,omitempty"`
	// Safe fixes do not need a backup before running.
	Safe bool `json:"safe"`
}

// AppliesTo reports whether the strategy addresses the given category.
func (s FixStrategy) AppliesTo(c ErrorCategory) bool {
	for _, cat := range s.Categories {
		if cat == c {
			return true
		}
	}
	return false
}

// FixResult records the outcome of applying one fix.
type FixResult struct {
	// Success is true when the repair completed.
	Success bool `json:"success"`
	// Strategy is the strategy used; nil for AI-generated or skipped fixes.
	Strategy *FixStrategy `json:"strategy,omitempty"`
	// Message explains the outcome.
	Message string `json:"message"`
	// ChangesMade lists the concrete changes, one per action.
	ChangesMade []string `json:"changes_made,omitempty"`
	// Rollback holds whatever is needed to undo the fix: prior permission
	// bits, created file paths, freed PIDs (termination itself is noted as
	// irreversible).
	Rollback map[string]string `json:"rollback,omitempty"`
}

// GeneratedFix is a candidate repair from the code-generation collaborator
// or a deterministic fixer packaged in the same shape.
type GeneratedFix struct {
	// Error is the error this fix targets.
	Error DetectedError `json:"error"`
	// Type tags the repair kind.
	Type FixType `json:"type"`
	// Confidence in [0,1] as reported by the collaborator or the
	// deterministic strategy's static score.
	Confidence float64 `json:"confidence"`
	// FileChanges maps file paths to their full replacement content.
	FileChanges map[string]string `json:"file_changes,omitempty"`
	// Commands are shell commands to run as part of the fix.
	Commands []string `json:"commands,omitempty"`
	// Rationale is the collaborator's natural-language explanation.
	Rationale string `json:"rationale,omitempty"`
	// ValidationPassed is set after the fix content passed syntactic
	// revalidation.
	ValidationPassed bool `json:"validation_passed"`
}

// AnalysisResult is AutoFixer's read on an error before fix generation.
type AnalysisResult struct {
	// RootCause is a best-effort explanation of the underlying problem.
	RootCause string `json:"root_cause"`
	// AffectedFiles lists files the fix will likely touch.
	AffectedFiles []string `json:"affected_files,omitempty"`
	// NeedsCollaborator is true when no deterministic fixer applies and
	// the code-generation collaborator is required.
	NeedsCollaborator bool `json:"needs_collaborator"`
	// Confidence in [0,1] for the analysis itself.
	Confidence float64 `json:"confidence"`
}

// FixAttempt pairs an error with the fix tried and its result.
type FixAttempt struct {
	// Timestamp is when the attempt was made.
	Timestamp time.Time `json:"timestamp"`
	// Error is the error the attempt targeted.
	Error DetectedError `json:"error"`
	// Fix is the candidate fix; nil when no fix could be generated.
	Fix *GeneratedFix `json:"fix,omitempty"`
	// Result is the application outcome. Skipped-for-confidence attempts
	// carry a failed result with an explanatory message.
	Result FixResult `json:"result"`
}
