// Package models defines the shared value types passed between the
// verification engine's components. Everything here is immutable once
// created and serializable as JSON.
package models

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// ErrorCategory classifies a detected error.
type ErrorCategory string

const (
	// CategorySyntax covers parse and syntax errors.
	CategorySyntax ErrorCategory = "syntax"
	// CategoryRuntime covers uncaught runtime failures.
	CategoryRuntime ErrorCategory = "runtime"
	// CategoryDependency covers package-manager resolution failures.
	CategoryDependency ErrorCategory = "dependency"
	// CategoryImport covers missing-module import failures.
	CategoryImport ErrorCategory = "import"
	// CategoryType covers type errors.
	CategoryType ErrorCategory = "type"
	// CategoryPermission covers filesystem permission failures.
	CategoryPermission ErrorCategory = "permission"
	// CategoryNetwork covers connection failures.
	CategoryNetwork ErrorCategory = "network"
	// CategoryFileNotFound covers missing file/path failures.
	CategoryFileNotFound ErrorCategory = "file_not_found"
	// CategoryConfiguration covers missing or malformed configuration.
	CategoryConfiguration ErrorCategory = "configuration"
	// CategoryTimeout covers operations that exceeded a time budget.
	CategoryTimeout ErrorCategory = "timeout"
	// CategoryMemory covers out-of-memory conditions.
	CategoryMemory ErrorCategory = "memory"
	// CategoryPortInUse covers bind failures on an occupied port.
	CategoryPortInUse ErrorCategory = "port_in_use"
	// CategoryTestFailure covers failing test assertions.
	CategoryTestFailure ErrorCategory = "test_failure"

	// Platform build categories.

	// CategorySwiftCompilation covers Swift compiler errors.
	CategorySwiftCompilation ErrorCategory = "swift_compilation"
	// CategoryCodeSigning covers code-signing and provisioning failures.
	CategoryCodeSigning ErrorCategory = "code_signing"
	// CategorySimulator covers simulator boot/availability failures.
	CategorySimulator ErrorCategory = "simulator"
	// CategoryXcodeBuild covers xcodebuild-level failures.
	CategoryXcodeBuild ErrorCategory = "xcode_build"
	// CategorySwiftUIPreview covers SwiftUI preview failures.
	CategorySwiftUIPreview ErrorCategory = "swiftui_preview"

	// CategoryUnknown is the catch-all for unclassified failure text.
	CategoryUnknown ErrorCategory = "unknown"
)

// Valid returns true if the category is a known value.
func (c ErrorCategory) Valid() bool {
	switch c {
	case CategorySyntax, CategoryRuntime, CategoryDependency, CategoryImport,
		CategoryType, CategoryPermission, CategoryNetwork, CategoryFileNotFound,
		CategoryConfiguration, CategoryTimeout, CategoryMemory, CategoryPortInUse,
		CategoryTestFailure, CategorySwiftCompilation, CategoryCodeSigning,
		CategorySimulator, CategoryXcodeBuild, CategorySwiftUIPreview,
		CategoryUnknown:
		return true
	default:
		return false
	}
}

// Severity grades how serious a detected error is.
type Severity string

const (
	// SeverityError is a failure that blocks execution.
	SeverityError Severity = "error"
	// SeverityWarning is a non-blocking issue.
	SeverityWarning Severity = "warning"
	// SeverityInfo is informational output matched by a loose pattern.
	SeverityInfo Severity = "info"
)

// DetectedError is a single classified error extracted from captured output.
// It is a value type and is never mutated after creation.
type DetectedError struct {
	// Category is the error classification.
	Category ErrorCategory `json:"category"`
	// Message is the matched output line, trimmed.
	Message string `json:"message"`
	// FilePath is the source file the error points at, when extractable.
	FilePath string `json:"file_path,omitempty"`
	// LineNumber is the 1-based line within FilePath, 0 if unknown.
	LineNumber int `json:"line_number,omitempty"`
	// StackTrace is the surrounding trace block, when one was found.
	StackTrace string `json:"stack_trace,omitempty"`
	// Severity grades the error; detection emits "error" unless a pattern
	// says otherwise.
	Severity Severity `json:"severity"`
	// SuggestedFixes are human-readable remediation hints.
	SuggestedFixes []string `json:"suggested_fixes,omitempty"`
	// ContextLines is a symmetric window of output around the match.
	ContextLines []string `json:"context_lines,omitempty"`
}

// Hash returns a stable identity for retry accounting. Two errors are the
// "same error" if category, file, line, and the first 100 characters of the
// message agree. The equivalence is deliberately loose so that near-repeats
// trip the stuck-loop detector.
func (e DetectedError) Hash() string {
	msg := e.Message
	if len(msg) > 100 {
		msg = msg[:100]
	}
	key := fmt.Sprintf("%s|%s|%d|%s", e.Category, e.FilePath, e.LineNumber, msg)
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}
