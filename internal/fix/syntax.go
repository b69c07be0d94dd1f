package fix

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/bringup/pkg/models"
)

// SyntaxFixKind narrows a syntax error to a repair shape the collaborator
// can be prompted for.
type SyntaxFixKind string

const (
	SyntaxIndentation     SyntaxFixKind = "indentation"
	SyntaxUnexpectedToken SyntaxFixKind = "unexpected_token"
	SyntaxUnterminated    SyntaxFixKind = "unterminated"
	SyntaxMissingBracket  SyntaxFixKind = "missing_bracket"
	SyntaxUnclassified    SyntaxFixKind = ""
)

// ClassifySyntaxError inspects the message for a recognizable syntax
// problem shape.
func ClassifySyntaxError(err models.DetectedError) SyntaxFixKind {
	msg := strings.ToLower(err.Message)
	switch {
	case strings.Contains(msg, "indentation") || strings.Contains(msg, "indent"):
		return SyntaxIndentation
	case strings.Contains(msg, "unexpected token"):
		return SyntaxUnexpectedToken
	case strings.Contains(msg, "unterminated"):
		return SyntaxUnterminated
	case strings.Contains(msg, "missing") && strings.ContainsAny(msg, ")]}:;"):
		return SyntaxMissingBracket
	default:
		return SyntaxUnclassified
	}
}

// SyntaxFixPrompt builds the collaborator prompt for repairing a syntax
// error given the full file content.
func SyntaxFixPrompt(err models.DetectedError, fileContent string) string {
	file := err.FilePath
	if file == "" {
		file = "unknown"
	}
	line := "unknown"
	if err.LineNumber > 0 {
		line = fmt.Sprintf("%d", err.LineNumber)
	}
	return fmt.Sprintf(`Fix the following syntax error in this code:

Error: %s
File: %s
Line: %s

Code:
`+"```\n%s\n```"+`

Please provide only the corrected code, no explanations.`, err.Message, file, line, fileContent)
}

// autoFixable lists the categories deterministic fixers handle without the
// collaborator.
var autoFixable = map[models.ErrorCategory]bool{
	models.CategoryDependency: true,
	models.CategoryImport:     true,
	models.CategoryPortInUse:  true,
	models.CategoryPermission: true,
}

// collaboratorRequired lists the categories that need generated code.
var collaboratorRequired = map[models.ErrorCategory]bool{
	models.CategorySyntax:      true,
	models.CategoryRuntime:     true,
	models.CategoryType:        true,
	models.CategoryTestFailure: true,
}

// CanAutoFix reports whether a deterministic fixer handles the category.
func CanAutoFix(err models.DetectedError) bool {
	return autoFixable[err.Category]
}

// RequiresCollaborator reports whether the category needs generated code.
func RequiresCollaborator(err models.DetectedError) bool {
	return collaboratorRequired[err.Category]
}
