// Package detect parses process output into categorized, deduplicated
// errors with source locations, stack traces, and fix suggestions.
package detect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ShayCichocki/bringup/pkg/models"
)

const defaultContextLines = 5

// Detector scans execution output line by line against the category
// pattern tables. It holds no per-run state and is safe for concurrent use.
type Detector struct {
	// ContextLines is how many lines around a match are captured.
	ContextLines int
	// ExtraPatterns are project-kind-specific regexes layered over the
	// built-in tables; matches categorize as runtime errors.
	ExtraPatterns []*regexp.Regexp
}

// NewDetector creates a Detector with default context capture.
func NewDetector() *Detector {
	return &Detector{ContextLines: defaultContextLines}
}

// WithProjectPatterns compiles the profile's own error regexes into the
// detector. Invalid expressions are skipped; the built-in tables still
// apply.
func (d *Detector) WithProjectPatterns(exprs []string) *Detector {
	for _, e := range exprs {
		re, err := regexp.Compile(`(?i)` + e)
		if err != nil {
			continue
		}
		d.ExtraPatterns = append(d.ExtraPatterns, re)
	}
	return d
}

// Parse extracts errors from stdout and stderr. Matching lines become
// DetectedErrors with context, location, stack trace, and static category
// suggestions attached; near-duplicates (differing only in digits) are
// collapsed to the first occurrence.
func (d *Detector) Parse(stdout, stderr string) []models.DetectedError {
	combined := stdout + "\n" + stderr
	lines := strings.Split(combined, "\n")

	ctx := d.ContextLines
	if ctx <= 0 {
		ctx = defaultContextLines
	}

	var errors []models.DetectedError
	for i, line := range lines {
		category := d.categorizeLine(line)
		if category == models.CategoryUnknown {
			continue
		}

		start := max(0, i-ctx)
		end := min(len(lines), i+ctx+1)

		filePath, lineNumber := extractLocation(line, lines, i)

		errors = append(errors, models.DetectedError{
			Category:       category,
			Message:        strings.TrimSpace(line),
			FilePath:       filePath,
			LineNumber:     lineNumber,
			StackTrace:     extractStackTrace(lines, i),
			Severity:       models.SeverityError,
			SuggestedFixes: fixSuggestions[category],
			ContextLines:   append([]string(nil), lines[start:end]...),
		})
	}

	return deduplicate(errors)
}

// Categorize groups errors by category, preserving order within each group.
func (d *Detector) Categorize(errors []models.DetectedError) map[models.ErrorCategory][]models.DetectedError {
	grouped := make(map[models.ErrorCategory][]models.DetectedError)
	for _, e := range errors {
		grouped[e.Category] = append(grouped[e.Category], e)
	}
	return grouped
}

// categorizeLine returns the first category whose patterns match, walking
// the table in declaration order. Project-specific patterns are checked
// only after every built-in table misses.
func (d *Detector) categorizeLine(line string) models.ErrorCategory {
	for _, cp := range errorPatterns {
		for _, re := range cp.patterns {
			if re.MatchString(line) {
				return cp.category
			}
		}
	}
	for _, re := range d.ExtraPatterns {
		if re.MatchString(line) {
			return models.CategoryRuntime
		}
	}
	return models.CategoryUnknown
}

var (
	pythonLocRe  = regexp.MustCompile(`File "([^"]+)", line (\d+)`)
	nodeLocRe    = regexp.MustCompile(`at (?:[^\s]+\s+)?\(?([/\w._-]+\.\w+):(\d+)(?::\d+)?\)?`)
	genericLocRe = regexp.MustCompile(`([\w./\\-]+\.[\w]+):(\d+)`)
)

// extractLocation finds the file and line an error points at, trying the
// Python traceback form, the Node "at file:line:col" form, then a generic
// "file:line" form on the line itself, and finally the Python form on
// nearby lines.
func extractLocation(line string, lines []string, index int) (string, int) {
	if m := pythonLocRe.FindStringSubmatch(line); m != nil {
		n, _ := strconv.Atoi(m[2])
		return m[1], n
	}
	if m := nodeLocRe.FindStringSubmatch(line); m != nil {
		n, _ := strconv.Atoi(m[2])
		return m[1], n
	}
	if m := genericLocRe.FindStringSubmatch(line); m != nil {
		n, _ := strconv.Atoi(m[2])
		return m[1], n
	}

	for _, nearby := range lines[max(0, index-3):min(len(lines), index+3)] {
		if m := pythonLocRe.FindStringSubmatch(nearby); m != nil {
			n, _ := strconv.Atoi(m[2])
			return m[1], n
		}
	}

	return "", 0
}

// extractStackTrace pulls the full trace around an error line: for Python,
// scan backwards to the "Traceback" header and forwards to the end of the
// indented block; for Node, collect the following "at ..." frames.
func extractStackTrace(lines []string, start int) string {
	if start > 0 {
		for i := start; i >= max(0, start-50); i-- {
			if !strings.Contains(lines[i], "Traceback (most recent call last)") {
				continue
			}
			end := start + 1
			for j := start + 1; j < min(len(lines), start+20); j++ {
				trimmed := strings.TrimSpace(lines[j])
				if trimmed != "" && !strings.HasPrefix(lines[j], " ") && !strings.Contains(lines[j], "Error") {
					break
				}
				end = j + 1
			}
			return strings.Join(lines[i:end], "\n")
		}
	}

	trimmed := strings.TrimSpace(lines[start])
	isNodeHead := strings.HasPrefix(trimmed, "Error:") ||
		strings.HasPrefix(trimmed, "TypeError:") ||
		strings.HasPrefix(trimmed, "ReferenceError:")
	if strings.Contains(lines[start], "at ") || isNodeHead {
		stack := []string{lines[start]}
		for j := start + 1; j < min(len(lines), start+20); j++ {
			t := strings.TrimSpace(lines[j])
			if strings.HasPrefix(t, "at ") {
				stack = append(stack, lines[j])
			} else if t == "" {
				continue
			} else {
				break
			}
		}
		if len(stack) > 1 {
			return strings.Join(stack, "\n")
		}
	}

	return ""
}

var digitsRe = regexp.MustCompile(`\d+`)

// deduplicate drops errors whose digit-normalized message was already seen,
// so "worker 3 crashed" and "worker 7 crashed" count once.
func deduplicate(errors []models.DetectedError) []models.DetectedError {
	seen := make(map[string]struct{}, len(errors))
	unique := errors[:0:0]
	for _, e := range errors {
		normalized := digitsRe.ReplaceAllString(strings.TrimSpace(e.Message), "N")
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		unique = append(unique, e)
	}
	return unique
}

var (
	nodeModuleRe   = regexp.MustCompile(`Cannot find module ['"](.+?)['"]`)
	pythonModuleRe = regexp.MustCompile(`No module named ['"]?([\w.]+)['"]?`)
)

// SuggestFixes returns the category suggestions enriched with advice
// derived from the message itself, including install commands for missing
// modules extracted by name.
func SuggestFixes(e models.DetectedError) []string {
	suggestions := append([]string(nil), fixSuggestions[e.Category]...)
	lower := strings.ToLower(e.Message)

	if strings.Contains(lower, "npm") || strings.Contains(lower, "node_modules") {
		suggestions = append(suggestions, "Try: rm -rf node_modules && npm install")
	}
	if strings.Contains(lower, "pip") || strings.Contains(lower, "python") {
		suggestions = append(suggestions, "Try creating a fresh virtual environment")
	}
	if strings.Contains(lower, "enoent") && strings.Contains(lower, ".env") {
		suggestions = append(suggestions, "Create a .env file from .env.example if available")
	}

	if strings.Contains(lower, "cannot find module") {
		if m := nodeModuleRe.FindStringSubmatch(e.Message); m != nil && !strings.HasPrefix(m[1], ".") {
			suggestions = append([]string{"Install missing module: npm install " + m[1]}, suggestions...)
		}
	}
	if strings.Contains(lower, "no module named") {
		if m := pythonModuleRe.FindStringSubmatch(e.Message); m != nil {
			module := strings.SplitN(m[1], ".", 2)[0]
			suggestions = append([]string{"Install missing module: pip install " + module}, suggestions...)
		}
	}

	return suggestions
}

// Report renders errors as a human-readable markdown summary grouped by
// category.
func Report(errors []models.DetectedError) string {
	if len(errors) == 0 {
		return "No errors detected."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d error(s):\n", len(errors))

	grouped := make(map[models.ErrorCategory][]models.DetectedError)
	var order []models.ErrorCategory
	for _, e := range errors {
		if _, ok := grouped[e.Category]; !ok {
			order = append(order, e.Category)
		}
		grouped[e.Category] = append(grouped[e.Category], e)
	}

	for _, category := range order {
		group := grouped[category]
		fmt.Fprintf(&b, "\n## %s Errors (%d)\n", strings.ToUpper(string(category)), len(group))
		for i, e := range group {
			fmt.Fprintf(&b, "\n### Error %d\n", i+1)
			fmt.Fprintf(&b, "**Message:** %s\n", e.Message)
			if e.FilePath != "" {
				if e.LineNumber > 0 {
					fmt.Fprintf(&b, "**Location:** %s:%d\n", e.FilePath, e.LineNumber)
				} else {
					fmt.Fprintf(&b, "**Location:** %s\n", e.FilePath)
				}
			}
			if e.StackTrace != "" {
				fmt.Fprintf(&b, "**Stack Trace:**\n```\n%s\n```\n", e.StackTrace)
			}
			if len(e.SuggestedFixes) > 0 {
				b.WriteString("**Suggested Fixes:**\n")
				for _, fix := range e.SuggestedFixes {
					fmt.Fprintf(&b, "- %s\n", fix)
				}
			}
		}
	}

	return b.String()
}
