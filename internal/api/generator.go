package api

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/bringup/internal/fix"
	"github.com/ShayCichocki/bringup/pkg/models"
)

// maxPromptFileBytes caps how much of an affected file goes into the prompt.
const maxPromptFileBytes = 16000

const generatorSystemPrompt = `You are a code repair assistant. You are given one detected error
from running or testing a project, plus relevant source context. Produce the smallest fix that
resolves the error.

Reply with a single JSON object and nothing else:
{
  "files": {"relative/path.py": "full replacement file content"},
  "commands": ["shell commands to run, if any"],
  "confidence": 0.0,
  "rationale": "one or two sentences"
}

Rules:
- "files" values are complete file contents, never diffs or fragments.
- Use "commands" only for installs or environment repairs, never to edit files.
- "confidence" reflects how certain you are the fix resolves the error.
- Never delete files and never use destructive commands.`

// Generator produces candidate fixes through the Anthropic API. It
// implements the AutoFixer's collaborator interface.
type Generator struct {
	client *Client
}

// NewGenerator creates a Generator backed by the given client.
func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

var _ fix.FixGenerator = (*Generator)(nil)

// fixReply is the JSON shape the model is instructed to return.
type fixReply struct {
	Files      map[string]string `json:"files"`
	Commands   []string          `json:"commands"`
	Confidence float64           `json:"confidence"`
	Rationale  string            `json:"rationale"`
}

// GenerateFix asks the model for a repair. Syntax errors with a known file
// use a whole-file rewrite prompt; everything else uses the JSON protocol.
func (g *Generator) GenerateFix(ctx context.Context, detected models.DetectedError, root string) (*models.GeneratedFix, error) {
	fileContent, relPath := g.affectedFile(detected, root)

	if detected.Category == models.CategorySyntax && fileContent != "" {
		return g.generateSyntaxFix(ctx, detected, relPath, fileContent)
	}

	prompt := g.buildPrompt(detected, relPath, fileContent)

	text, err := g.complete(ctx, generatorSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var reply fixReply
	if err := json.Unmarshal([]byte(extractJSON(text)), &reply); err != nil {
		return nil, fmt.Errorf("parsing fix reply: %w", err)
	}

	generated := &models.GeneratedFix{
		Error:       detected,
		Type:        fixTypeFor(reply),
		Confidence:  clamp01(reply.Confidence),
		FileChanges: reply.Files,
		Commands:    reply.Commands,
		Rationale:   reply.Rationale,
	}
	generated.ValidationPassed = validateFix(generated)
	return generated, nil
}

// generateSyntaxFix prompts for a corrected whole file and packages it as a
// code modification.
func (g *Generator) generateSyntaxFix(ctx context.Context, detected models.DetectedError, relPath, fileContent string) (*models.GeneratedFix, error) {
	prompt := fix.SyntaxFixPrompt(detected, fileContent)

	text, err := g.complete(ctx, "You repair source files. Reply with only the corrected file content.", prompt)
	if err != nil {
		return nil, err
	}

	corrected := stripCodeFences(text)
	if strings.TrimSpace(corrected) == "" {
		return nil, fmt.Errorf("empty syntax fix for %s", relPath)
	}

	generated := &models.GeneratedFix{
		Error:       detected,
		Type:        models.FixSyntax,
		Confidence:  0.7,
		FileChanges: map[string]string{relPath: corrected},
		Rationale:   "Rewrote " + relPath + " to resolve the syntax error",
	}
	generated.ValidationPassed = validateFix(generated)
	return generated, nil
}

// complete sends one user message and returns the concatenated text reply.
func (g *Generator) complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := g.client.sdk().Messages.New(ctx, anthropic.MessageNewParams{
		Model:     g.client.Model(),
		MaxTokens: 8192,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("collaborator request: %w", err)
	}

	g.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	var text strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(variant.Text)
		}
	}
	return text.String(), nil
}

// buildPrompt assembles the error report the model fixes against.
func (g *Generator) buildPrompt(detected models.DetectedError, relPath, fileContent string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Category: %s\n", detected.Category)
	fmt.Fprintf(&b, "Error: %s\n", detected.Message)
	if relPath != "" {
		fmt.Fprintf(&b, "File: %s\n", relPath)
	}
	if detected.LineNumber > 0 {
		fmt.Fprintf(&b, "Line: %d\n", detected.LineNumber)
	}
	if detected.StackTrace != "" {
		fmt.Fprintf(&b, "\nStack trace:\n```\n%s\n```\n", detected.StackTrace)
	}
	if len(detected.ContextLines) > 0 {
		fmt.Fprintf(&b, "\nSurrounding output:\n```\n%s\n```\n", strings.Join(detected.ContextLines, "\n"))
	}
	if fileContent != "" {
		fmt.Fprintf(&b, "\nContent of %s:\n```\n%s\n```\n", relPath, fileContent)
	}
	return b.String()
}

// affectedFile loads the error's file, bounded, and returns its content and
// root-relative path. Missing or unreadable files yield empty strings.
func (g *Generator) affectedFile(detected models.DetectedError, root string) (content, relPath string) {
	if detected.FilePath == "" {
		return "", ""
	}

	path := detected.FilePath
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", detected.FilePath
	}
	if len(data) > maxPromptFileBytes {
		data = data[:maxPromptFileBytes]
	}

	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = detected.FilePath
	}
	return string(data), rel
}

// fixTypeFor tags the reply by what it changes.
func fixTypeFor(reply fixReply) models.FixType {
	if len(reply.Files) > 0 {
		return models.FixCodeModification
	}
	if len(reply.Commands) > 0 {
		return models.FixCommand
	}
	return models.FixCodeModification
}

// validateFix runs the syntactic checks possible without executing anything:
// non-empty content, sane relative paths, and well-formed JSON for .json
// files.
func validateFix(generated *models.GeneratedFix) bool {
	if len(generated.FileChanges) == 0 && len(generated.Commands) == 0 {
		return false
	}
	for path, content := range generated.FileChanges {
		if strings.TrimSpace(content) == "" {
			return false
		}
		if filepath.IsAbs(path) || strings.HasPrefix(filepath.Clean(path), "..") {
			return false
		}
		if strings.HasSuffix(path, ".json") && !json.Valid([]byte(content)) {
			return false
		}
	}
	return true
}

// extractJSON pulls the JSON object out of a reply that may carry fences or
// prose around it.
func extractJSON(text string) string {
	text = stripCodeFences(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

// clamp01 bounds a model-reported confidence to [0, 1].
func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// stripCodeFences removes a surrounding markdown code fence, if present.
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
