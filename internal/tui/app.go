// Package tui provides the live terminal view for verification runs. It
// renders cycle progress as the loop reports it and the final outcome when
// the run ends.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/bringup/pkg/models"
)

// maxVisibleLogs caps the activity lines kept on screen.
const maxVisibleLogs = 8

// CycleMsg carries one finished cycle into the view.
type CycleMsg struct {
	Result models.CycleResult
}

// RunDoneMsg carries the final report when the loop ends.
type RunDoneMsg struct {
	Report *models.LoopReport
}

// LogMsg appends one activity line to the view.
type LogMsg struct {
	Line string
}

// App is the bubbletea model for a verification run.
type App struct {
	projectPath string
	maxCycles   int

	spinner spinner.Model
	cycles  []models.CycleResult
	report  *models.LoopReport
	logs    []string

	width    int
	height   int
	done     bool
	quitting bool
	started  time.Time
}

// NewApp creates the verification view for a project.
func NewApp(projectPath string, maxCycles int) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return &App{
		projectPath: projectPath,
		maxCycles:   maxCycles,
		spinner:     s,
		width:       80,
		started:     time.Now(),
	}
}

// Init starts the spinner.
func (a *App) Init() tea.Cmd {
	return a.spinner.Tick
}

// Update handles incoming messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			a.quitting = true
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case spinner.TickMsg:
		if a.done {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case CycleMsg:
		a.cycles = append(a.cycles, msg.Result)

	case RunDoneMsg:
		a.report = msg.Report
		a.done = true

	case LogMsg:
		a.logs = append(a.logs, msg.Line)
		if len(a.logs) > maxVisibleLogs {
			a.logs = a.logs[len(a.logs)-maxVisibleLogs:]
		}
	}

	return a, nil
}

// View renders the full screen.
func (a *App) View() string {
	if a.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(a.viewHeader())
	b.WriteString("\n")
	b.WriteString(a.viewCycles())

	if len(a.logs) > 0 && !a.done {
		b.WriteString("\n")
		for _, line := range a.logs {
			b.WriteString(logStyle.Render("  " + line))
			b.WriteString("\n")
		}
	}

	if a.done && a.report != nil {
		b.WriteString("\n")
		b.WriteString(a.viewOutcome())
	}

	b.WriteString("\n")
	b.WriteString(a.viewFooter())
	return b.String()
}

// viewHeader renders the title bar with the project path and cycle count.
func (a *App) viewHeader() string {
	title := titleStyle.Render("bringup")
	project := projectStyle.Render(a.projectPath)

	progress := fmt.Sprintf("cycle %d/%d", len(a.cycles), a.maxCycles)
	if a.done {
		progress = fmt.Sprintf("%d cycle(s)", len(a.cycles))
	}

	return lipgloss.JoinHorizontal(lipgloss.Center,
		title, "  ", project, "  ", hintStyle.Render(progress))
}

// viewCycles renders one row per completed cycle.
func (a *App) viewCycles() string {
	if len(a.cycles) == 0 {
		if a.done {
			return hintStyle.Render("  no cycles ran")
		}
		return fmt.Sprintf("  %s detecting project and starting first run...", a.spinner.View())
	}

	var b strings.Builder
	for _, c := range a.cycles {
		b.WriteString("  ")
		b.WriteString(cycleGlyph(c.Status))
		b.WriteString(fmt.Sprintf(" cycle %-2d  %-13s", c.Cycle, c.Status))
		b.WriteString(fmt.Sprintf("  errors %-3d", len(c.ErrorsFound)))
		b.WriteString(fmt.Sprintf("  fixed %d/%d", c.FixesSuccessful, c.FixesSuccessful+c.FixesFailed))
		b.WriteString(hintStyle.Render(fmt.Sprintf("  %s", c.Duration.Round(100*time.Millisecond))))
		b.WriteString("\n")
	}

	if !a.done {
		b.WriteString(fmt.Sprintf("  %s cycle %d running...", a.spinner.View(), len(a.cycles)+1))
		b.WriteString("\n")
	}
	return b.String()
}

// viewOutcome renders the terminal status line and summary.
func (a *App) viewOutcome() string {
	var b strings.Builder

	switch a.report.Status {
	case models.LoopSuccess:
		b.WriteString(successStyle.Render("✓ " + string(a.report.Status)))
	default:
		b.WriteString(errorStyle.Render("✗ " + string(a.report.Status)))
	}

	if a.report.Summary != "" {
		b.WriteString("\n")
		b.WriteString(summaryStyle.Render(a.report.Summary))
	}

	for _, rec := range a.report.Recommendations {
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("  → " + rec))
	}
	return b.String()
}

// viewFooter renders the keyboard hint line.
func (a *App) viewFooter() string {
	if a.done {
		return hintStyle.Render("Press q to exit")
	}

	elapsed := time.Since(a.started).Round(time.Second)
	return hintStyle.Render(fmt.Sprintf("running %s │ q quit", elapsed))
}

// cycleGlyph returns the status marker for a cycle row.
func cycleGlyph(status models.CycleStatus) string {
	switch status {
	case models.CycleSuccess:
		return successStyle.Render("✓")
	case models.CycleTestsFailed:
		return warnStyle.Render("⚠")
	default:
		return errorStyle.Render("✗")
	}
}

// Done reports whether the final report has arrived.
func (a *App) Done() bool {
	return a.done
}

// NewProgram creates the bubbletea program and returns the underlying app so
// callers can feed it cycle events with program.Send.
func NewProgram(projectPath string, maxCycles int) (*tea.Program, *App) {
	app := NewApp(projectPath, maxCycles)
	program := tea.NewProgram(app, tea.WithAltScreen())
	return program, app
}
