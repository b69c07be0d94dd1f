package fix

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/ShayCichocki/bringup/internal/exec"
	"github.com/ShayCichocki/bringup/pkg/models"
)

// PortFixer resolves port conflicts by freeing the port or finding another.
type PortFixer struct {
	Runner exec.CommandRunner
}

var portRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)EADDRINUSE.*:(\d+)`),
	regexp.MustCompile(`(?i)address already in use.*:(\d+)`),
	regexp.MustCompile(`(?i)port (\d+).*already in use`),
	regexp.MustCompile(`(?i)bind.*:(\d+)`),
}

// ExtractPort pulls the conflicting port number from an error message.
func ExtractPort(err models.DetectedError) (int, bool) {
	for _, re := range portRes {
		if m := re.FindStringSubmatch(err.Message); m != nil {
			n, convErr := strconv.Atoi(m[1])
			if convErr == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// KillPortProcess terminates whatever holds the port. Termination cannot be
// rolled back, which the result records.
func (f *PortFixer) KillPortProcess(ctx context.Context, port int) models.FixResult {
	strategy := &models.FixStrategy{
		Name:        "kill_port_process",
		Description: fmt.Sprintf("Kill process using port %d", port),
		Type:        models.FixPort,
		Categories:  []models.ErrorCategory{models.CategoryPortInUse},
		Confidence:  0.9,
	}

	res := f.Runner.Run(ctx, exec.Command{Command: fmt.Sprintf("lsof -ti :%d", port)})
	if res.InfraError != nil {
		return models.FixResult{
			Strategy: strategy,
			Message:  fmt.Sprintf("Error finding process on port %d: %v", port, res.InfraError),
		}
	}

	pids := strings.Fields(res.Stdout)
	if len(pids) == 0 {
		return models.FixResult{
			Strategy: strategy,
			Message:  fmt.Sprintf("No process found using port %d", port),
		}
	}

	for _, pid := range pids {
		f.Runner.Run(ctx, exec.Command{Command: "kill -9 " + pid})
	}

	return models.FixResult{
		Success:     true,
		Strategy:    strategy,
		Message:     fmt.Sprintf("Killed process(es) using port %d", port),
		ChangesMade: []string{"Killed PID(s): " + strings.Join(pids, ", ")},
		Rollback:    map[string]string{"note": "Process termination cannot be rolled back"},
	}
}

// FindAvailablePort probes localhost ports starting at start and returns
// the first free one, giving up after 100 candidates.
func FindAvailablePort(start int) int {
	for port := start; port < start+100; port++ {
		l, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err != nil {
			continue
		}
		l.Close()
		return port
	}
	return start + 100
}
