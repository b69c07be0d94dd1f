package loop

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// StopController watches the project's .bringup/signals directory so an
// operator can abort a run between cycles by dropping a "stop" file.
type StopController struct {
	signalsDir string

	mu         sync.RWMutex
	stopSignal bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewStopController creates a controller for the given project root. The
// watcher is best effort; when it cannot be set up the controller falls
// back to polling the signal file on every check.
func NewStopController(projectRoot string) (*StopController, error) {
	signalsDir := filepath.Join(projectRoot, ".bringup", "signals")
	if err := os.MkdirAll(signalsDir, 0755); err != nil {
		return nil, err
	}

	sc := &StopController{
		signalsDir: signalsDir,
		done:       make(chan struct{}),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return sc, nil
	}
	if err := watcher.Add(signalsDir); err != nil {
		watcher.Close()
		return sc, nil
	}
	sc.watcher = watcher

	go sc.watchSignals()

	return sc, nil
}

// watchSignals monitors the signals directory for the stop file.
func (sc *StopController) watchSignals() {
	for {
		select {
		case <-sc.done:
			return
		case event, ok := <-sc.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) == "stop" &&
				(event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0) {
				sc.mu.Lock()
				sc.stopSignal = true
				sc.mu.Unlock()
			}
		case <-sc.watcher.Errors:
			// Keep watching; the stat fallback covers missed events.
		}
	}
}

// ShouldStop returns true if a stop signal has been received.
func (sc *StopController) ShouldStop() bool {
	if sc == nil {
		return false
	}

	// Check the file directly in case the watcher missed it.
	if _, err := os.Stat(filepath.Join(sc.signalsDir, "stop")); err == nil {
		sc.mu.Lock()
		sc.stopSignal = true
		sc.mu.Unlock()
	}

	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.stopSignal
}

// SendStop creates the stop signal file.
func (sc *StopController) SendStop() error {
	path := filepath.Join(sc.signalsDir, "stop")
	return os.WriteFile(path, []byte(time.Now().Format(time.RFC3339)), 0644)
}

// ClearSignals removes the signal file and resets state.
func (sc *StopController) ClearSignals() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.stopSignal = false
	os.Remove(filepath.Join(sc.signalsDir, "stop"))
}

// Close shuts down the controller.
func (sc *StopController) Close() {
	if sc == nil {
		return
	}
	close(sc.done)
	if sc.watcher != nil {
		sc.watcher.Close()
	}
}
