package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/ShayCichocki/bringup/internal/loop"
	"github.com/ShayCichocki/bringup/internal/tui"
	"github.com/ShayCichocki/bringup/pkg/models"
)

// runVerifyWithTUI runs the loop behind the live terminal view. The loop
// keeps running even if the display exits early; quitting the view cancels
// the run.
func runVerifyWithTUI(ctx context.Context, cancel context.CancelFunc, l *loop.Loop, root string, maxCycles int) (report *models.LoopReport, retErr error) {
	// Suppress log output while the TUI is active (it corrupts the display)
	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(originalOutput)

	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("PANIC in verify display: %v", r)
		}
	}()

	program, _ := tui.NewProgram(root, maxCycles)
	if program == nil {
		return nil, fmt.Errorf("failed to create display program")
	}

	l.OnCycle = func(c models.CycleResult) {
		program.Send(tui.CycleMsg{Result: c})
	}

	loopDone := make(chan *models.LoopReport, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				loopDone <- &models.LoopReport{
					ProjectPath: root,
					Status:      models.LoopFailed,
					Summary:     fmt.Sprintf("Internal failure: %v", r),
				}
			}
		}()
		loopDone <- l.Run(ctx, root)
	}()

	tuiDone := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				tuiDone <- fmt.Errorf("PANIC in display: %v", r)
			}
		}()
		_, err := program.Run()
		tuiDone <- err
	}()

	select {
	case report = <-loopDone:
		// Loop finished. Show the outcome and wait for the user to quit.
		program.Send(tui.RunDoneMsg{Report: report})
		retErr = <-tuiDone
		return report, retErr

	case retErr = <-tuiDone:
		// User quit early. Cancel the loop and collect its report.
		cancel()
		report = <-loopDone
		return report, retErr
	}
}
