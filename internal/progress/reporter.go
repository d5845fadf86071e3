// Package progress renders feedback for in-flight synchronization
// operations. The store's loading flag drives it: the CLI starts a
// spinner when an operation begins and stops it when the flag clears.
package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides feedback while a logical operation is in flight.
type Reporter interface {
	Start(message string)
	Stop()
}

// NewReporter returns a TerminalReporter if running in an interactive
// terminal, or a CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays an indeterminate spinner in the terminal.
type TerminalReporter struct {
	bar  *progressbar.ProgressBar
	done chan struct{}
}

func (r *TerminalReporter) Start(message string) {
	r.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(message),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(65*time.Millisecond),
	)
	r.done = make(chan struct{})

	go func(bar *progressbar.ProgressBar, done chan struct{}) {
		t := time.NewTicker(100 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				_ = bar.Add(1)
			case <-done:
				return
			}
		}
	}(r.bar, r.done)
}

func (r *TerminalReporter) Stop() {
	if r.bar == nil {
		return
	}
	close(r.done)
	_ = r.bar.Finish()
	r.bar = nil
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct{}

func (r *CIReporter) Start(message string) {
	fmt.Fprintln(os.Stderr, message)
}

func (r *CIReporter) Stop() {}
