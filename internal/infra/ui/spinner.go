// Where: cli/internal/infra/ui/spinner.go
// What: Indeterminate progress indicator for long waits.
// Why: watch-deployment can poll for minutes; show liveness on a terminal only.
package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Spinner reports liveness while waiting.
type Spinner interface {
	Describe(msg string)
	Tick()
	Stop()
}

// NewSpinner returns an animated spinner when interactive, otherwise a
// line-per-update reporter.
func NewSpinner(out io.Writer, interactive bool) Spinner {
	if !interactive {
		return &lineSpinner{out: out}
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
	)
	return &barSpinner{bar: bar}
}

type barSpinner struct {
	bar *progressbar.ProgressBar
}

func (s *barSpinner) Describe(msg string) {
	s.bar.Describe(msg)
}

func (s *barSpinner) Tick() {
	_ = s.bar.Add(1)
}

func (s *barSpinner) Stop() {
	_ = s.bar.Finish()
}

type lineSpinner struct {
	out  io.Writer
	last string
}

func (s *lineSpinner) Describe(msg string) {
	if msg == s.last {
		return
	}
	s.last = msg
	fmt.Fprintln(s.out, msg)
}

func (s *lineSpinner) Tick() {}

func (s *lineSpinner) Stop() {}
