package cli

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Progress shows a spinner while a network call runs.
type Progress struct {
	out   io.Writer
	quiet bool
}

// NewProgress creates a progress indicator writing to out. A quiet progress
// never draws anything.
func NewProgress(out io.Writer, quiet bool) *Progress {
	return &Progress{out: out, quiet: quiet}
}

// Run calls fn with a spinner labelled msg. On failure the spinner is
// replaced by a red failure line.
func (p *Progress) Run(msg string, fn func() error) error {
	if p == nil || p.quiet {
		return fn()
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(p.out))
	s.Suffix = " " + msg
	s.Start()

	err := fn()
	if err != nil {
		s.FinalMSG = text.FgRed.Sprint("✗ "+msg) + "\n"
	}
	s.Stop()
	return err
}
