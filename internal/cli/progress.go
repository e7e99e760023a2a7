package cli

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Progress shows a spinner on w while a step runs. A quiet Progress only
// runs the steps.
type Progress struct {
	spinner *spinner.Spinner
}

// NewProgress creates a Progress writing to w.
func NewProgress(w io.Writer, quiet bool) *Progress {
	if quiet {
		return &Progress{}
	}
	return &Progress{spinner: spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))}
}

// Start shows msg next to the spinner, replacing the previous message.
func (p *Progress) Start(msg string) {
	if p.spinner == nil {
		return
	}
	p.spinner.Suffix = " " + msg
	if !p.spinner.Active() {
		p.spinner.Start()
	}
}

// Stop hides the spinner.
func (p *Progress) Stop() {
	if p.spinner == nil {
		return
	}
	p.spinner.Stop()
}

// Run shows msg while fn runs.
func (p *Progress) Run(msg string, fn func() error) error {
	p.Start(msg)
	defer p.Stop()
	return fn()
}
