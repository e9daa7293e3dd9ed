package cli

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Progress is a spinner shown while a command waits on the network. The
// zero value and a quiet Progress print nothing.
type Progress struct {
	s *spinner.Spinner
}

// StartProgress starts a spinner on w with message. With quiet set it
// returns a Progress that does nothing.
func StartProgress(w io.Writer, message string, quiet bool) *Progress {
	if quiet {
		return &Progress{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	s.Start()
	return &Progress{s: s}
}

// Success stops the spinner and leaves message in green.
func (p *Progress) Success(message string) {
	p.stop(text.FgGreen.Sprint(message))
}

// Fail stops the spinner and leaves message in red.
func (p *Progress) Fail(message string) {
	p.stop(text.FgRed.Sprint(message))
}

// Stop stops the spinner without a final message.
func (p *Progress) Stop() {
	p.stop("")
}

func (p *Progress) stop(final string) {
	if p == nil || p.s == nil {
		return
	}
	if final != "" {
		p.s.FinalMSG = final + "\n"
	}
	p.s.Stop()
	p.s = nil
}
