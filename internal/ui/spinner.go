package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
)

// Past this, the spinner leaves a note of how long the operation took
// when it stops.
const slowAfter = 3 * time.Second

// Spinner is the activity indicator for the long database operations the
// CLI runs: loading, syncing, resolving. It renders on stderr so stdout
// stays clean when output is piped.
type Spinner struct {
	s       *spinner.Spinner
	message string
	started time.Time
}

// NewSpinner creates and starts a spinner with the given message.
func NewSpinner(message string) *Spinner {
	frames := spinner.CharSets[14] // braille dots
	if !UseUnicode {
		frames = spinner.CharSets[0]
	}

	s := spinner.New(frames, 90*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	if UseColors {
		_ = s.Color("cyan") //nolint:errcheck
	}
	s.Start()

	return &Spinner{s: s, message: message, started: time.Now()}
}

// Stop clears the spinner, reporting the elapsed time for slow
// operations.
func (sp *Spinner) Stop() {
	sp.s.Stop()
	if note := slowNote(sp.message, time.Since(sp.started)); note != "" {
		MutedMsg("%s", note)
	}
}

func slowNote(message string, elapsed time.Duration) string {
	if elapsed < slowAfter {
		return ""
	}
	return fmt.Sprintf("%s took %s", strings.TrimRight(message, "."), elapsed.Round(100*time.Millisecond))
}
