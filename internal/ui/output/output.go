// Package output creates the termenv outputs pour writes to. Log records may
// use whatever the terminal supports, while task progress sticks to the
// sixteen ANSI colors that every CI log viewer renders.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// Palette selects the colors an output may use.
type Palette int

const (
	// Terminal uses what the attached terminal advertises.
	Terminal Palette = iota
	// Basic limits output to the ANSI colors.
	Basic
)

// Profile resolves the palette against the environment. NO_COLOR always wins.
func (p Palette) Profile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	if p == Basic {
		return termenv.ANSI
	}
	return termenv.EnvColorProfile()
}

// New creates an output on w, or on stderr when w is nil. Escape sequences are
// written even when w is not a terminal, so piped runs keep their colors.
func New(w io.Writer, p Palette) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}
	return termenv.NewOutput(w, termenv.WithProfile(p.Profile()), termenv.WithTTY(true))
}
