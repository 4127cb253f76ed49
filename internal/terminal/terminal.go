// Package terminal detects terminal capabilities for CLI output and the
// interactive UI.
package terminal

import (
	"os"

	"golang.org/x/term"
)

// Fallback dimensions when the size cannot be queried.
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// Info holds terminal capability information.
type Info struct {
	IsTTY      bool // stdout
	StdinIsTTY bool
	NoColor    bool
	Width      int
	Height     int
	ForceFlag  bool // Set when --no-color flag is used
}

// Detect returns terminal information for the current environment.
func Detect() *Info {
	stdoutFD := int(os.Stdout.Fd())

	info := &Info{
		IsTTY:      term.IsTerminal(stdoutFD),
		StdinIsTTY: term.IsTerminal(int(os.Stdin.Fd())),
		Width:      DefaultWidth,
		Height:     DefaultHeight,
	}

	if info.IsTTY {
		if w, h, err := term.GetSize(stdoutFD); err == nil && w > 0 && h > 0 {
			info.Width, info.Height = w, h
		}
	}

	// https://no-color.org/
	_, info.NoColor = os.LookupEnv("NO_COLOR")

	if os.Getenv("TERM") == "dumb" {
		info.NoColor = true
	}

	return info
}

// ColorEnabled returns true if colored output should be used.
func (t *Info) ColorEnabled() bool {
	if t.ForceFlag {
		return false
	}

	return t.IsTTY && !t.NoColor
}

// InteractiveEnabled reports whether a full-screen UI can run: both stdin
// and stdout must be terminals.
func (t *Info) InteractiveEnabled() bool {
	return t.IsTTY && t.StdinIsTTY
}

// SpinnersEnabled returns true if spinners should be used.
func (t *Info) SpinnersEnabled() bool {
	return t.IsTTY && !t.NoColor
}
