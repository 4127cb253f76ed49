// Package layout computes the screen frame of the interactive client.
//
// The screen is, top to bottom: a one-line status bar, the output log, the
// input line and a one-line key help footer. Overlays (selection lists and
// the completion popup) are drawn over the bottom rows of the log.
package layout

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const (
	// StatusBarHeight is the number of lines reserved for the top status bar.
	StatusBarHeight = 1
	// InputHeight is the number of lines of the input line.
	InputHeight = 1
	// HelpHeight is the number of lines of the key help footer.
	HelpHeight = 1

	// MinWidth is the narrowest frame rendered.
	MinWidth = 20

	chrome = StatusBarHeight + InputHeight + HelpHeight
)

// Frame describes the terminal layout. Rows are 0-based.
type Frame struct {
	Width  int
	Height int

	LogTop    int
	LogHeight int
	InputRow  int
	HelpRow   int
}

// ClampTerminalSize enforces minimum terminal dimensions.
func ClampTerminalSize(width, height int) (clampedWidth, clampedHeight int) {
	return max(width, MinWidth), max(height, chrome+1)
}

// ComputeFrame calculates the layout frame from terminal dimensions.
func ComputeFrame(width, height int) Frame {
	width, height = ClampTerminalSize(width, height)

	return Frame{
		Width:     width,
		Height:    height,
		LogTop:    StatusBarHeight,
		LogHeight: height - chrome,
		InputRow:  height - HelpHeight - InputHeight,
		HelpRow:   height - HelpHeight,
	}
}

// OverlayRows returns how many log rows an overlay of n lines may occupy.
func (f Frame) OverlayRows(n int) int {
	return max(0, min(n, f.LogHeight))
}

// Fit truncates s to width cells and pads it with spaces to exactly width.
// s may contain ANSI styling.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}

	s = ansi.Truncate(s, width, "…")
	if pad := width - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}

	return s
}

// Window returns the slice of n visible rows that keeps row selected
// visible, scrolling as little as possible from the top.
func Window(total, selected, n int) (start, end int) {
	if n <= 0 || total <= 0 {
		return 0, 0
	}

	if total <= n {
		return 0, total
	}

	start = max(0, min(selected-n+1, total-n))

	return start, start + n
}
