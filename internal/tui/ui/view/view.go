// Package view renders a state.State to a full terminal screen. Rendering
// is a pure function of the state; the output log is shown through a
// bubbles viewport positioned by the state's scroll offset.
package view

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/musher-dev/mcpterm/internal/state"
	"github.com/musher-dev/mcpterm/internal/tui/ui/layout"
	"github.com/musher-dev/mcpterm/internal/tui/ui/status"
)

// Prompts shown before the edit buffer.
const (
	CommandPrompt = ":"
	InsertPrompt  = "› "
)

// Styles holds every style used on screen.
type Styles struct {
	Status status.Styles

	Error        lipgloss.Style
	Warning      lipgloss.Style
	Echo         lipgloss.Style
	Prompt       lipgloss.Style
	Cursor       lipgloss.Style
	Message      lipgloss.Style
	Overlay      lipgloss.Style
	OverlayTitle lipgloss.Style
	Selected     lipgloss.Style
}

// DefaultStyles returns the colored styles.
func DefaultStyles() Styles {
	overlay := lipgloss.NewStyle().Background(lipgloss.Color("237")).Foreground(lipgloss.Color("252"))

	return Styles{
		Status:       status.DefaultStyles(),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Warning:      lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Echo:         lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Prompt:       lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		Cursor:       lipgloss.NewStyle().Reverse(true),
		Message:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Overlay:      overlay,
		OverlayTitle: overlay.Bold(true),
		Selected:     overlay.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6")),
	}
}

// PlainStyles returns styles without colors or attributes.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()

	return Styles{
		Status:       status.PlainStyles(),
		Error:        plain,
		Warning:      plain,
		Echo:         plain,
		Prompt:       plain,
		Cursor:       plain,
		Message:      plain,
		Overlay:      plain,
		OverlayTitle: plain,
		Selected:     plain,
	}
}

// Options are render inputs that are not part of the state.
type Options struct {
	Styles Styles
	// Help is the rendered key help for the footer line.
	Help string
}

// Render draws the whole screen: exactly s.Height rows (clamped to the
// minimum frame) of exactly s.Width cells.
func Render(s state.State, opts Options) string {
	f := layout.ComputeFrame(s.Width, s.Height)
	st := opts.Styles

	rows := make([]string, 0, f.Height)
	rows = append(rows, status.Render(s, f.Width, st.Status))

	body := logRows(s, f, st)
	overlay := overlayRows(s, f, st)
	copy(body[len(body)-len(overlay):], overlay)

	rows = append(rows, body...)
	rows = append(rows, inputRow(s, f.Width, st))
	rows = append(rows, layout.Fit(opts.Help, f.Width))

	return strings.Join(rows, "\n")
}

func logRows(s state.State, f layout.Frame, st Styles) []string {
	lines := s.Log.Lines()

	styled := make([]string, len(lines))
	for i, line := range lines {
		styled[i] = styleLogLine(layout.Fit(line, f.Width), line, st)
	}

	vp := viewport.New(f.Width, f.LogHeight)
	vp.SetContent(strings.Join(styled, "\n"))

	offset := max(0, min(s.Scroll, len(lines)-1))
	vp.SetYOffset(max(0, len(lines)-f.LogHeight-offset))

	rows := strings.Split(vp.View(), "\n")

	out := make([]string, f.LogHeight)
	for i := range out {
		if i < len(rows) {
			out[i] = layout.Fit(rows[i], f.Width)
		} else {
			out[i] = layout.Fit("", f.Width)
		}
	}

	return out
}

func styleLogLine(fitted, raw string, st Styles) string {
	switch {
	case strings.HasPrefix(raw, "Error:"):
		return st.Error.Render(fitted)
	case strings.HasPrefix(raw, "Warning:"):
		return st.Warning.Render(fitted)
	case strings.HasPrefix(raw, InsertPrompt):
		return st.Echo.Render(fitted)
	default:
		return fitted
	}
}

func overlayRows(s state.State, f layout.Frame, st Styles) []string {
	switch {
	case s.Mode == state.Select && s.Selection != nil:
		sel := s.Selection
		rows := f.OverlayRows(len(sel.Candidates) + 1)

		if rows == 0 {
			return nil
		}

		out := []string{st.OverlayTitle.Render(layout.Fit(" "+sel.Title, f.Width))}

		return append(out, listRows(sel.Candidates, sel.Index, rows-1, true, f.Width, st)...)
	case s.Mode == state.Command && s.Completion != nil:
		c := s.Completion
		return listRows(c.Items, c.Index, f.OverlayRows(len(c.Items)), false, f.Width, st)
	default:
		return nil
	}
}

func listRows(items []string, selected, n int, numbered bool, width int, st Styles) []string {
	start, end := layout.Window(len(items), selected, n)

	out := make([]string, 0, end-start)

	for i := start; i < end; i++ {
		label := items[i]
		if numbered {
			label = fmt.Sprintf("%d. %s", i+1, label)
		}

		if i == selected {
			out = append(out, st.Selected.Render(layout.Fit("▸ "+label, width)))
		} else {
			out = append(out, st.Overlay.Render(layout.Fit("  "+label, width)))
		}
	}

	return out
}

func inputRow(s state.State, width int, st Styles) string {
	switch s.Mode {
	case state.Command:
		return editRow(CommandPrompt, s.Input, width, st)
	case state.Insert:
		return editRow(InsertPrompt, s.Input, width, st)
	default:
		return st.Message.Render(layout.Fit(s.Status, width))
	}
}

// editRow draws prompt and buffer with a block cursor, scrolling the text
// left when the cursor would fall off the right edge.
func editRow(prompt string, b state.Buffer, width int, st Styles) string {
	runes := []rune(b.Text())
	cursor := min(b.Cursor(), len(runes))

	before := string(runes[:cursor])
	at, after := " ", ""

	if cursor < len(runes) {
		at, after = string(runes[cursor]), string(runes[cursor+1:])
	}

	avail := width - runewidth.StringWidth(prompt) - runewidth.StringWidth(at)
	for before != "" && runewidth.StringWidth(before) > avail {
		_, size := utf8.DecodeRuneInString(before)
		before = before[size:]
	}

	line := st.Prompt.Render(prompt) + before + st.Cursor.Render(at) + after

	return layout.Fit(line, width)
}
