// Package status renders the top status bar: mode, connection state with a
// tick-driven spinner, tool count and scroll position.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/musher-dev/mcpterm/internal/state"
	"github.com/musher-dev/mcpterm/internal/tui/ui/layout"
)

// Frames are the spinner frames shown while a connection is pending. One
// frame advances per state tick.
var Frames = spinner.MiniDot.Frames

const separator = " │ "

// Styles holds the status bar styles.
type Styles struct {
	Bar          lipgloss.Style
	Brand        lipgloss.Style
	Separator    lipgloss.Style
	Modes        map[state.Mode]lipgloss.Style
	Pending      lipgloss.Style
	Connected    lipgloss.Style
	Failed       lipgloss.Style
	Disconnected lipgloss.Style
	Muted        lipgloss.Style
}

// DefaultStyles returns the colored status bar styles.
func DefaultStyles() Styles {
	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("0"))

	return Styles{
		Bar:       lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("252")),
		Brand:     lipgloss.NewStyle().Bold(true),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Modes: map[state.Mode]lipgloss.Style{
			state.Normal:  badge.Background(lipgloss.Color("4")),
			state.Insert:  badge.Background(lipgloss.Color("2")),
			state.Command: badge.Background(lipgloss.Color("3")),
			state.Select:  badge.Background(lipgloss.Color("5")),
		},
		Pending:      lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		Connected:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		Failed:       lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Disconnected: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}
}

// PlainStyles returns unstyled status bar styles.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()

	return Styles{
		Bar:          plain,
		Brand:        plain,
		Separator:    plain,
		Modes:        map[state.Mode]lipgloss.Style{state.Normal: plain, state.Insert: plain, state.Command: plain, state.Select: plain},
		Pending:      plain,
		Connected:    plain,
		Failed:       plain,
		Disconnected: plain,
		Muted:        plain,
	}
}

func (st Styles) mode(m state.Mode) lipgloss.Style {
	if style, ok := st.Modes[m]; ok {
		return style
	}

	return st.Muted
}

// Render produces the status bar line, exactly width cells wide.
func Render(s state.State, width int, st Styles) string {
	parts := []string{
		st.Brand.Render("mcpterm"),
		st.mode(s.Mode).Render(s.Mode.String()),
		Connection(s, st),
	}

	if _, ok := s.Connection.(state.SessionActive); ok {
		parts = append(parts, st.Muted.Render(plural(len(s.Tools), "tool", "tools")))
	}

	line := " " + strings.Join(parts, st.Separator.Render(separator))

	if s.Scroll > 0 {
		right := st.Muted.Render(fmt.Sprintf("↑%d ", s.Scroll))
		if gap := width - ansi.StringWidth(line) - ansi.StringWidth(right); gap >= 1 {
			line += strings.Repeat(" ", gap) + right
		}
	}

	return st.Bar.Render(layout.Fit(line, width))
}

// Connection renders the connection label.
func Connection(s state.State, st Styles) string {
	switch c := s.Connection.(type) {
	case state.Connecting, state.AwaitingEndpoint:
		frame := Frames[int(s.Ticks%uint64(len(Frames)))]
		return st.Pending.Render(frame + " " + c.String())
	case state.SessionActive:
		label := "● " + c.String()
		if c.ServerInfo.Name != "" {
			label += " (" + strings.TrimSpace(c.ServerInfo.Name+" "+c.ServerInfo.Version) + ")"
		}

		return st.Connected.Render(label)
	case state.Failed:
		return st.Failed.Render("✗ " + c.String())
	case nil:
		return st.Disconnected.Render("○ disconnected")
	default:
		return st.Disconnected.Render("○ " + c.String())
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}

	return fmt.Sprintf("%d %s", n, many)
}
