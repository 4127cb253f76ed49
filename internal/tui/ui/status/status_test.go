package status

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/musher-dev/mcpterm/internal/mcp"
	"github.com/musher-dev/mcpterm/internal/state"
)

var local = mcp.ServerDescriptor{Name: "local", URL: "http://127.0.0.1:8000/sse"}

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*state.State)
		want   string
	}{
		{
			name:   "disconnected",
			mutate: func(*state.State) {},
			want:   " mcpterm │ NORMAL │ ○ disconnected",
		},
		{
			name: "connecting spinner follows ticks",
			mutate: func(s *state.State) {
				s.Mode = state.Command
				s.Connection = state.Connecting{Server: local, Generation: 1}
				s.Ticks = 1
			},
			want: " mcpterm │ COMMAND │ " + Frames[1] + " connecting to local",
		},
		{
			name: "active with tools",
			mutate: func(s *state.State) {
				s.Connection = state.SessionActive{
					Server:     local,
					Generation: 1,
					ServerInfo: mcp.Implementation{Name: "demo", Version: "1.0"},
				}
				s.Tools = []mcp.Tool{{Name: "a"}, {Name: "b"}}
			},
			want: " mcpterm │ NORMAL │ ● connected to local (demo 1.0) │ 2 tools",
		},
		{
			name: "failed",
			mutate: func(s *state.State) {
				s.Mode = state.Insert
				s.Connection = state.Failed{Server: local, Generation: 2, Reason: "boom"}
			},
			want: " mcpterm │ INSERT │ ✗ connection to local failed: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := state.New([]mcp.ServerDescriptor{local})
			tt.mutate(&s)

			got := Render(s, 80, PlainStyles())

			if w := ansi.StringWidth(got); w != 80 {
				t.Fatalf("width = %d, want 80", w)
			}

			if trimmed := strings.TrimRight(got, " "); trimmed != tt.want {
				t.Errorf("Render() = %q, want %q", trimmed, tt.want)
			}
		})
	}
}

func TestRender_ScrollIndicator(t *testing.T) {
	s := state.New(nil)
	s.Scroll = 12

	got := Render(s, 60, PlainStyles())

	if !strings.HasSuffix(got, "↑12 ") {
		t.Errorf("Render() = %q, want scroll indicator at the right edge", got)
	}

	if w := ansi.StringWidth(got); w != 60 {
		t.Errorf("width = %d, want 60", w)
	}
}

func TestRender_Narrow(t *testing.T) {
	s := state.New(nil)
	s.Connection = state.Failed{Server: local, Reason: strings.Repeat("x", 100)}

	got := Render(s, 30, DefaultStyles())

	if w := ansi.StringWidth(got); w != 30 {
		t.Errorf("width = %d, want 30", w)
	}
}
