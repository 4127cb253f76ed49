package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/musher-dev/mcpterm/internal/state"
)

// wheelStep is the number of log lines one wheel notch scrolls.
const wheelStep = 3

// KeyMap describes the bindings shown in the help footer. The bindings are
// documentation only: keys are interpreted by the state machine.
type KeyMap struct {
	Insert   key.Binding
	Command  key.Binding
	Quit     key.Binding
	ForceQ   key.Binding
	Page     key.Binding
	Clear    key.Binding
	Submit   key.Binding
	Cancel   key.Binding
	Complete key.Binding
	History  key.Binding
	Move     key.Binding
	Pick     key.Binding
	Kill     key.Binding
}

// DefaultKeyMap returns the bindings of the modal interface.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Insert:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "insert")),
		Command:  key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQ:   key.NewBinding(key.WithKeys("ctrl+q"), key.WithHelp("ctrl+q", "quit")),
		Page:     key.NewBinding(key.WithKeys("pgup", "pgdown", "home", "end"), key.WithHelp("pgup/pgdn", "scroll")),
		Clear:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
		Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Complete: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "complete")),
		History:  key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "history")),
		Move:     key.NewBinding(key.WithKeys("j", "k", "up", "down"), key.WithHelp("j/k", "move")),
		Pick:     key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "pick")),
		Kill:     key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "clear input")),
	}
}

// ForMode returns the bindings relevant in mode.
func (k KeyMap) ForMode(mode state.Mode) []key.Binding {
	switch mode {
	case state.Insert:
		return []key.Binding{k.Submit, k.Kill, k.Cancel, k.ForceQ}
	case state.Command:
		return []key.Binding{k.Submit, k.Complete, k.History, k.Cancel}
	case state.Select:
		return []key.Binding{k.Move, k.Pick, k.Submit, k.Cancel}
	default:
		return []key.Binding{k.Insert, k.Command, k.Page, k.Clear, k.Quit}
	}
}

// translateKey converts a bubbletea key message into a state event.
func translateKey(msg tea.KeyMsg) (state.Event, bool) {
	if msg.Paste {
		return state.Paste{Text: string(msg.Runes)}, true
	}

	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) != 1 {
			return state.Paste{Text: string(msg.Runes)}, true
		}

		k := state.Rune(msg.Runes[0])
		k.Alt = msg.Alt

		return k, true
	case tea.KeySpace:
		return state.Rune(' '), true
	case tea.KeyEnter:
		return state.Special(state.KeyEnter), true
	case tea.KeyEsc:
		return state.Special(state.KeyEsc), true
	case tea.KeyBackspace, tea.KeyCtrlH:
		return state.Special(state.KeyBackspace), true
	case tea.KeyDelete:
		return state.Special(state.KeyDelete), true
	case tea.KeyTab:
		return state.Special(state.KeyTab), true
	case tea.KeyUp:
		return state.Special(state.KeyUp), true
	case tea.KeyDown:
		return state.Special(state.KeyDown), true
	case tea.KeyLeft:
		return state.Special(state.KeyLeft), true
	case tea.KeyRight:
		return state.Special(state.KeyRight), true
	case tea.KeyHome:
		return state.Special(state.KeyHome), true
	case tea.KeyEnd:
		return state.Special(state.KeyEnd), true
	case tea.KeyPgUp:
		return state.Special(state.KeyPageUp), true
	case tea.KeyPgDown:
		return state.Special(state.KeyPageDown), true
	}

	name, ok := strings.CutPrefix(msg.String(), "ctrl+")
	if ok && len(name) == 1 && name[0] >= 'a' && name[0] <= 'z' {
		return state.Ctrl(rune(name[0])), true
	}

	return nil, false
}

// translateMouse converts wheel presses into scroll events.
func translateMouse(msg tea.MouseMsg) (state.Event, bool) {
	if msg.Action != tea.MouseActionPress {
		return nil, false
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return state.Wheel{Delta: wheelStep}, true
	case tea.MouseButtonWheelDown:
		return state.Wheel{Delta: -wheelStep}, true
	default:
		return nil, false
	}
}
