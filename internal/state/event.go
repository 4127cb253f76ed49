package state

import "github.com/musher-dev/mcpterm/internal/mcp"

// Event is an input to Transition.
type Event interface {
	event()
}

// KeyCode identifies a key. Printable keys use KeyRune with Key.Rune set.
type KeyCode int

// Keys understood by the state machine.
const (
	KeyRune KeyCode = iota
	KeyEnter
	KeyEsc
	KeyBackspace
	KeyDelete
	KeyTab
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
)

// Key is a key press. Ctrl combinations carry the lower-case letter in Rune.
type Key struct {
	Code KeyCode
	Rune rune
	Ctrl bool
	Alt  bool
}

// Paste is bracketed-paste text.
type Paste struct {
	Text string
}

// Resize reports the terminal size.
type Resize struct {
	Width  int
	Height int
}

// Wheel is a mouse wheel movement; positive Delta scrolls towards older lines.
type Wheel struct {
	Delta int
}

// Tick is a periodic timer event.
type Tick struct{}

// Protocol wraps an event emitted by the MCP client.
type Protocol struct {
	Event mcp.Event
}

// EffectFailed reports that executing an effect returned an error.
type EffectFailed struct {
	Effect Effect
	Err    error
}

func (Key) event()          {}
func (Paste) event()        {}
func (Resize) event()       {}
func (Wheel) event()        {}
func (Tick) event()         {}
func (Protocol) event()     {}
func (EffectFailed) event() {}

// Rune returns the key event for a printable rune.
func Rune(r rune) Key {
	return Key{Code: KeyRune, Rune: r}
}

// Ctrl returns the key event for Ctrl plus a letter.
func Ctrl(r rune) Key {
	return Key{Code: KeyRune, Rune: r, Ctrl: true}
}

// Special returns the key event for a non-printable key.
func Special(code KeyCode) Key {
	return Key{Code: code}
}

func (k Key) isRune(r rune) bool {
	return k.Code == KeyRune && !k.Ctrl && !k.Alt && k.Rune == r
}

func (k Key) isCtrl(r rune) bool {
	return k.Code == KeyRune && k.Ctrl && k.Rune == r
}

func (k Key) printable() bool {
	return k.Code == KeyRune && !k.Ctrl && !k.Alt && k.Rune >= ' '
}
