package state

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Buffer is an editable line of text with a cursor measured in runes.
// Every edit returns a new Buffer.
type Buffer struct {
	text   string
	cursor int
}

// NewBuffer returns a buffer holding text with the cursor at the end.
func NewBuffer(text string) Buffer {
	return Buffer{text: text, cursor: len([]rune(text))}
}

// Text returns the buffer contents.
func (b Buffer) Text() string { return b.text }

// Cursor returns the cursor position in runes.
func (b Buffer) Cursor() int { return b.cursor }

// Column returns the display column of the cursor.
func (b Buffer) Column() int {
	return runewidth.StringWidth(string([]rune(b.text)[:b.cursor]))
}

// Insert inserts s at the cursor and moves the cursor past it. Line breaks
// become spaces.
func (b Buffer) Insert(s string) Buffer {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	if s == "" {
		return b
	}

	runes := []rune(b.text)
	ins := []rune(s)

	out := make([]rune, 0, len(runes)+len(ins))
	out = append(out, runes[:b.cursor]...)
	out = append(out, ins...)
	out = append(out, runes[b.cursor:]...)

	return Buffer{text: string(out), cursor: b.cursor + len(ins)}
}

// Backspace removes the rune before the cursor.
func (b Buffer) Backspace() Buffer {
	if b.cursor == 0 {
		return b
	}

	runes := []rune(b.text)
	out := append(runes[:b.cursor-1:b.cursor-1], runes[b.cursor:]...)

	return Buffer{text: string(out), cursor: b.cursor - 1}
}

// Delete removes the rune under the cursor.
func (b Buffer) Delete() Buffer {
	runes := []rune(b.text)
	if b.cursor >= len(runes) {
		return b
	}

	out := append(runes[:b.cursor:b.cursor], runes[b.cursor+1:]...)

	return Buffer{text: string(out), cursor: b.cursor}
}

// Left moves the cursor one rune left.
func (b Buffer) Left() Buffer {
	if b.cursor > 0 {
		b.cursor--
	}

	return b
}

// Right moves the cursor one rune right.
func (b Buffer) Right() Buffer {
	if b.cursor < len([]rune(b.text)) {
		b.cursor++
	}

	return b
}

// Home moves the cursor to the start.
func (b Buffer) Home() Buffer {
	b.cursor = 0
	return b
}

// End moves the cursor past the last rune.
func (b Buffer) End() Buffer {
	b.cursor = len([]rune(b.text))
	return b
}
