package state

import "strings"

// MaxLogLines is the capacity of the output log.
const MaxLogLines = 1000

// OutputLog is a fixed-capacity ring of output lines. Appending to a full log
// evicts the oldest line. It is a value type: copies do not share storage.
type OutputLog struct {
	lines [MaxLogLines]string
	start int
	n     int
}

// Append adds lines, splitting any that contain line breaks.
func (l OutputLog) Append(lines ...string) OutputLog {
	for _, line := range lines {
		for part := range strings.SplitSeq(line, "\n") {
			l.push(part)
		}
	}

	return l
}

func (l *OutputLog) push(line string) {
	if l.n < MaxLogLines {
		l.lines[(l.start+l.n)%MaxLogLines] = line
		l.n++

		return
	}

	l.lines[l.start] = line
	l.start = (l.start + 1) % MaxLogLines
}

// Len reports the number of lines held.
func (l OutputLog) Len() int { return l.n }

// Lines returns all lines, oldest first.
func (l OutputLog) Lines() []string {
	out := make([]string, l.n)
	for i := range l.n {
		out[i] = l.lines[(l.start+i)%MaxLogLines]
	}

	return out
}

// Last returns the newest line, or "" when empty.
func (l OutputLog) Last() string {
	if l.n == 0 {
		return ""
	}

	return l.lines[(l.start+l.n-1)%MaxLogLines]
}

// Window returns up to height lines ending offset lines above the newest.
func (l OutputLog) Window(offset, height int) []string {
	if height <= 0 || l.n == 0 {
		return nil
	}

	offset = max(0, min(offset, l.n-1))
	end := l.n - offset
	begin := max(0, end-height)

	out := make([]string, 0, end-begin)
	for i := begin; i < end; i++ {
		out = append(out, l.lines[(l.start+i)%MaxLogLines])
	}

	return out
}
