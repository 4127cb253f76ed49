package state

// Mode is the input mode of the interface.
type Mode int

const (
	// Normal is the navigation mode.
	Normal Mode = iota
	// Insert edits free text.
	Insert
	// Command edits a ':' command line.
	Command
	// Select picks one entry from a candidate list.
	Select
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "NORMAL"
	case Insert:
		return "INSERT"
	case Command:
		return "COMMAND"
	case Select:
		return "SELECT"
	default:
		return "UNKNOWN"
	}
}
