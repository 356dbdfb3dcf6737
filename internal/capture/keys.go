package capture

// Key is a key code as reported by a Display.
type Key int

const (
	// KeyNone means no key was pressed within the poll timeout.
	KeyNone Key = -1
	// KeyEsc is the escape key.
	KeyEsc Key = 27
)

// Action is what the loop does in response to a key.
type Action int

const (
	// Continue keeps previewing.
	Continue Action = iota
	// Process converts the current frame, runs detection and saves the result.
	Process
	// Quit ends the loop.
	Quit
)

func (a Action) String() string {
	switch a {
	case Continue:
		return "continue"
	case Process:
		return "process"
	case Quit:
		return "quit"
	default:
		return "unknown"
	}
}

// Dispatch maps a key to its action: ESC processes, q or Q quits, and every
// other key, including KeyNone, continues.
func Dispatch(k Key) Action {
	switch k {
	case KeyEsc:
		return Process
	case 'q', 'Q':
		return Quit
	default:
		return Continue
	}
}
