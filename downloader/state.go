package downloader

// State is the lifecycle position of a Task.
type State uint8

const (
	Pending State = iota
	InProgress
	Completed
	PartiallyFailed
	Aborted
)

var transitions = map[State][]State{
	Pending:    {InProgress, Aborted},
	InProgress: {Completed, PartiallyFailed, Aborted},
}

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case InProgress:
		return "in progress"
	case Completed:
		return "completed"
	case PartiallyFailed:
		return "partially failed"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

func (s State) canMove(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}
