package session

// State is one node of the session controller's state machine (spec §4.5).
type State int

const (
	Listening State = iota
	Connecting
	Initializing
	Idle
	Rendering
	Snapshotting
	Moving
	Terminated
)

func (s State) String() string {
	switch s {
	case Listening:
		return "Listening"
	case Connecting:
		return "Connecting"
	case Initializing:
		return "Initializing"
	case Idle:
		return "Idle"
	case Rendering:
		return "Rendering"
	case Snapshotting:
		return "Snapshotting"
	case Moving:
		return "Moving"
	case Terminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}
