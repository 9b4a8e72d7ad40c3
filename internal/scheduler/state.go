package scheduler

// State describes where the battery is in its lifecycle.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCoolingDown
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCoolingDown:
		return "cooling down"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}
