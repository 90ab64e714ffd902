package driver

// State is the orchestrator position within a run.
type State uint8

const (
	StateIdle State = iota
	StateLocating
	StateSingleRun
	StateFanOut
	StateDraining
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLocating:
		return "locating"
	case StateSingleRun:
		return "single-run"
	case StateFanOut:
		return "fan-out"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// StateObserver receives every state transition of a run.
type StateObserver func(State)
