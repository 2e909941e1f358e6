package action

// State is the lifecycle state of an action.
type State int

// State constants.
const (
	StateNotStarted State = iota
	StateRunning
	StateDone
	StateErrorStopped
	StateUndoing
	StateUndone
)

var stateNames = [...]string{
	StateNotStarted:   "AS_NOT_STARTED",
	StateRunning:      "AS_RUNNING",
	StateDone:         "AS_COMPLETED",
	StateErrorStopped: "AS_ERROR_STOPPED",
	StateUndoing:      "AS_UNDO_RUNNING",
	StateUndone:       "AS_UNDO_COMPLETE",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "AS_UNKNOWN"
}

// Finished reports whether nothing is left to do in state s.
func (s State) Finished() bool {
	return s == StateDone || s == StateUndone
}
