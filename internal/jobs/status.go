package jobs

// validTransitions defines allowed state transitions. Every terminal
// state is final: cancelling a completed job is a no-op, completing a
// cancelled one is discarded.
var validTransitions = map[State][]State{
	StateRunning:   {StateCompleted, StateFailed, StateCancelled},
	StateCompleted: {},
	StateFailed:    {},
	StateCancelled: {},
}

// CanTransitionTo returns true if transitioning from s to target is valid.
func (s State) CanTransitionTo(target State) bool {
	valid, ok := validTransitions[s]
	if !ok {
		return false
	}
	for _, v := range valid {
		if v == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no transition leaves this state.
func (s State) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}
