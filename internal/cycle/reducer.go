package cycle

// Reduce applies action to state and returns the resulting state. It never
// fails: actions that do not apply return state unchanged. The input is
// never mutated.
func Reduce(state State, action Action) State {
	next, _ := Apply(state, action)
	return next
}

// Apply is Reduce that also reports whether the state changed.
func Apply(state State, action Action) (State, bool) {
	switch a := action.(type) {
	case AddNewCycleAction:
		return addNewCycle(state, a.NewCycle)
	case InterruptCycleAction:
		return endActive(state, func(c Cycle) Cycle { return c.interrupt(a.At) })
	case MarkCycleAsFinishedAction:
		return endActive(state, func(c Cycle) Cycle { return c.finish(a.At) })
	default:
		return state, false
	}
}

func addNewCycle(state State, c Cycle) (State, bool) {
	if c.ID == "" || c.IsTerminal() || state.indexOf(c.ID) >= 0 {
		return state, false
	}
	// one running cycle at a time
	if state.NonTerminal() > 0 {
		return state, false
	}

	cycles := make([]Cycle, len(state.Cycles), len(state.Cycles)+1)
	copy(cycles, state.Cycles)
	cycles = append(cycles, c)
	return State{Cycles: cycles, ActiveCycleID: c.ID}, true
}

func endActive(state State, end func(Cycle) Cycle) (State, bool) {
	active, ok := state.Active()
	if !ok {
		return state, false
	}
	next := state.replace(state.indexOf(active.ID), end(active))
	next.ActiveCycleID = ""
	return next, true
}
