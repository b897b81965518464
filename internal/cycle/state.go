package cycle

// Empty returns the initial store state.
func Empty() State {
	return State{Cycles: []Cycle{}}
}

// Active returns the running cycle. A dangling id or one that points at a
// terminal cycle yields no active cycle.
func (s State) Active() (Cycle, bool) {
	if s.ActiveCycleID == "" {
		return Cycle{}, false
	}
	i := s.indexOf(s.ActiveCycleID)
	if i < 0 || s.Cycles[i].IsTerminal() {
		return Cycle{}, false
	}
	return s.Cycles[i], true
}

// Find looks a cycle up by id.
func (s State) Find(id string) (Cycle, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Cycle{}, false
	}
	return s.Cycles[i], true
}

// NonTerminal counts cycles that are neither interrupted nor finished.
func (s State) NonTerminal() int {
	n := 0
	for _, c := range s.Cycles {
		if !c.IsTerminal() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy so callers cannot alias store internals.
func (s State) Clone() State {
	out := State{
		Cycles:        make([]Cycle, len(s.Cycles)),
		ActiveCycleID: s.ActiveCycleID,
	}
	for i, c := range s.Cycles {
		if c.InterruptDate != nil {
			t := *c.InterruptDate
			c.InterruptDate = &t
		}
		if c.FinishedDate != nil {
			t := *c.FinishedDate
			c.FinishedDate = &t
		}
		out.Cycles[i] = c
	}
	return out
}

func (s State) indexOf(id string) int {
	for i := range s.Cycles {
		if s.Cycles[i].ID == id {
			return i
		}
	}
	return -1
}

// replace returns a copy of s with the cycle at i swapped for c.
func (s State) replace(i int, c Cycle) State {
	cycles := make([]Cycle, len(s.Cycles))
	copy(cycles, s.Cycles)
	cycles[i] = c
	return State{Cycles: cycles, ActiveCycleID: s.ActiveCycleID}
}
