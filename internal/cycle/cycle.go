package cycle

import "time"

func New(id, task string, minutesAmount int, start time.Time) Cycle {
	return Cycle{
		ID:            id,
		Task:          task,
		MinutesAmount: minutesAmount,
		StartDate:     start,
	}
}

// IsTerminal reports whether the cycle was interrupted or finished.
func (c Cycle) IsTerminal() bool {
	return c.InterruptDate != nil || c.FinishedDate != nil
}

func (c Cycle) Status() Status {
	switch {
	case c.FinishedDate != nil:
		return StatusCompleted
	case c.InterruptDate != nil:
		return StatusInterrupted
	default:
		return StatusInProgress
	}
}

// Duration is the configured length of the cycle.
func (c Cycle) Duration() time.Duration {
	return time.Duration(c.MinutesAmount) * time.Minute
}

// EndDate returns the terminal timestamp, or the zero time for a running cycle.
func (c Cycle) EndDate() time.Time {
	if c.FinishedDate != nil {
		return *c.FinishedDate
	}
	if c.InterruptDate != nil {
		return *c.InterruptDate
	}
	return time.Time{}
}

func (c Cycle) interrupt(at time.Time) Cycle {
	c.InterruptDate = &at
	return c
}

func (c Cycle) finish(at time.Time) Cycle {
	c.FinishedDate = &at
	return c
}
