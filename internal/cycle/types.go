package cycle

import "time"

// Status is the display status derived from a cycle's terminal fields.
type Status string

const (
	StatusCompleted   Status = "Completed"
	StatusInterrupted Status = "Interrupted"
	StatusInProgress  Status = "In progress"
)

// Cycle represents one task-timer session.
type Cycle struct {
	ID            string     `json:"id"`
	Task          string     `json:"task"`
	MinutesAmount int        `json:"minutesAmount"`
	StartDate     time.Time  `json:"startDate"`
	InterruptDate *time.Time `json:"interruptDate,omitempty"`
	FinishedDate  *time.Time `json:"finishedDate,omitempty"`
}

// State is the full cycle store state. An empty ActiveCycleID means no cycle is running.
type State struct {
	Cycles        []Cycle `json:"cycles"`
	ActiveCycleID string  `json:"activeCycleID"`
}
