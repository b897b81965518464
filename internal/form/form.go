package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	MinMinutes     = 5
	MaxMinutes     = 60
	DefaultMinutes = 25
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid cycle input")

var (
	errTaskRequired = errors.New("task is required")
	errTooShort     = fmt.Errorf("cycle must be at least %d minutes", MinMinutes)
	errTooLong      = fmt.Errorf("cycle must be at most %d minutes", MaxMinutes)
)

// NewCycleData is the input needed to start a cycle.
type NewCycleData struct {
	Task          string `json:"task"`
	MinutesAmount int    `json:"minutesAmount"`
}

// Validate checks the task and duration bounds. All violations are reported.
func (d NewCycleData) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Task) == "" {
		errs = append(errs, errTaskRequired)
	}
	if d.MinutesAmount < MinMinutes {
		errs = append(errs, errTooShort)
	}
	if d.MinutesAmount > MaxMinutes {
		errs = append(errs, errTooLong)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// Parse builds NewCycleData from raw text input and validates it.
func Parse(task, minutes string) (NewCycleData, error) {
	d := NewCycleData{Task: strings.TrimSpace(task)}

	n, err := strconv.Atoi(strings.TrimSpace(minutes))
	if err != nil {
		return d, fmt.Errorf("%w: minutes must be a whole number, got %q", ErrInvalid, minutes)
	}
	d.MinutesAmount = n

	return d, d.Validate()
}

// Suggestions are offered as task name completions.
func Suggestions() []string {
	return []string{
		"Work on the project",
		"Study technology",
		"Work on the thesis",
	}
}
