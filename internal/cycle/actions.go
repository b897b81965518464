package cycle

import "time"

// ActionType tags a transition request.
type ActionType string

const (
	ActionAddNewCycle         ActionType = "ADD_NEW_CYCLE"
	ActionInterruptCycle      ActionType = "INTERRUPT_CYCLE"
	ActionMarkCycleAsFinished ActionType = "MARK_CYCLE_AS_FINISHED"
)

// Action is a transition request consumed by Reduce.
type Action interface {
	Type() ActionType
	action()
}

type AddNewCycleAction struct {
	NewCycle Cycle
}

type InterruptCycleAction struct {
	At time.Time
}

type MarkCycleAsFinishedAction struct {
	At time.Time
}

func (AddNewCycleAction) Type() ActionType         { return ActionAddNewCycle }
func (InterruptCycleAction) Type() ActionType      { return ActionInterruptCycle }
func (MarkCycleAsFinishedAction) Type() ActionType { return ActionMarkCycleAsFinished }

func (AddNewCycleAction) action()         {}
func (InterruptCycleAction) action()      {}
func (MarkCycleAsFinishedAction) action() {}

func AddNewCycle(newCycle Cycle) Action {
	return AddNewCycleAction{NewCycle: newCycle}
}

func InterruptCycle(at time.Time) Action {
	return InterruptCycleAction{At: at}
}

func MarkCycleAsFinished(at time.Time) Action {
	return MarkCycleAsFinishedAction{At: at}
}
