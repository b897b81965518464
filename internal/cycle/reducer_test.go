package cycle

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type unknownAction struct{}

func (unknownAction) Type() ActionType { return "SOMETHING_ELSE" }
func (unknownAction) action()          {}

func TestReduce_AddNewCycle(t *testing.T) {
	c := New("c1", "Write report", 25, t0)
	state := Reduce(Empty(), AddNewCycle(c))

	require.Len(t, state.Cycles, 1)
	assert.Equal(t, "c1", state.ActiveCycleID)
	active, ok := state.Active()
	require.True(t, ok)
	assert.Equal(t, c, active)
}

func TestReduce_AddNewCycleRejectsDuplicateAndEmptyID(t *testing.T) {
	state := Reduce(Empty(), AddNewCycle(New("c1", "a", 5, t0)))
	state = Reduce(state, InterruptCycle(t0.Add(time.Minute)))

	next, changed := Apply(state, AddNewCycle(New("c1", "again", 5, t0)))
	assert.False(t, changed)
	assert.Equal(t, state, next)

	next, changed = Apply(state, AddNewCycle(New("", "no id", 5, t0)))
	assert.False(t, changed)
	assert.Equal(t, state, next)
}

func TestReduce_AddNewCycleWhileActiveIsNoop(t *testing.T) {
	state := Reduce(Empty(), AddNewCycle(New("c1", "a", 5, t0)))

	next, changed := Apply(state, AddNewCycle(New("c2", "b", 5, t0.Add(time.Second))))
	assert.False(t, changed)
	assert.Len(t, next.Cycles, 1)
	assert.Equal(t, "c1", next.ActiveCycleID)
}

func TestReduce_AddThenInterrupt(t *testing.T) {
	state := Reduce(Empty(), AddNewCycle(New("c1", "Write report", 5, t0)))
	at := t0.Add(2 * time.Minute)
	state = Reduce(state, InterruptCycle(at))

	assert.Equal(t, "", state.ActiveCycleID)
	require.NotNil(t, state.Cycles[0].InterruptDate)
	assert.True(t, state.Cycles[0].InterruptDate.Equal(at))
	assert.Nil(t, state.Cycles[0].FinishedDate)
	assert.Equal(t, StatusInterrupted, state.Cycles[0].Status())
}

func TestReduce_InterruptWithoutActiveIsNoop(t *testing.T) {
	state := Empty()
	next, changed := Apply(state, InterruptCycle(t0))
	assert.False(t, changed)
	assert.Equal(t, state, next)
}

func TestReduce_MarkCycleAsFinishedClearsActive(t *testing.T) {
	state := Reduce(Empty(), AddNewCycle(New("c1", "a", 5, t0)))
	state = Reduce(state, MarkCycleAsFinished(t0.Add(5*time.Minute)))

	assert.Equal(t, "", state.ActiveCycleID)
	assert.Equal(t, StatusCompleted, state.Cycles[0].Status())
	_, ok := state.Active()
	assert.False(t, ok)
}

func TestReduce_MarkCycleAsFinishedTwiceIsIdempotent(t *testing.T) {
	state := Reduce(Empty(), AddNewCycle(New("c1", "a", 5, t0)))
	once := Reduce(state, MarkCycleAsFinished(t0.Add(5*time.Minute)))
	twice, changed := Apply(once, MarkCycleAsFinished(t0.Add(6*time.Minute)))

	assert.False(t, changed)
	assert.Equal(t, once, twice)
	assert.True(t, twice.Cycles[0].FinishedDate.Equal(t0.Add(5*time.Minute)))
}

func TestReduce_TerminalCycleIsNeverTouchedAgain(t *testing.T) {
	state := Reduce(Empty(), AddNewCycle(New("c1", "a", 5, t0)))
	state = Reduce(state, InterruptCycle(t0.Add(time.Minute)))
	// a stale pointer at a terminal cycle must not make it active again
	state.ActiveCycleID = "c1"

	next, changed := Apply(state, MarkCycleAsFinished(t0.Add(2*time.Minute)))
	assert.False(t, changed)
	assert.Nil(t, next.Cycles[0].FinishedDate)
}

func TestReduce_UnknownActionReturnsStateUnchanged(t *testing.T) {
	state := Reduce(Empty(), AddNewCycle(New("c1", "a", 5, t0)))

	assert.Equal(t, state, Reduce(state, unknownAction{}))
	assert.Equal(t, state, Reduce(state, nil))
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	state := Reduce(Empty(), AddNewCycle(New("c1", "a", 5, t0)))
	before := state.Clone()

	_ = Reduce(state, InterruptCycle(t0.Add(time.Minute)))
	assert.Equal(t, before, state)
	assert.Nil(t, state.Cycles[0].InterruptDate)
}

func TestReduce_AtMostOneNonTerminalCycle(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	state := Empty()
	now := t0

	for i := 0; i < 2000; i++ {
		now = now.Add(time.Duration(rng.Intn(120)) * time.Second)
		var action Action
		switch rng.Intn(3) {
		case 0:
			action = AddNewCycle(New(fmt.Sprintf("c%d", i), "task", 5+rng.Intn(56), now))
		case 1:
			action = InterruptCycle(now)
		default:
			action = MarkCycleAsFinished(now)
		}
		state = Reduce(state, action)

		require.LessOrEqual(t, state.NonTerminal(), 1, "step %d", i)
		if state.ActiveCycleID != "" {
			c, ok := state.Find(state.ActiveCycleID)
			require.True(t, ok)
			require.False(t, c.IsTerminal())
		}
		for _, c := range state.Cycles {
			require.False(t, c.InterruptDate != nil && c.FinishedDate != nil)
		}
	}
}
