package telegram

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoarinFerret/CycleWarden/internal/cycle"
	"github.com/SoarinFerret/CycleWarden/internal/kv"
	"github.com/SoarinFerret/CycleWarden/internal/store"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newCommands(t *testing.T) (*Commands, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(t0)
	s := store.New(context.Background(), kv.NewMemoryStore(), store.Options{Clock: clock})
	return NewCommands(s, []int64{42}), clock
}

func TestCommands_Allowed(t *testing.T) {
	cmds, _ := newCommands(t)
	assert.True(t, cmds.Allowed(42))
	assert.False(t, cmds.Allowed(7))
	assert.Equal(t, []int64{42}, cmds.ChatIDs())
}

func TestCommands_New(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no args", nil, MsgNewUsage},
		{"missing task", []string{"25"}, MsgNewUsage},
		{"not a number", []string{"soon", "Write", "report"}, `minutes must be a whole number, got "soon"`},
		{"too short", []string{"3", "Write", "report"}, "cycle must be at least 5 minutes"},
		{"ok", []string{"25", "Write", "report"}, `Started "Write report" for 25 minutes.`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds, _ := newCommands(t)
			assert.Equal(t, tt.want, cmds.New(ctx, tt.args))
		})
	}
}

func TestCommands_NewWhileActive(t *testing.T) {
	cmds, _ := newCommands(t)
	ctx := context.Background()

	cmds.New(ctx, []string{"25", "a"})
	assert.Equal(t, MsgCycleActive, cmds.New(ctx, []string{"25", "b"}))
}

func TestCommands_StatusAndStop(t *testing.T) {
	cmds, clock := newCommands(t)
	ctx := context.Background()

	assert.Equal(t, MsgNoActiveCycle, cmds.Status())
	assert.Equal(t, MsgNoActiveCycle, cmds.Stop(ctx))

	cmds.New(ctx, []string{"10", "Write", "report"})
	clock.Advance(2*time.Minute + 30*time.Second)

	assert.Equal(t, "Write report: 07:30 left (25%)", cmds.Status())
	assert.Equal(t, `Interrupted "Write report" with 07:30 left.`, cmds.Stop(ctx))
	assert.Equal(t, MsgNoActiveCycle, cmds.Status())
}

func TestCommands_History(t *testing.T) {
	cmds, clock := newCommands(t)
	ctx := context.Background()
	assert.Equal(t, MsgNoHistory, cmds.History())

	for i := 0; i < historyLimit+2; i++ {
		cmds.New(ctx, []string{"5", fmt.Sprintf("task-%d", i)})
		clock.Advance(time.Minute)
		cmds.Stop(ctx)
	}

	lines := strings.Split(cmds.History(), "\n")
	require.Len(t, lines, historyLimit)
	assert.True(t, strings.HasPrefix(lines[0], "task-11 · 5 minutes"))
	assert.True(t, strings.HasSuffix(lines[0], "Interrupted"))
}

func TestEndedMessage(t *testing.T) {
	c := cycle.New("a", "Write report", 25, t0)
	end := t0.Add(25 * time.Minute)

	done := c
	done.FinishedDate = &end
	assert.Equal(t, "Cycle completed: Write report (25 minutes).", EndedMessage(done))

	stopped := c
	stopped.InterruptDate = &end
	assert.Equal(t, "Cycle interrupted: Write report.", EndedMessage(stopped))
}
