package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoarinFerret/CycleWarden/internal/config"
	"github.com/SoarinFerret/CycleWarden/internal/cycle"
	"github.com/SoarinFerret/CycleWarden/internal/form"
	"github.com/SoarinFerret/CycleWarden/internal/kv"
	"github.com/SoarinFerret/CycleWarden/internal/store"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu    sync.Mutex
	ended []cycle.Cycle
	err   error
}

func (r *recordingNotifier) CycleEnded(_ context.Context, c cycle.Cycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, c)
	return r.err
}

func (r *recordingNotifier) snapshot() []cycle.Cycle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]cycle.Cycle(nil), r.ended...)
}

type recordingPublisher struct {
	mu    sync.Mutex
	types []cycle.ActionType
}

func (p *recordingPublisher) Publish(_ context.Context, c store.Change) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, c.Type)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []cycle.ActionType {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]cycle.ActionType(nil), p.types...)
}

func newTestEngine(t *testing.T) (*Engine, *store.Store, *clockwork.FakeClock, *recordingNotifier, *recordingPublisher) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(t0)
	s := store.New(context.Background(), kv.NewMemoryStore(), store.Options{Clock: clock})
	desktop := &recordingNotifier{}
	pub := &recordingPublisher{}
	e, err := NewEngine(s, config.Default(), Options{Clock: clock, Publisher: pub, Desktop: desktop})
	require.NoError(t, err)
	return e, s, clock, desktop, pub
}

func TestFormatTimeRemaining(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{
			name:     "Less than 1 hour",
			duration: 45 * time.Minute,
			expected: "45 minute(s)",
		},
		{
			name:     "Exactly 1 hour",
			duration: 1 * time.Hour,
			expected: "1 hour(s) 0 minute(s)",
		},
		{
			name:     "Less than 1 minute",
			duration: 30 * time.Second,
			expected: "0 minute(s)",
		},
		{
			name:     "25 minutes",
			duration: 25 * time.Minute,
			expected: "25 minute(s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatTimeRemaining(tt.duration)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNotificationText(t *testing.T) {
	done := cycle.New("a", "Write report", 25, t0)
	end := t0.Add(25 * time.Minute)
	done.FinishedDate = &end

	summary, body := notificationText(done)
	assert.Equal(t, "Cycle completed", summary)
	assert.Equal(t, "Write report: 25 minute(s) of focus done", body)

	stopped := cycle.New("b", "Review PR", 15, t0)
	stop := t0.Add(5 * time.Minute)
	stopped.InterruptDate = &stop

	summary, body = notificationText(stopped)
	assert.Equal(t, "Cycle interrupted", summary)
	assert.Equal(t, "Review PR: stopped with 10 minute(s) remaining", body)
}

func TestReconcile_FinishesOverdueCycle(t *testing.T) {
	e, s, clock, _, _ := newTestEngine(t)
	ctx := context.Background()

	assert.False(t, e.Reconcile(ctx), "no active cycle")

	_, err := s.CreateNewCycle(ctx, form.NewCycleData{Task: "a", MinutesAmount: 5})
	require.NoError(t, err)

	clock.Advance(4 * time.Minute)
	assert.False(t, e.Reconcile(ctx), "still running")

	clock.Advance(2 * time.Minute)
	assert.True(t, e.Reconcile(ctx))
	_, active := s.ActiveCycle()
	assert.False(t, active)
	assert.Equal(t, cycle.StatusCompleted, s.State().Cycles[0].Status())
}

func TestRun_NotifiesAndPublishes(t *testing.T) {
	e, s, clock, desktop, pub := newTestEngine(t)
	chat := &recordingNotifier{err: errors.New("chat offline")}
	e.AddNotifier(chat)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	// wait for the reconcile job timer so subscriptions are in place
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	_, err := s.CreateNewCycle(ctx, form.NewCycleData{Task: "Write report", MinutesAmount: 5})
	require.NoError(t, err)
	// poller ticker plus reconcile timer
	require.NoError(t, clock.BlockUntilContext(ctx, 2))

	clock.Advance(5 * time.Minute)

	require.Eventually(t, func() bool { return len(desktop.snapshot()) == 1 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return len(chat.snapshot()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, cycle.StatusCompleted, desktop.snapshot()[0].Status())

	require.Eventually(t, func() bool { return len(pub.published()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []cycle.ActionType{cycle.ActionAddNewCycle, cycle.ActionMarkCycleAsFinished}, pub.published())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("engine did not stop")
	}
}

func TestNotifyEnded_DesktopDisabled(t *testing.T) {
	e, _, _, desktop, _ := newTestEngine(t)
	cfg := config.Default()
	off := false
	cfg.Notify.Desktop = &off
	e.ApplyConfig(cfg)

	e.notifyEnded(context.Background(), cycle.New("a", "x", 5, t0))
	assert.Empty(t, desktop.snapshot())
}

func TestApplyConfig_UpdatesTickInterval(t *testing.T) {
	e, _, _, _, _ := newTestEngine(t)
	cfg := config.Default()
	cfg.Timer.TickInterval = config.Duration(250 * time.Millisecond)

	e.ApplyConfig(cfg)
	assert.Equal(t, 250*time.Millisecond, e.poller.Interval())
}

func TestHandleChange_NotifiesOnInterrupt(t *testing.T) {
	e, _, _, desktop, pub := newTestEngine(t)
	ctx := context.Background()

	started := cycle.New("a", "Write report", 25, t0)
	e.handleChange(ctx, store.Change{Type: cycle.ActionAddNewCycle, Cycle: started, At: t0})
	assert.Empty(t, desktop.snapshot(), "starting a cycle is silent")

	stopped := started
	stop := t0.Add(5 * time.Minute)
	stopped.InterruptDate = &stop
	e.handleChange(ctx, store.Change{Type: cycle.ActionInterruptCycle, Cycle: stopped, At: stop})

	require.Len(t, desktop.snapshot(), 1)
	assert.Equal(t, cycle.StatusInterrupted, desktop.snapshot()[0].Status())
	assert.Equal(t, []cycle.ActionType{cycle.ActionAddNewCycle, cycle.ActionInterruptCycle}, pub.published())
}
