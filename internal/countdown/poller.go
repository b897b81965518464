package countdown

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/SoarinFerret/CycleWarden/internal/cycle"
	"github.com/SoarinFerret/CycleWarden/internal/logging"
	"github.com/SoarinFerret/CycleWarden/internal/store"
)

const DefaultInterval = time.Second

// Finisher is the part of the cycle store the poller drives.
type Finisher interface {
	ActiveCycle() (cycle.Cycle, bool)
	FinishCycle(ctx context.Context, id string) bool
}

// Poller keeps at most one polling task alive, bound to the identity of the
// active cycle.
type Poller struct {
	store    Finisher
	clock    clockwork.Clock
	interval atomic.Int64

	// OnTick is called on every evaluation, from the task goroutine.
	OnTick func(id string, c Countdown)

	boundID string
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewPoller(s Finisher, clock clockwork.Clock, interval time.Duration) *Poller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	p := &Poller{store: s, clock: clock}
	p.SetInterval(interval)
	return p
}

// SetInterval changes the polling period; a running task picks it up on its
// next tick.
func (p *Poller) SetInterval(d time.Duration) {
	if d <= 0 {
		d = DefaultInterval
	}
	p.interval.Store(int64(d))
}

func (p *Poller) Interval() time.Duration {
	return time.Duration(p.interval.Load())
}

// Run binds to the current active cycle and re-binds on every store change
// until ctx is cancelled or changes is closed.
func (p *Poller) Run(ctx context.Context, changes <-chan store.Change) error {
	defer p.unbind()

	p.rebind(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			// the change may be stale or dropped ones may precede it, so
			// always re-read the store
			p.rebind(ctx)
		}
	}
}

func (p *Poller) rebind(ctx context.Context) {
	active, ok := p.store.ActiveCycle()
	id := ""
	if ok {
		id = active.ID
	}
	if id == p.boundID && p.running() {
		return
	}

	p.unbind()
	if !ok {
		return
	}

	taskCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.boundID, p.cancel, p.done = id, cancel, done

	slog.Debug("Countdown bound", logging.CycleID(id))
	go func() {
		defer close(done)
		p.poll(taskCtx, active)
	}()
}

func (p *Poller) running() bool {
	if p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// unbind cancels the current task and waits for it to exit.
func (p *Poller) unbind() {
	if p.cancel != nil {
		p.cancel()
		<-p.done
	}
	p.boundID, p.cancel, p.done = "", nil, nil
}

func (p *Poller) poll(ctx context.Context, c cycle.Cycle) {
	if p.evaluate(ctx, c) {
		return
	}

	interval := p.Interval()
	ticker := p.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if p.evaluate(ctx, c) {
				return
			}
			if d := p.Interval(); d != interval {
				interval = d
				ticker.Reset(d)
			}
		}
	}
}

// evaluate reports whether the task is finished.
func (p *Poller) evaluate(ctx context.Context, c cycle.Cycle) bool {
	if ctx.Err() != nil {
		return true
	}
	cd := Derive(c, p.clock.Now())
	if p.OnTick != nil {
		p.OnTick(c.ID, cd)
	}
	if !cd.Done {
		return false
	}
	if p.store.FinishCycle(ctx, c.ID) {
		slog.Info("Cycle completed", logging.CycleID(c.ID), logging.Task(c.Task))
	}
	return true
}
