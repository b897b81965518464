// Package store holds the process-wide cycle store: the single place where
// actions are reduced, snapshots persisted and changes fanned out.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/SoarinFerret/CycleWarden/internal/config"
	"github.com/SoarinFerret/CycleWarden/internal/cycle"
	"github.com/SoarinFerret/CycleWarden/internal/form"
	"github.com/SoarinFerret/CycleWarden/internal/kv"
	"github.com/SoarinFerret/CycleWarden/internal/logging"
	"github.com/SoarinFerret/CycleWarden/internal/metrics"
	"github.com/SoarinFerret/CycleWarden/internal/snapshot"
)

// ErrCycleActive is returned when starting a cycle while another runs.
var ErrCycleActive = errors.New("a cycle is already in progress")

// Change describes one applied transition.
type Change struct {
	Type  cycle.ActionType
	Cycle cycle.Cycle // the cycle the action started or ended
	State cycle.State
	At    time.Time
}

type Options struct {
	Key      string
	Clock    clockwork.Clock
	NewID    func() string
	Recorder metrics.Recorder
}

func (o *Options) setDefaults() {
	if o.Key == "" {
		o.Key = config.DefaultSnapshotKey
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.NewID == nil {
		o.NewID = newID
	}
	if o.Recorder == nil {
		o.Recorder = metrics.NoopRecorder{}
	}
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Store serializes every transition behind one mutex.
type Store struct {
	mu    sync.Mutex
	state cycle.State
	kv    kv.Store
	opts  Options

	subs   map[int]chan Change
	nextID int
}

// New loads the persisted snapshot from kv and returns the store.
func New(ctx context.Context, backend kv.Store, opts Options) *Store {
	opts.setDefaults()
	s := &Store{
		kv:   backend,
		opts: opts,
		subs: make(map[int]chan Change),
	}
	s.state = snapshot.Load(ctx, backend, opts.Key, opts.Recorder)

	active, ok := s.state.Active()
	opts.Recorder.SetActiveCycle(ok)
	if ok {
		slog.Info("Restored active cycle", logging.CycleID(active.ID), logging.Task(active.Task))
	}
	return s
}

// Clock is the time source transitions are stamped with.
func (s *Store) Clock() clockwork.Clock { return s.opts.Clock }

// Dispatch reduces action into the current state. A changed state is
// persisted and published before Dispatch returns.
func (s *Store) Dispatch(ctx context.Context, action cycle.Action) cycle.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatchLocked(ctx, action)
	return s.state.Clone()
}

func (s *Store) dispatchLocked(ctx context.Context, action cycle.Action) (Change, bool) {
	prev := s.state
	next, changed := cycle.Apply(prev, action)
	if !changed {
		return Change{}, false
	}
	s.state = next

	change := Change{
		Type:  action.Type(),
		State: next.Clone(),
		At:    s.opts.Clock.Now(),
	}
	if active, ok := next.Active(); ok {
		change.Cycle = active
	} else if was, ok := prev.Active(); ok {
		change.Cycle, _ = next.Find(was.ID)
	}

	s.persistLocked(ctx)
	s.record(change)
	s.publishLocked(change)
	return change, true
}

// persistLocked writes the snapshot. Failures are logged and the in-memory
// state stays authoritative; the next change retries the write.
func (s *Store) persistLocked(ctx context.Context) {
	if err := snapshot.Save(ctx, s.kv, s.opts.Key, s.state); err != nil {
		slog.Error("Failed to persist cycle snapshot", logging.Key(s.opts.Key), logging.Error(err))
		s.opts.Recorder.IncSnapshotWrite(metrics.ResultFailed)
		return
	}
	s.opts.Recorder.IncSnapshotWrite(metrics.ResultSuccess)
}

func (s *Store) record(c Change) {
	rec := s.opts.Recorder
	switch c.Type {
	case cycle.ActionAddNewCycle:
		rec.IncCycleStarted()
		rec.SetActiveCycle(true)
	case cycle.ActionInterruptCycle, cycle.ActionMarkCycleAsFinished:
		rec.IncCycleEnded(string(c.Cycle.Status()))
		rec.SetActiveCycle(false)
	}
	slog.Info("Cycle state changed",
		logging.Action(string(c.Type)),
		logging.CycleID(c.Cycle.ID),
		logging.Status(string(c.Cycle.Status())))
}

func (s *Store) publishLocked(c Change) {
	for id, ch := range s.subs {
		select {
		case ch <- c:
		default:
			slog.Debug("Dropped change for slow subscriber", "subscriber", id, logging.Action(string(c.Type)))
		}
	}
}

// CreateNewCycle validates data and starts a cycle stamped with the store clock.
func (s *Store) CreateNewCycle(ctx context.Context, data form.NewCycleData) (cycle.Cycle, error) {
	if err := data.Validate(); err != nil {
		return cycle.Cycle{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.NonTerminal() > 0 {
		return cycle.Cycle{}, ErrCycleActive
	}
	c := cycle.New(s.opts.NewID(), data.Task, data.MinutesAmount, s.opts.Clock.Now())
	change, ok := s.dispatchLocked(ctx, cycle.AddNewCycle(c))
	if !ok {
		// only an id collision gets here
		return cycle.Cycle{}, errors.New("cycle id already in use")
	}
	return change.Cycle, nil
}

// InterruptCurrentCycle stops the active cycle. It reports false when no
// cycle was running.
func (s *Store) InterruptCurrentCycle(ctx context.Context) (cycle.Cycle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	change, ok := s.dispatchLocked(ctx, cycle.InterruptCycle(s.opts.Clock.Now()))
	return change.Cycle, ok
}

// MarkCurrentCycleAsFinished completes the active cycle.
func (s *Store) MarkCurrentCycleAsFinished(ctx context.Context) (cycle.Cycle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	change, ok := s.dispatchLocked(ctx, cycle.MarkCycleAsFinished(s.opts.Clock.Now()))
	return change.Cycle, ok
}

// FinishCycle completes the active cycle only if it is still id. A poll
// that outlived its cycle therefore never finishes a newer one.
func (s *Store) FinishCycle(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if active, ok := s.state.Active(); !ok || active.ID != id {
		return false
	}
	_, ok := s.dispatchLocked(ctx, cycle.MarkCycleAsFinished(s.opts.Clock.Now()))
	return ok
}

// State returns a copy of the current state.
func (s *Store) State() cycle.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) ActiveCycle() (cycle.Cycle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Active()
}

// Subscribe registers for changes. Sends never block: a full buffer drops
// the change. The returned func unsubscribes and closes the channel.
func (s *Store) Subscribe(buffer int) (<-chan Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Change, buffer)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}
