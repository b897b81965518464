package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/SoarinFerret/CycleWarden/internal/config"
	"github.com/SoarinFerret/CycleWarden/internal/countdown"
	"github.com/SoarinFerret/CycleWarden/internal/cycle"
	"github.com/SoarinFerret/CycleWarden/internal/events"
	"github.com/SoarinFerret/CycleWarden/internal/logging"
	"github.com/SoarinFerret/CycleWarden/internal/metrics"
	"github.com/SoarinFerret/CycleWarden/internal/store"
)

// Notifier is told when a cycle ends, whether completed or interrupted.
type Notifier interface {
	CycleEnded(ctx context.Context, c cycle.Cycle) error
}

type Options struct {
	Clock     clockwork.Clock
	Recorder  metrics.Recorder
	Publisher events.Publisher
	// Desktop overrides the session bus notifier, mostly for tests.
	Desktop Notifier
}

// Engine drives the countdown of the active cycle and reacts to store changes.
type Engine struct {
	store     *store.Store
	poller    *countdown.Poller
	clock     clockwork.Clock
	recorder  metrics.Recorder
	publisher events.Publisher

	mu             sync.RWMutex
	config         *config.Config
	desktop        Notifier
	notifiers      []Notifier
	scheduler      gocron.Scheduler
	reconcileJobID uuid.UUID
	reconcileTask  func()
}

// NewEngine creates a new engine instance
func NewEngine(s *store.Store, cfg *config.Config, opts Options) (*Engine, error) {
	if opts.Clock == nil {
		opts.Clock = s.Clock()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Noop{}
	}
	if opts.Desktop == nil {
		opts.Desktop = NewDesktopNotifier()
	}

	e := &Engine{
		store:     s,
		clock:     opts.Clock,
		recorder:  opts.Recorder,
		publisher: opts.Publisher,
		config:    cfg,
		desktop:   opts.Desktop,
	}
	e.poller = countdown.NewPoller(s, opts.Clock, cfg.Timer.TickInterval.Std())
	e.poller.OnTick = e.onTick
	return e, nil
}

// AddNotifier registers an extra Notifier, such as a chat bot.
func (e *Engine) AddNotifier(n Notifier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notifiers = append(e.notifiers, n)
}

// Run drives the countdown and the reconcile job until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	pollerChanges, stopPoller := e.store.Subscribe(16)
	defer stopPoller()
	changes, stop := e.store.Subscribe(64)
	defer stop()

	scheduler, err := gocron.NewScheduler(gocron.WithClock(e.clock))
	if err != nil {
		return fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			slog.Warn("Scheduler shutdown failed", logging.Error(err))
		}
	}()

	reconcile := func() { e.Reconcile(ctx) }
	job, err := scheduler.NewJob(
		gocron.DurationJob(e.reconcileInterval()),
		gocron.NewTask(reconcile),
		gocron.WithName("reconcile"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule reconcile job: %w", err)
	}
	e.mu.Lock()
	e.scheduler = scheduler
	e.reconcileJobID = job.ID()
	e.reconcileTask = reconcile
	e.mu.Unlock()
	scheduler.Start()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = e.poller.Run(ctx, pollerChanges)
	}()
	defer wg.Wait()

	slog.Info("Engine started - tracking the active cycle...")

	for {
		select {
		case <-ctx.Done():
			slog.Info("Engine shutting down...")
			return nil
		case c := <-changes:
			e.handleChange(ctx, c)
		}
	}
}

// Reconcile finishes the active cycle if its time is already up. It covers
// gaps where the poller could not run, such as a suspended machine.
func (e *Engine) Reconcile(ctx context.Context) bool {
	active, ok := e.store.ActiveCycle()
	if !ok {
		return false
	}
	cd := countdown.Derive(active, e.clock.Now())
	if !cd.Done {
		return false
	}
	if !e.store.FinishCycle(ctx, active.ID) {
		return false
	}
	slog.Info("Reconcile finished overdue cycle", logging.CycleID(active.ID), logging.Task(active.Task))
	return true
}

// ApplyConfig swaps in a reloaded configuration.
func (e *Engine) ApplyConfig(cfg *config.Config) {
	e.poller.SetInterval(cfg.Timer.TickInterval.Std())

	e.mu.Lock()
	prev := e.config
	e.config = cfg
	scheduler, jobID, task := e.scheduler, e.reconcileJobID, e.reconcileTask
	e.mu.Unlock()

	if scheduler != nil && prev.Timer.ReconcileInterval != cfg.Timer.ReconcileInterval {
		_, err := scheduler.Update(jobID,
			gocron.DurationJob(cfg.Timer.ReconcileInterval.Std()),
			gocron.NewTask(task),
			gocron.WithName("reconcile"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			slog.Error("Failed to reschedule reconcile job", logging.Error(err))
		}
	}
	slog.Info("Engine configuration applied",
		"tick_interval", cfg.Timer.TickInterval.Std(),
		"reconcile_interval", cfg.Timer.ReconcileInterval.Std())
}

func (e *Engine) reconcileInterval() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if d := e.config.Timer.ReconcileInterval.Std(); d > 0 {
		return d
	}
	return 30 * time.Second
}

func (e *Engine) desktopEnabled() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config.Notify.Desktop == nil || *e.config.Notify.Desktop
}

func (e *Engine) onTick(_ string, cd countdown.Countdown) {
	e.recorder.SetRemainingSeconds(cd.Remaining)
}

func (e *Engine) handleChange(ctx context.Context, c store.Change) {
	if err := e.publisher.Publish(ctx, c); err != nil {
		slog.Warn("Failed to publish cycle event", logging.CycleID(c.Cycle.ID), logging.Error(err))
	}

	switch c.Type {
	case cycle.ActionInterruptCycle, cycle.ActionMarkCycleAsFinished:
		e.notifyEnded(ctx, c.Cycle)
	}
}

func (e *Engine) notifyEnded(ctx context.Context, c cycle.Cycle) {
	e.mu.RLock()
	targets := append([]Notifier(nil), e.notifiers...)
	e.mu.RUnlock()
	if e.desktopEnabled() {
		targets = append([]Notifier{e.desktop}, targets...)
	}

	for _, n := range targets {
		if err := n.CycleEnded(ctx, c); err != nil {
			slog.Warn("Failed to send notification", logging.CycleID(c.ID), logging.Error(err))
		}
	}
}

// notificationText renders the summary and body shown when c ends.
func notificationText(c cycle.Cycle) (summary, body string) {
	if c.Status() == cycle.StatusCompleted {
		return "Cycle completed",
			fmt.Sprintf("%s: %s of focus done", c.Task, formatTimeRemaining(c.Duration()))
	}
	left := countdown.Derive(c, c.EndDate()).Remaining
	return "Cycle interrupted",
		fmt.Sprintf("%s: stopped with %s remaining", c.Task, formatTimeRemaining(time.Duration(left)*time.Second))
}

// formatTimeRemaining formats duration into human-readable string
func formatTimeRemaining(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%d hour(s) %d minute(s)", hours, minutes)
	}
	return fmt.Sprintf("%d minute(s)", minutes)
}
