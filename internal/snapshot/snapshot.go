// Package snapshot translates the cycle state to and from the flat JSON
// document kept under a single key in a kv.Store.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SoarinFerret/CycleWarden/internal/cycle"
	"github.com/SoarinFerret/CycleWarden/internal/form"
	"github.com/SoarinFerret/CycleWarden/internal/kv"
	"github.com/SoarinFerret/CycleWarden/internal/logging"
	"github.com/SoarinFerret/CycleWarden/internal/metrics"
)

// TimeFormat is the ISO-8601 form browsers emit for Date.toISOString.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ErrMalformed wraps every reason a stored document is rejected.
var ErrMalformed = errors.New("malformed cycle snapshot")

type wireCycle struct {
	ID            string  `json:"id"`
	Task          string  `json:"task"`
	MinutesAmount int     `json:"minutesAmount"`
	StartDate     string  `json:"startDate"`
	InterruptDate *string `json:"interruptDate,omitempty"`
	FinishedDate  *string `json:"finishedDate,omitempty"`
}

type wireState struct {
	Cycles        *[]wireCycle `json:"cycles"`
	ActiveCycleID *string      `json:"activeCycleID"`
}

// Encode serializes s with UTC millisecond timestamps.
func Encode(s cycle.State) ([]byte, error) {
	cycles := make([]wireCycle, len(s.Cycles))
	for i, c := range s.Cycles {
		cycles[i] = wireCycle{
			ID:            c.ID,
			Task:          c.Task,
			MinutesAmount: c.MinutesAmount,
			StartDate:     formatTime(c.StartDate),
			InterruptDate: formatTimePtr(c.InterruptDate),
			FinishedDate:  formatTimePtr(c.FinishedDate),
		}
	}
	w := wireState{Cycles: &cycles}
	if s.ActiveCycleID != "" {
		id := s.ActiveCycleID
		w.ActiveCycleID = &id
	}
	return json.Marshal(w)
}

// Decode parses and validates a stored document. Any rejection wraps
// ErrMalformed. The stored activeCycleID is not trusted: the single
// in-progress cycle becomes active, and with none in progress there is no
// active cycle.
func Decode(data []byte) (cycle.State, error) {
	var w wireState
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&w); err != nil {
		return cycle.State{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if dec.More() {
		return cycle.State{}, fmt.Errorf("%w: trailing data", ErrMalformed)
	}
	if w.Cycles == nil {
		return cycle.State{}, fmt.Errorf("%w: missing cycles array", ErrMalformed)
	}

	s := cycle.State{Cycles: make([]cycle.Cycle, 0, len(*w.Cycles))}
	seen := make(map[string]struct{}, len(*w.Cycles))
	var running []string
	for i, wc := range *w.Cycles {
		c, err := decodeCycle(wc)
		if err != nil {
			return cycle.State{}, fmt.Errorf("%w: cycle %d: %w", ErrMalformed, i, err)
		}
		if _, dup := seen[c.ID]; dup {
			return cycle.State{}, fmt.Errorf("%w: duplicate id %q", ErrMalformed, c.ID)
		}
		seen[c.ID] = struct{}{}
		if !c.IsTerminal() {
			running = append(running, c.ID)
		}
		s.Cycles = append(s.Cycles, c)
	}
	if len(running) > 1 {
		return cycle.State{}, fmt.Errorf("%w: %d cycles in progress", ErrMalformed, len(running))
	}

	// The running cycle, if any, is the active one whatever the stored id says.
	if len(running) == 1 {
		s.ActiveCycleID = running[0]
	}
	return s, nil
}

func decodeCycle(wc wireCycle) (cycle.Cycle, error) {
	if wc.ID == "" {
		return cycle.Cycle{}, errors.New("empty id")
	}
	if strings.TrimSpace(wc.Task) == "" {
		return cycle.Cycle{}, errors.New("empty task")
	}
	if wc.MinutesAmount < form.MinMinutes || wc.MinutesAmount > form.MaxMinutes {
		return cycle.Cycle{}, fmt.Errorf("minutesAmount %d out of range", wc.MinutesAmount)
	}
	start, err := parseTime(wc.StartDate)
	if err != nil {
		return cycle.Cycle{}, fmt.Errorf("startDate: %w", err)
	}
	c := cycle.New(wc.ID, wc.Task, wc.MinutesAmount, start)
	if c.InterruptDate, err = parseTimePtr(wc.InterruptDate); err != nil {
		return cycle.Cycle{}, fmt.Errorf("interruptDate: %w", err)
	}
	if c.FinishedDate, err = parseTimePtr(wc.FinishedDate); err != nil {
		return cycle.Cycle{}, fmt.Errorf("finishedDate: %w", err)
	}
	if c.InterruptDate != nil && c.FinishedDate != nil {
		return cycle.Cycle{}, errors.New("both interruptDate and finishedDate set")
	}
	if end := c.EndDate(); !end.IsZero() && end.Before(start) {
		return cycle.Cycle{}, errors.New("cycle ends before startDate")
	}
	return c, nil
}

// Load reads the snapshot under key. A missing, unreadable or malformed
// document yields the empty state.
func Load(ctx context.Context, store kv.Store, key string, rec metrics.Recorder) cycle.State {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	data, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			rec.IncSnapshotLoad(metrics.ResultMissing)
			return cycle.Empty()
		}
		slog.Warn("Failed to read cycle snapshot, starting empty", logging.Key(key), logging.Error(err))
		rec.IncSnapshotLoad(metrics.ResultFailed)
		return cycle.Empty()
	}

	s, err := Decode(data)
	if err != nil {
		slog.Warn("Discarding malformed cycle snapshot", logging.Key(key), logging.Error(err))
		rec.IncSnapshotLoad(metrics.ResultMalformed)
		return cycle.Empty()
	}
	rec.IncSnapshotLoad(metrics.ResultSuccess)
	return s
}

// Save encodes s and writes it under key.
func Save(ctx context.Context, store kv.Store, key string, s cycle.State) error {
	data, err := Encode(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func parseTimePtr(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := parseTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
