// Package events publishes cycle store changes to NATS subjects.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/SoarinFerret/CycleWarden/internal/cycle"
	"github.com/SoarinFerret/CycleWarden/internal/store"
)

// Publisher sends store changes somewhere outside the process.
type Publisher interface {
	Publish(ctx context.Context, c store.Change) error
	Close() error
}

// Event is the JSON body of a published change.
type Event struct {
	Type          cycle.ActionType `json:"type"`
	Cycle         cycle.Cycle      `json:"cycle"`
	ActiveCycleID *string          `json:"activeCycleID"`
	At            time.Time        `json:"at"`
}

// Subject returns the subject a change of type t is published on.
func Subject(prefix string, t cycle.ActionType) string {
	return prefix + "." + strings.ToLower(string(t))
}

// Marshal builds the event body for c.
func Marshal(c store.Change) ([]byte, error) {
	e := Event{Type: c.Type, Cycle: c.Cycle, At: c.At.UTC()}
	if id := c.State.ActiveCycleID; id != "" {
		e.ActiveCycleID = &id
	}
	return json.Marshal(e)
}

// NATSPublisher publishes on a core NATS connection.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("cyclewarden-events"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Info("Publishing cycle events", "url", url, "subject_prefix", prefix)
	return &NATSPublisher{conn: conn, prefix: prefix}, nil
}

func (p *NATSPublisher) Publish(_ context.Context, c store.Change) error {
	data, err := Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	subject := Subject(p.prefix, c.Type)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	slog.Debug("Published cycle event", "subject", subject)
	return nil
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// Noop discards every change.
type Noop struct{}

func (Noop) Publish(context.Context, store.Change) error { return nil }
func (Noop) Close() error                                 { return nil }
