package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/godbus/dbus/v5"

	"github.com/SoarinFerret/CycleWarden/internal/countdown"
	"github.com/SoarinFerret/CycleWarden/internal/cycle"
	"github.com/SoarinFerret/CycleWarden/internal/form"
	"github.com/SoarinFerret/CycleWarden/internal/history"
	"github.com/SoarinFerret/CycleWarden/internal/logging"
	"github.com/SoarinFerret/CycleWarden/internal/snapshot"
	"github.com/SoarinFerret/CycleWarden/internal/store"
)

const (
	ObjectPath    = "/io/github/soarinferret/cyclewarden"
	InterfaceName = "io.github.soarinferret.cyclewarden.Manager"
	ServiceName   = "io.github.soarinferret.cyclewarden"
)

// D-Bus error names returned by the manager.
const (
	ErrorInvalidInput = "io.github.soarinferret.cyclewarden.Error.InvalidInput"
	ErrorCycleActive  = "io.github.soarinferret.cyclewarden.Error.CycleActive"
	ErrorInternal     = "io.github.soarinferret.cyclewarden.Error.Internal"
)

// CountdownView is the GetCountdown reply.
type CountdownView struct {
	Active    bool                `json:"active"`
	Cycle     *cycle.Cycle        `json:"cycle,omitempty"`
	Countdown countdown.Countdown `json:"countdown"`
	Digits    string              `json:"digits"`
}

// CycleManager is the object exported on the bus.
type CycleManager struct {
	Store *store.Store
}

func (m *CycleManager) GetStatus() (string, *dbus.Error) {
	if active, ok := m.Store.ActiveCycle(); ok {
		cd := countdown.Derive(active, m.Store.Clock().Now())
		return "Service is running; " + active.Task + " " + cd.Digits() + " remaining", nil
	}
	return "Service is running; no active cycle", nil
}

// StartCycle validates the input and starts a cycle. The reply is the new
// cycle as JSON.
func (m *CycleManager) StartCycle(task string, minutes int32) (string, *dbus.Error) {
	c, err := m.Store.CreateNewCycle(context.Background(), form.NewCycleData{Task: task, MinutesAmount: int(minutes)})
	if err != nil {
		return "", toDBusError(err)
	}
	return marshal(c)
}

// InterruptCycle reports whether a cycle was running.
func (m *CycleManager) InterruptCycle() (bool, *dbus.Error) {
	_, ok := m.Store.InterruptCurrentCycle(context.Background())
	return ok, nil
}

// GetState replies with the snapshot document.
func (m *CycleManager) GetState() (string, *dbus.Error) {
	data, err := snapshot.Encode(m.Store.State())
	if err != nil {
		return "", toDBusError(err)
	}
	return string(data), nil
}

func (m *CycleManager) GetCountdown() (string, *dbus.Error) {
	v := CountdownView{Digits: "00:00"}
	if active, ok := m.Store.ActiveCycle(); ok {
		v.Active = true
		v.Cycle = &active
		v.Countdown = countdown.Derive(active, m.Store.Clock().Now())
		v.Digits = v.Countdown.Digits()
	}
	return marshal(v)
}

func (m *CycleManager) GetHistory() (string, *dbus.Error) {
	return marshal(history.Rows(m.Store.State(), m.Store.Clock().Now()))
}

// GetSummary replies with today's totals in the daemon's local time.
func (m *CycleManager) GetSummary() (string, *dbus.Error) {
	now := m.Store.Clock().Now()
	return marshal(history.Summary(m.Store.State(), now.Local(), now))
}

func marshal(v any) (string, *dbus.Error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", toDBusError(err)
	}
	return string(data), nil
}

func toDBusError(err error) *dbus.Error {
	name := ErrorInternal
	switch {
	case errors.Is(err, form.ErrInvalid):
		name = ErrorInvalidInput
	case errors.Is(err, store.ErrCycleActive):
		name = ErrorCycleActive
	default:
		slog.Error("D-Bus call failed", logging.Error(err))
	}
	return dbus.NewError(name, []interface{}{err.Error()})
}

// fromDBusError maps manager errors back onto the package sentinels.
func fromDBusError(err error) error {
	var derr dbus.Error
	var pderr *dbus.Error
	switch {
	case errors.As(err, &derr):
	case errors.As(err, &pderr):
		derr = *pderr
	default:
		return err
	}

	msg := derr.Error()
	switch derr.Name {
	case ErrorInvalidInput:
		return &remoteError{sentinel: form.ErrInvalid, msg: msg}
	case ErrorCycleActive:
		return &remoteError{sentinel: store.ErrCycleActive, msg: msg}
	default:
		return err
	}
}

type remoteError struct {
	sentinel error
	msg      string
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.sentinel }
