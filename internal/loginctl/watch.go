package loginctl

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/godbus/dbus/v5"

	"github.com/SoarinFerret/CycleWarden/internal/cycle"
	"github.com/SoarinFerret/CycleWarden/internal/logging"
)

const (
	signalPrepareForSleep   = "org.freedesktop.login1.Manager.PrepareForSleep"
	signalPropertiesChanged = "org.freedesktop.DBus.Properties.PropertiesChanged"
)

// Interrupter stops the running cycle.
type Interrupter interface {
	InterruptCurrentCycle(ctx context.Context) (cycle.Cycle, bool)
}

// Watch interrupts the active cycle when one of the user's sessions locks
// or the machine prepares to sleep.
func Watch(ctx context.Context, target Interrupter) error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer conn.Close()

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath("/org/freedesktop/login1"),
		dbus.WithMatchInterface("org.freedesktop.login1.Manager"),
		dbus.WithMatchMember("PrepareForSleep"),
	); err != nil {
		return fmt.Errorf("add match failed: %w", err)
	}

	// watch for property changes (session locked)
	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.DBus.Properties"),
		dbus.WithMatchMember("PropertiesChanged"),
		dbus.WithMatchArg(0, "org.freedesktop.login1.Session"),
	); err != nil {
		return fmt.Errorf("add match for PropertiesChanged failed: %w", err)
	}

	c := make(chan *dbus.Signal, 10)
	conn.Signal(c)
	defer conn.RemoveSignal(c)

	w := &watcher{
		uid:        uint32(os.Getuid()),
		sessionUID: func(path dbus.ObjectPath) (uint32, error) { return getSessionUID(conn, path) },
	}
	slog.Info("Watching logind for lock and sleep", "uid", w.uid)

	for {
		select {
		case sig := <-c:
			if sig == nil {
				continue
			}
			if reason := w.interruptReason(sig); reason != "" {
				if ended, ok := target.InterruptCurrentCycle(ctx); ok {
					slog.Info("Interrupted cycle", "reason", reason, logging.CycleID(ended.ID))
				}
			}
		case <-ctx.Done():
			return nil
		}
	}
}

type watcher struct {
	uid        uint32
	sessionUID func(dbus.ObjectPath) (uint32, error)
}

// interruptReason returns why sig should interrupt the active cycle, or ""
// when it should not.
func (w *watcher) interruptReason(sig *dbus.Signal) string {
	switch sig.Name {
	case signalPrepareForSleep:
		if len(sig.Body) > 0 {
			if sleeping, _ := sig.Body[0].(bool); sleeping {
				return "sleep"
			}
		}

	case signalPropertiesChanged:
		if len(sig.Body) < 2 {
			return ""
		}
		iface, ok := sig.Body[0].(string)
		if !ok || iface != "org.freedesktop.login1.Session" {
			return ""
		}
		changedProps, ok := sig.Body[1].(map[string]dbus.Variant)
		if !ok {
			return ""
		}
		val, exists := changedProps["LockedHint"]
		if !exists {
			return ""
		}
		if locked, _ := val.Value().(bool); !locked {
			return ""
		}
		uid, err := w.sessionUID(sig.Path)
		if err != nil {
			slog.Warn("LockedHint: failed to get session user", "session", sig.Path, logging.Error(err))
			return ""
		}
		if uid == w.uid {
			return "lock"
		}
	}
	return ""
}

func getSessionUID(conn *dbus.Conn, sessionPath dbus.ObjectPath) (uint32, error) {
	sessionObj := conn.Object("org.freedesktop.login1", sessionPath)

	var userInfo []interface{}
	err := sessionObj.Call("org.freedesktop.DBus.Properties.Get", 0,
		"org.freedesktop.login1.Session", "User").Store(&userInfo)
	if err != nil || len(userInfo) < 2 {
		return 0, fmt.Errorf("failed to get user info: %w", err)
	}
	uid, ok := userInfo[0].(uint32)
	if !ok {
		return 0, fmt.Errorf("unexpected type for session user id")
	}
	return uid, nil
}
