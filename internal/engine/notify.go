package engine

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/SoarinFerret/CycleWarden/internal/cycle"
)

// DesktopNotifier shows notifications through org.freedesktop.Notifications
// on the user's session bus.
type DesktopNotifier struct {
	// address overrides the session bus lookup when set
	address string
}

func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{}
}

func (d *DesktopNotifier) CycleEnded(_ context.Context, c cycle.Cycle) error {
	summary, body := notificationText(c)
	return d.send(summary, body)
}

// send sends a notification to the user's desktop
func (d *DesktopNotifier) send(summary, body string) error {
	addr := d.address
	if addr == "" {
		var err error
		if addr, err = sessionBusAddress(); err != nil {
			return fmt.Errorf("failed to get session bus address: %w", err)
		}
	}

	userConn, err := dbus.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to user session bus: %w", err)
	}
	defer userConn.Close()

	if err := userConn.Auth(nil); err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	if err := userConn.Hello(); err != nil {
		return fmt.Errorf("failed to send hello: %w", err)
	}

	obj := userConn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	call := obj.Call("org.freedesktop.Notifications.Notify", 0,
		"CycleWarden",    // app_name
		uint32(0),        // replaces_id
		"alarm-symbolic", // app_icon
		summary,
		body,
		[]string{}, // actions
		map[string]dbus.Variant{
			"urgency": dbus.MakeVariant(byte(1)), // normal urgency
		},
		int32(10000), // expire_timeout (10 seconds)
	)

	if call.Err != nil {
		return fmt.Errorf("failed to send notification: %w", call.Err)
	}

	return nil
}
