package ipc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const intro = `
<node>
	<interface name="` + InterfaceName + `">
		<method name="GetStatus">
			<arg direction="out" type="s"/>
		</method>
		<method name="StartCycle">
			<arg name="task" direction="in" type="s"/>
			<arg name="minutes" direction="in" type="i"/>
			<arg direction="out" type="s"/>
		</method>
		<method name="InterruptCycle">
			<arg direction="out" type="b"/>
		</method>
		<method name="GetState">
			<arg direction="out" type="s"/>
		</method>
		<method name="GetCountdown">
			<arg direction="out" type="s"/>
		</method>
		<method name="GetHistory">
			<arg direction="out" type="s"/>
		</method>
		<method name="GetSummary">
			<arg direction="out" type="s"/>
		</method>
	</interface>` + introspect.IntrospectDataString + `</node>`

// Serve claims the service name on conn, exports m and blocks until ctx is
// done.
func Serve(ctx context.Context, conn *dbus.Conn, m *CycleManager) error {
	reply, err := conn.RequestName(ServiceName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("name %s already taken; is another daemon running?", ServiceName)
	}

	if err := conn.Export(m, dbus.ObjectPath(ObjectPath), InterfaceName); err != nil {
		return fmt.Errorf("failed to export interface: %w", err)
	}
	if err := conn.Export(introspect.Introspectable(intro), dbus.ObjectPath(ObjectPath),
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspection: %w", err)
	}
	slog.Info("D-Bus service ready", "name", ServiceName, "path", ObjectPath)

	<-ctx.Done()
	_, _ = conn.ReleaseName(ServiceName)
	return nil
}
