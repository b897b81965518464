package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

var runtimeDir = "/run/user"

// sessionBusAddress finds the user's session bus. The daemon may be started
// outside the desktop session (a tty, a timer unit) where
// DBUS_SESSION_BUS_ADDRESS is unset, so fall back to the systemd user bus
// socket.
func sessionBusAddress() (string, error) {
	if addr := os.Getenv("DBUS_SESSION_BUS_ADDRESS"); addr != "" {
		return addr, nil
	}

	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = filepath.Join(runtimeDir, strconv.Itoa(os.Getuid()))
	}
	socket := filepath.Join(dir, "bus")
	if _, err := os.Stat(socket); err != nil {
		return "", fmt.Errorf("no session bus at %s: %w", socket, err)
	}
	return "unix:path=" + socket, nil
}
