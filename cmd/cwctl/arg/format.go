package arg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/SoarinFerret/CycleWarden/internal/cycle"
	"github.com/SoarinFerret/CycleWarden/internal/form"
	"github.com/SoarinFerret/CycleWarden/internal/ipc"
	"github.com/SoarinFerret/CycleWarden/internal/store"
)

func formatStarted(c cycle.Cycle) string {
	unit := "minutes"
	if c.MinutesAmount == 1 {
		unit = "minute"
	}
	return fmt.Sprintf("Started %q for %d %s (ends %s)", c.Task, c.MinutesAmount, unit,
		c.StartDate.Add(c.Duration()).Local().Format("15:04"))
}

func formatCountdown(v ipc.CountdownView) string {
	if !v.Active || v.Cycle == nil {
		return "No active cycle"
	}
	return fmt.Sprintf("%s: %s left (%d%%)", v.Cycle.Task, v.Digits, int(v.Countdown.Progress()*100))
}

// describeError turns daemon and validation errors into one-line messages.
func describeError(err error) string {
	switch {
	case errors.Is(err, store.ErrCycleActive):
		return "A cycle is already running. Interrupt it first with: cwctl interrupt"
	case errors.Is(err, form.ErrInvalid):
		msg := strings.TrimPrefix(err.Error(), form.ErrInvalid.Error()+": ")
		return "Invalid input: " + strings.ReplaceAll(msg, "\n", "; ")
	case dbusErrorName(err) == "org.freedesktop.DBus.Error.ServiceUnknown":
		return "cyclewardend is not running"
	default:
		return "Error: " + err.Error()
	}
}

func dbusErrorName(err error) string {
	var derr dbus.Error
	if errors.As(err, &derr) {
		return derr.Name
	}
	var pderr *dbus.Error
	if errors.As(err, &pderr) {
		return pderr.Name
	}
	return ""
}
