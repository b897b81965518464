package loginctl

import (
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
)

func lockedSignal(path dbus.ObjectPath, locked bool) *dbus.Signal {
	return &dbus.Signal{
		Path: path,
		Name: signalPropertiesChanged,
		Body: []interface{}{
			"org.freedesktop.login1.Session",
			map[string]dbus.Variant{"LockedHint": dbus.MakeVariant(locked)},
			[]string{},
		},
	}
}

func TestInterruptReason(t *testing.T) {
	w := &watcher{
		uid: 1000,
		sessionUID: func(path dbus.ObjectPath) (uint32, error) {
			switch path {
			case "/org/freedesktop/login1/session/_31":
				return 1000, nil
			case "/org/freedesktop/login1/session/_32":
				return 1001, nil
			}
			return 0, errors.New("no such session")
		},
	}

	tests := []struct {
		name string
		sig  *dbus.Signal
		want string
	}{
		{"sleep", &dbus.Signal{Name: signalPrepareForSleep, Body: []interface{}{true}}, "sleep"},
		{"wake", &dbus.Signal{Name: signalPrepareForSleep, Body: []interface{}{false}}, ""},
		{"own session locked", lockedSignal("/org/freedesktop/login1/session/_31", true), "lock"},
		{"own session unlocked", lockedSignal("/org/freedesktop/login1/session/_31", false), ""},
		{"other user locked", lockedSignal("/org/freedesktop/login1/session/_32", true), ""},
		{"unknown session", lockedSignal("/org/freedesktop/login1/session/_99", true), ""},
		{"other property", &dbus.Signal{
			Name: signalPropertiesChanged,
			Body: []interface{}{"org.freedesktop.login1.Session", map[string]dbus.Variant{"IdleHint": dbus.MakeVariant(true)}},
		}, ""},
		{"unrelated signal", &dbus.Signal{Name: "org.freedesktop.login1.Manager.SessionNew"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.interruptReason(tt.sig))
		})
	}
}
