// Package logging configures the process-wide slog logger and holds the
// canonical attribute helpers used across packages.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/SoarinFerret/CycleWarden/internal/config"
)

// Canonical log field names.
const (
	KeyCycleID   = "cycle_id"
	KeyTask      = "task"
	KeyMinutes   = "minutes"
	KeyStatus    = "status"
	KeyAction    = "action"
	KeyRemaining = "remaining_s"
	KeyBackend   = "backend"
	KeyKey       = "key"
	KeyChatID    = "chat_id"
	KeyError     = "error"
)

func CycleID(id string) slog.Attr      { return slog.String(KeyCycleID, id) }
func Task(task string) slog.Attr       { return slog.String(KeyTask, task) }
func Minutes(m int) slog.Attr          { return slog.Int(KeyMinutes, m) }
func Status(s string) slog.Attr        { return slog.String(KeyStatus, s) }
func Action(a string) slog.Attr        { return slog.String(KeyAction, a) }
func Remaining(sec int64) slog.Attr    { return slog.Int64(KeyRemaining, sec) }
func Backend(name string) slog.Attr    { return slog.String(KeyBackend, name) }
func Key(key string) slog.Attr         { return slog.String(KeyKey, key) }
func ChatID(id int64) slog.Attr        { return slog.Int64(KeyChatID, id) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// ParseLevel maps a config level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// New builds a logger writing to w according to cfg. The returned LevelVar
// lets a config reload change the level in place.
func New(w io.Writer, cfg config.LogConfig) (*slog.Logger, *slog.LevelVar, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	var lv slog.LevelVar
	lv.Set(lvl)

	opts := &slog.HandlerOptions{Level: &lv}
	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return slog.New(h), &lv, nil
}

// Setup installs the configured logger as the slog default.
func Setup(w io.Writer, cfg config.LogConfig) (*slog.LevelVar, error) {
	logger, lv, err := New(w, cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return lv, nil
}
