package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[timer]\ntick_interval = \"1s\"\n"), 0644))

	var tick atomic.Int64
	w, err := NewWatcher(path, func(c *Config) {
		tick.Store(int64(c.Timer.TickInterval.Std()))
	})
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// the watch is registered asynchronously; keep writing until it is seen
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("[timer]\ntick_interval = \"2s\"\n"), 0644)
		return tick.Load() == int64(2*time.Second)
	}, 5*time.Second, 50*time.Millisecond)
}
