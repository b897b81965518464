package countdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/SoarinFerret/CycleWarden/internal/cycle"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestSecondsBetween(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want int64
	}{
		{"zero", 0, 0},
		{"whole", 10 * time.Second, 10},
		{"truncates", 10*time.Second + 999*time.Millisecond, 10},
		{"negative truncates toward zero", -1500 * time.Millisecond, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SecondsBetween(t0, t0.Add(tt.d)))
		})
	}
}

func TestDerive(t *testing.T) {
	c := cycle.New("a", "x", 1, t0)

	tests := []struct {
		name      string
		at        time.Duration
		remaining int64
		done      bool
		digits    string
	}{
		{"just started", 0, 60, false, "01:00"},
		{"ten seconds in", 10 * time.Second, 50, false, "00:50"},
		{"sub-second does not count", 10*time.Second + 900*time.Millisecond, 50, false, "00:50"},
		{"boundary", 60 * time.Second, 0, true, "00:00"},
		{"overrun clamps", 10 * time.Minute, 0, true, "00:00"},
		{"clock behind start clamps", -5 * time.Second, 60, false, "01:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(c, t0.Add(tt.at))
			assert.Equal(t, int64(60), got.Total)
			assert.Equal(t, tt.remaining, got.Remaining)
			assert.Equal(t, tt.done, got.Done)
			assert.Equal(t, tt.digits, got.Digits())
		})
	}
}

func TestCountdown_DigitsAndProgress(t *testing.T) {
	got := Derive(cycle.New("a", "x", 25, t0), t0.Add(5*time.Minute+30*time.Second))
	assert.Equal(t, "19:30", got.Digits())
	assert.InDelta(t, 0.22, got.Progress(), 0.001)

	assert.Equal(t, 1.0, Countdown{}.Progress())
}
