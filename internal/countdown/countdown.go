// Package countdown derives the remaining time of a cycle from its start
// date and the wall clock.
package countdown

import (
	"fmt"
	"time"

	"github.com/SoarinFerret/CycleWarden/internal/cycle"
)

// SecondsBetween returns whole seconds from t0 to t1, truncated toward zero.
func SecondsBetween(t0, t1 time.Time) int64 {
	return int64(t1.Sub(t0) / time.Second)
}

// Countdown is the derived view of a running cycle.
type Countdown struct {
	Total     int64 `json:"totalSeconds"`
	Elapsed   int64 `json:"elapsedSeconds"`
	Remaining int64 `json:"remainingSeconds"`
	Done      bool  `json:"done"`
}

// Derive computes the countdown of c at now. Elapsed is clamped to
// [0, Total] so clock skew never yields a negative or overrun display.
func Derive(c cycle.Cycle, now time.Time) Countdown {
	total := int64(c.MinutesAmount) * 60
	elapsed := SecondsBetween(c.StartDate, now)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > total {
		elapsed = total
	}
	return Countdown{
		Total:     total,
		Elapsed:   elapsed,
		Remaining: total - elapsed,
		Done:      elapsed >= total,
	}
}

// Digits renders the remaining time as MM:SS.
func (c Countdown) Digits() string {
	return fmt.Sprintf("%02d:%02d", c.Remaining/60, c.Remaining%60)
}

// Progress is the elapsed fraction in [0, 1].
func (c Countdown) Progress() float64 {
	if c.Total <= 0 {
		return 1
	}
	return float64(c.Elapsed) / float64(c.Total)
}
