package game

import (
	"time"
)

const (
	// idleFPS caps the loop while the window is iconified, so a minimized
	// demo keeps polling events without drawing at full rate.
	idleFPS = 30

	// spinWindow is how close to the deadline Wait stops sleeping.
	spinWindow = 200 * time.Microsecond
)

// FPSLimiter paces the main loop to config's window.fpsLimit. Deadlines
// advance by whole frame intervals from the first limited frame.
type FPSLimiter struct {
	next time.Time
}

func NewFPSLimiter() *FPSLimiter {
	return &FPSLimiter{}
}

// frameInterval is the pacing for one frame, or zero when unlimited. An
// iconified window never runs faster than idleFPS, even with no limit set.
func frameInterval(limit int, iconified bool) time.Duration {
	if iconified && (limit <= 0 || limit > idleFPS) {
		limit = idleFPS
	}
	if limit <= 0 {
		return 0
	}
	return time.Second / time.Duration(limit)
}

// Wait blocks until the next frame deadline. A frame that overran by more
// than a whole interval restarts the schedule from now instead of
// rendering a burst of catch-up frames.
func (f *FPSLimiter) Wait(limit int, iconified bool) {
	interval := frameInterval(limit, iconified)
	if interval == 0 {
		f.next = time.Time{}
		return
	}

	if f.next.IsZero() {
		f.next = time.Now()
	}
	f.next = f.next.Add(interval)

	for {
		left := time.Until(f.next)
		if left <= 0 {
			break
		}
		if left > spinWindow {
			time.Sleep(left - spinWindow)
		}
	}

	if late := -time.Until(f.next); late > interval {
		f.next = time.Now().Add(interval)
	}
}
