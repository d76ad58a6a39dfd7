package app

import (
	"sync"
	"time"
)

// countdown drives a per-question timer in one-unit decrements. It calls
// onTick once per elapsed unit and onExpire exactly once when the budget runs
// out, then stops. It never auto-restarts; the session re-arms a fresh
// countdown for each question.
type countdown struct {
	stopCh   chan struct{}
	stopOnce sync.Once
}

// startCountdown begins ticking from units down to zero, one unit per interval.
func startCountdown(units int, interval time.Duration, onTick func(remaining int), onExpire func()) *countdown {
	c := &countdown{stopCh: make(chan struct{})}
	go c.run(units, interval, onTick, onExpire)
	return c
}

func (c *countdown) run(units int, interval time.Duration, onTick func(remaining int), onExpire func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	remaining := units
	for {
		select {
		case <-ticker.C:
			remaining--
			if remaining <= 0 {
				onExpire()
				return
			}
			onTick(remaining)
		case <-c.stopCh:
			return
		}
	}
}

// stop halts the countdown without firing further callbacks. Stopping an
// already-stopped countdown is a no-op.
func (c *countdown) stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}
