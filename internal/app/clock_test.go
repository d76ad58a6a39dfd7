package app

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestCountdownExpiresExactlyOnce(t *testing.T) {
	var ticks, expires int32
	done := make(chan struct{})

	startCountdown(3, 2*time.Millisecond,
		func(int) { atomic.AddInt32(&ticks, 1) },
		func() {
			atomic.AddInt32(&expires, 1)
			close(done)
		},
	)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("countdown never expired")
	}
	// Give any stray callback a chance to fire.
	time.Sleep(20 * time.Millisecond)

	if got := atomic.LoadInt32(&expires); got != 1 {
		t.Fatalf("expected exactly one expiry, got %d", got)
	}
	if got := atomic.LoadInt32(&ticks); got != 2 {
		t.Fatalf("expected 2 ticks before expiry, got %d", got)
	}
}

func TestCountdownStopPreventsCallbacks(t *testing.T) {
	var fired int32
	c := startCountdown(100, time.Millisecond,
		func(int) { atomic.AddInt32(&fired, 1) },
		func() { atomic.AddInt32(&fired, 1) },
	)
	c.stop()
	after := atomic.LoadInt32(&fired)

	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != after {
		t.Fatalf("callbacks fired after stop: %d -> %d", after, got)
	}
}

func TestCountdownStopIsIdempotent(t *testing.T) {
	c := startCountdown(10, time.Millisecond, func(int) {}, func() {})
	c.stop()
	c.stop()
	c.stop()
}
