package flow

import (
	"sync"
	"time"
)

// DefaultIdleTimeout matches the kiosk idle policy: one minute without
// activity abandons the session.
const DefaultIdleTimeout = 60 * time.Second

// Watchdog abandons an idle session. Any user activity calls Touch to
// re-arm the timer; on expiry the abandon callback runs exactly once.
//
// Expiry cancels the session, not any in-flight network call: the callback
// fires while a submission or flush may still be pending, and those
// complete (or fail into the durable queue) on their own.
//
// Thread-safety: Touch and Stop may be called from any goroutine. The
// callback runs on the timer goroutine.
type Watchdog struct {
	mu      sync.Mutex
	timeout time.Duration
	timer   *time.Timer
	fired   bool
	stopped bool
	abandon func()
}

// NewWatchdog creates an armed watchdog. A zero timeout uses
// DefaultIdleTimeout.
func NewWatchdog(timeout time.Duration, abandon func()) *Watchdog {
	if timeout <= 0 {
		timeout = DefaultIdleTimeout
	}
	w := &Watchdog{
		timeout: timeout,
		abandon: abandon,
	}
	w.timer = time.AfterFunc(timeout, w.expire)
	return w
}

// Touch re-arms the timer. No-op once the watchdog fired or was stopped.
func (w *Watchdog) Touch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fired || w.stopped {
		return
	}
	w.timer.Reset(w.timeout)
}

// Stop disarms the watchdog, e.g. after a successful submission.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	w.timer.Stop()
}

// Fired reports whether the session was abandoned.
func (w *Watchdog) Fired() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fired
}

func (w *Watchdog) expire() {
	w.mu.Lock()
	if w.fired || w.stopped {
		w.mu.Unlock()
		return
	}
	w.fired = true
	w.mu.Unlock()

	if w.abandon != nil {
		w.abandon()
	}
}
