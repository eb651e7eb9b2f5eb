package battle

import (
	"sync"
	"time"
)

// Timer is a fire-once inactivity timer.
type Timer interface {
	// Stop prevents the callback from firing. Safe to call multiple times.
	Stop()
}

// TimerFactory arms a Timer that calls fire after d.
type TimerFactory func(d time.Duration, fire func()) Timer

// AfterFunc is the default TimerFactory, backed by time.AfterFunc.
func AfterFunc(d time.Duration, fire func()) Timer {
	return NewIdleTimer(d, fire)
}

// IdleTimer calls a callback after a fixed duration unless stopped first.
// It is safe for concurrent use.
type IdleTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewIdleTimer creates and starts a timer that calls fire after d on its own
// goroutine.
//
// Precondition: d > 0; fire must not be nil.
// Postcondition: fire will be called unless Stop is called first.
func NewIdleTimer(d time.Duration, fire func()) *IdleTimer {
	it := &IdleTimer{}
	it.mu.Lock()
	defer it.mu.Unlock()
	it.timer = time.AfterFunc(d, func() {
		it.mu.Lock()
		stopped := it.stopped
		it.stopped = true
		it.mu.Unlock()
		if !stopped {
			fire()
		}
	})
	return it
}

// Stop prevents the callback from firing.
//
// Postcondition: fire will not be called after Stop returns unless it had
// already started.
func (it *IdleTimer) Stop() {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.stopped = true
	it.timer.Stop()
}
