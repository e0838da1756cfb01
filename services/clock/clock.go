package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type RealClock struct{}

func (self RealClock) Now() time.Time {
	return time.Now()
}

func (self RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// ManualClock only moves when told to. Timers registered with After fire
// once Advance moves the clock past their deadline.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []waiter
}

type waiter struct {
	deadline time.Time
	ch       chan time.Time
}

func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

func (self *ManualClock) Now() time.Time {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.now
}

func (self *ManualClock) After(d time.Duration) <-chan time.Time {
	self.mu.Lock()
	defer self.mu.Unlock()

	ch := make(chan time.Time, 1)
	deadline := self.now.Add(d)
	if d <= 0 {
		ch <- self.now
		return ch
	}
	self.waiters = append(self.waiters, waiter{deadline: deadline, ch: ch})
	return ch
}

func (self *ManualClock) Advance(d time.Duration) {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.now = self.now.Add(d)
	pending := self.waiters[:0]
	for _, w := range self.waiters {
		if !w.deadline.After(self.now) {
			w.ch <- self.now
			continue
		}
		pending = append(pending, w)
	}
	self.waiters = pending
}

// Waiters returns the number of timers not yet fired.
func (self *ManualClock) Waiters() int {
	self.mu.Lock()
	defer self.mu.Unlock()
	return len(self.waiters)
}
