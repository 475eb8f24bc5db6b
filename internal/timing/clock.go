// Package timing provides an injectable clock plus debounce and retry helpers.
package timing

import (
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Timer is a pending AfterFunc callback.
type Timer interface {
	Stop() bool
}

// Clock abstracts wall time so timing-dependent code can be tested.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type wallClock struct {
	clock clock.Clock
}

// System returns the real clock.
func System() Clock {
	return wallClock{clock: clock.New()}
}

func (c wallClock) Now() time.Time {
	return c.clock.Now()
}

func (c wallClock) AfterFunc(d time.Duration, f func()) Timer {
	return c.clock.AfterFunc(d, f)
}

// Fake is a manually advanced clock backed by clock.Mock. Advance fires due
// callbacks in deadline order and returns once they have all run.
type Fake struct {
	mock *clock.Mock

	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	fake  *Fake
	at    time.Time
	timer *clock.Timer
	done  chan struct{}
}

// NewFake returns a fake clock starting at start.
func NewFake(start time.Time) *Fake {
	mock := clock.NewMock()
	mock.Set(start)
	return &Fake{mock: mock}
}

// Now returns the fake current time.
func (c *Fake) Now() time.Time {
	return c.mock.Now()
}

// AfterFunc schedules f to run once the clock has advanced by d.
func (c *Fake) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{fake: c, at: c.mock.Now().Add(d), done: make(chan struct{})}
	t.timer = c.mock.AfterFunc(d, func() {
		defer close(t.done)
		f()
	})
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and fires due callbacks.
func (c *Fake) Advance(d time.Duration) {
	target := c.mock.Now().Add(d)
	for {
		due := c.popDue(target)
		if len(due) == 0 {
			break
		}
		if at := due[0].at; at.After(c.mock.Now()) {
			c.mock.Set(at)
		} else {
			c.mock.Set(c.mock.Now())
		}
		for _, t := range due {
			<-t.done
		}
	}
	c.mock.Set(target)
}

// popDue removes the earliest timers sharing a deadline at or before target.
func (c *Fake) popDue(target time.Time) []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	sort.SliceStable(c.timers, func(i, j int) bool {
		return c.timers[i].at.Before(c.timers[j].at)
	})
	if len(c.timers) == 0 || c.timers[0].at.After(target) {
		return nil
	}
	n := 1
	for n < len(c.timers) && c.timers[n].at.Equal(c.timers[0].at) {
		n++
	}
	due := append([]*fakeTimer(nil), c.timers[:n]...)
	c.timers = c.timers[n:]
	return due
}

// Pending returns the number of scheduled callbacks.
func (c *Fake) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (t *fakeTimer) Stop() bool {
	c := t.fake
	c.mu.Lock()
	defer c.mu.Unlock()
	if !t.timer.Stop() {
		return false
	}
	close(t.done)
	for i, other := range c.timers {
		if other == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			break
		}
	}
	return true
}
