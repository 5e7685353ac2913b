// Package timer provides pooled one-shot timers and a restartable countdown.
package timer

import (
	"sync"
	"time"
)

var timerPool sync.Pool

// Get returns a timer for the given duration d from the pool.
//
// Return the timer to the pool with Put.
func Get(d time.Duration) *time.Timer {
	if v := timerPool.Get(); v != nil {
		t, _ := v.(*time.Timer)
		if t.Reset(d) {
			select {
			case <-t.C:
			default:
			}
		}

		return t
	}

	return time.NewTimer(d)
}

// Put returns t to the pool. t must not be used afterwards.
func Put(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	timerPool.Put(t)
}

// Countdown calls a function once a duration elapses without being restarted.
//
// Each Restart invalidates the previous arming: a callback belonging to an
// earlier arming that is already running when Restart or Stop is called is
// suppressed. Callbacks run on their own goroutine.
type Countdown struct {
	mu  sync.Mutex
	fn  func()
	t   *time.Timer
	gen uint64
}

// NewCountdown creates a stopped countdown that will call fn.
func NewCountdown(fn func()) *Countdown {
	return &Countdown{fn: fn}
}

// Restart (re)arms the countdown to fire after d.
func (c *Countdown) Restart(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.t != nil {
		c.t.Stop()
	}
	c.gen++
	gen := c.gen
	c.t = time.AfterFunc(d, func() { c.fire(gen) })
}

// Stop disarms the countdown. It reports whether the countdown was armed.
func (c *Countdown) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	if c.t == nil {
		return false
	}
	stopped := c.t.Stop()
	c.t = nil

	return stopped
}

func (c *Countdown) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.t = nil
	c.mu.Unlock()

	c.fn()
}
