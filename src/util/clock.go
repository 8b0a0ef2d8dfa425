package util

import (
	"sort"
	"sync"
	"time"
)

// A Timer is a handle to a function scheduled by a Clock.
type Timer interface {
	// Stop prevents the function from firing. It returns false if the
	// function has already fired or was stopped before.
	Stop() bool
}

// A Clock schedules functions to run after a delay.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock is the Clock backed by the time package.
type SystemClock struct{}

// AfterFunc implements the Clock interface.
func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualClock is a Clock that only advances when told to. Scheduled functions
// run on the goroutine that calls Advance.
type ManualClock struct {
	lock    sync.Mutex
	now     time.Duration
	seq     int
	pending []*manualTimer
}

type manualTimer struct {
	clock   *ManualClock
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func (tm *manualTimer) Stop() bool {
	tm.clock.lock.Lock()
	defer tm.clock.lock.Unlock()
	if tm.stopped || tm.fired {
		return false
	}
	tm.stopped = true
	return true
}

// AfterFunc implements the Clock interface.
func (clock *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	clock.lock.Lock()
	defer clock.lock.Unlock()
	clock.seq++
	tm := &manualTimer{clock: clock, at: clock.now + d, seq: clock.seq, f: f}
	clock.pending = append(clock.pending, tm)
	return tm
}

// Advance moves the clock forward, running every function that becomes due
// in the order of their deadlines. Functions scheduled while advancing are
// run as well if they fall within the window.
func (clock *ManualClock) Advance(d time.Duration) {
	clock.lock.Lock()
	target := clock.now + d
	clock.lock.Unlock()

	for {
		clock.lock.Lock()
		next := clock.nextDue(target)
		if next == nil {
			clock.now = target
			clock.lock.Unlock()
			return
		}
		clock.now = next.at
		next.fired = true
		clock.lock.Unlock()
		next.f()
	}
}

func (clock *ManualClock) nextDue(target time.Duration) *manualTimer {
	live := clock.pending[:0]
	for _, tm := range clock.pending {
		if !tm.stopped && !tm.fired {
			live = append(live, tm)
		}
	}
	clock.pending = live
	sort.Slice(clock.pending, func(i, j int) bool {
		if clock.pending[i].at == clock.pending[j].at {
			return clock.pending[i].seq < clock.pending[j].seq
		}
		return clock.pending[i].at < clock.pending[j].at
	})
	if len(clock.pending) == 0 || clock.pending[0].at > target {
		return nil
	}
	return clock.pending[0]
}

// Pending returns the number of scheduled functions that have neither fired
// nor been stopped.
func (clock *ManualClock) Pending() int {
	clock.lock.Lock()
	defer clock.lock.Unlock()
	n := 0
	for _, tm := range clock.pending {
		if !tm.stopped && !tm.fired {
			n++
		}
	}
	return n
}

// Now returns the amount of time the clock has been advanced.
func (clock *ManualClock) Now() time.Duration {
	clock.lock.Lock()
	defer clock.lock.Unlock()
	return clock.now
}
