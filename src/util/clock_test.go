package util

import (
	"testing"
	"time"
)

func TestManualClockOrder(t *testing.T) {
	var clock ManualClock
	var fired []int
	clock.AfterFunc(time.Second*2, func() { fired = append(fired, 2) })
	clock.AfterFunc(time.Second, func() { fired = append(fired, 1) })
	clock.AfterFunc(time.Second*5, func() { fired = append(fired, 5) })

	clock.Advance(time.Second * 3)
	if len(fired) != 2 || fired[0] != 1 || fired[1] != 2 {
		t.Fatalf("Unexpected firing order: %v", fired)
	}
	if clock.Pending() != 1 {
		t.Fatalf("Unexpected pending count: %d", clock.Pending())
	}
	if clock.Now() != time.Second*3 {
		t.Fatalf("Unexpected time: %v", clock.Now())
	}
}

func TestManualClockStop(t *testing.T) {
	var clock ManualClock
	fired := false
	tm := clock.AfterFunc(time.Second, func() { fired = true })
	if !tm.Stop() {
		t.Fatal("Stop of a pending timer should return true")
	}
	if tm.Stop() {
		t.Fatal("Stop of a stopped timer should return false")
	}
	clock.Advance(time.Second * 2)
	if fired {
		t.Fatal("Stopped timer fired")
	}
}

func TestManualClockRearm(t *testing.T) {
	var clock ManualClock
	ticks := 0
	var tick func()
	tick = func() {
		ticks++
		clock.AfterFunc(time.Millisecond*500, tick)
	}
	clock.AfterFunc(time.Millisecond*500, tick)

	clock.Advance(time.Second * 2)
	if ticks != 4 {
		t.Fatalf("Unexpected number of ticks: %d", ticks)
	}
	if clock.Pending() != 1 {
		t.Fatalf("Unexpected pending count: %d", clock.Pending())
	}
}
