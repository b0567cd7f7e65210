// frame_clock_test.go - Tests for the virtual vblank clock

package main

import (
	"runtime"
	"testing"
	"time"
)

func newTestClock() (*FrameClock, *ManualClock) {
	src := NewManualClock(time.Unix(0, 0))
	return NewFrameClock(src, discardLogger()), src
}

// ===== Sprint 1: Rate accumulator =====

func TestFrameClock_NativeRateCountsEveryTick(t *testing.T) {
	c, _ := newTestClock()
	for range 10 {
		c.Tick()
	}
	if c.Count() != 10 || c.Accumulator() != 0 {
		t.Fatalf("count=%d acc=%d", c.Count(), c.Accumulator())
	}
}

func TestFrameClock_FiftyOfSixty(t *testing.T) {
	c, _ := newTestClock()
	c.SetRate(50)
	for range 6 {
		c.Tick()
	}
	if c.Count() != 5 || c.Accumulator() != 0 {
		t.Fatalf("after 6 ticks: count=%d acc=%d, want 5 and 0", c.Count(), c.Accumulator())
	}
	for range 54 {
		c.Tick()
	}
	if c.Count() != 50 {
		t.Fatalf("after 60 ticks: count=%d, want 50", c.Count())
	}
}

func TestFrameClock_RateClamped(t *testing.T) {
	c, _ := newTestClock()
	c.SetRate(0)
	if c.Rate() != 1 {
		t.Fatalf("rate 0 clamped to %d", c.Rate())
	}
	c.SetRate(120)
	if c.Rate() != GU_NATIVE_RATE {
		t.Fatalf("rate 120 clamped to %d", c.Rate())
	}
}

// ===== Sprint 2: Polling =====

func TestFrameClock_PollCreditsElapsedBoundaries(t *testing.T) {
	c, src := newTestClock()
	src.Advance(3*GU_NATIVE_TICK + time.Millisecond)
	if got := c.Poll(); got != 3 {
		t.Fatalf("Poll() = %d, want 3", got)
	}
	if got := c.Poll(); got != 0 {
		t.Fatalf("second Poll() = %d, want 0", got)
	}
	if c.Count() != 3 {
		t.Fatalf("count=%d, want 3", c.Count())
	}
}

func TestFrameClock_GapClamp(t *testing.T) {
	c, src := newTestClock()
	src.Advance(100 * GU_NATIVE_TICK)
	if got := c.Poll(); got != 1 {
		t.Fatalf("Poll() after 100 ticks = %d, want 1", got)
	}
	if c.Clamped != 1 {
		t.Fatalf("Clamped = %d", c.Clamped)
	}

	src.Advance(GU_DEFAULT_MAX_GAP * GU_NATIVE_TICK)
	if got := c.Poll(); got != GU_DEFAULT_MAX_GAP {
		t.Fatalf("Poll() at the limit = %d, want %d", got, GU_DEFAULT_MAX_GAP)
	}
}

func TestFrameClock_BackwardsJumpCountsOne(t *testing.T) {
	c, src := newTestClock()
	src.Advance(10 * GU_NATIVE_TICK)
	c.Poll()
	src.Advance(-5 * GU_NATIVE_TICK)
	if got := c.Poll(); got != 1 {
		t.Fatalf("Poll() after going back = %d, want 1", got)
	}
}

func TestFrameClock_CountingModeIgnoresWallTime(t *testing.T) {
	c, src := newTestClock()
	c.SetMode(ClockCounting)
	src.Advance(5 * GU_NATIVE_TICK)
	if got := c.Poll(); got != 0 || c.Count() != 0 {
		t.Fatalf("Poll() = %d count=%d in counting mode", got, c.Count())
	}
	c.WaitForNextTick()
	c.Tick()
	if c.Count() != 1 {
		t.Fatalf("count=%d after a wait, want 1", c.Count())
	}
}

func TestParseClockMode(t *testing.T) {
	if m, ok := ParseClockMode("counting"); !ok || m != ClockCounting {
		t.Fatalf("counting parsed as %v, %v", m, ok)
	}
	if m, ok := ParseClockMode("wallclock"); !ok || m != ClockWall {
		t.Fatalf("wallclock parsed as %v, %v", m, ok)
	}
	if _, ok := ParseClockMode("fast"); ok {
		t.Fatal("unknown mode accepted")
	}
}

// ===== Sprint 3: Waiting and pause =====

func TestFrameClock_WaitLandsOnBoundary(t *testing.T) {
	c, src := newTestClock()
	src.Advance(5 * time.Millisecond)
	c.WaitForNextTick()
	now := src.Now().Sub(time.Unix(0, 0))
	if now < GU_NATIVE_TICK || now >= GU_NATIVE_TICK+GU_SPIN_THRESHOLD {
		t.Fatalf("woke at %v, want just after %v", now, GU_NATIVE_TICK)
	}
	if c.Waits != 1 {
		t.Fatalf("Waits = %d", c.Waits)
	}
}

func TestFrameClock_WaitSleepsThenSpins(t *testing.T) {
	c, src := newTestClock()
	c.WaitForNextTick()
	// One long sleep, then MANUAL_SPIN_STEP spins through the threshold.
	want := 1 + int(GU_SPIN_THRESHOLD/MANUAL_SPIN_STEP)
	if got := src.Sleeps(); got != want {
		t.Fatalf("sleeps = %d, want %d", got, want)
	}
}

func TestFrameClock_PauseNotCredited(t *testing.T) {
	c, src := newTestClock()
	c.RequestPause()
	if !c.Paused() {
		t.Fatal("pause not pending")
	}

	go func() {
		for src.Sleeps() < 200 {
			runtime.Gosched()
		}
		c.Resume()
	}()
	c.WaitForNextTick()
	c.Tick()

	if c.Paused() {
		t.Fatal("still paused after resume")
	}
	if got := c.Poll(); got != 0 {
		t.Fatalf("paused time credited: Poll() = %d", got)
	}
	if c.Count() != 1 {
		t.Fatalf("count=%d, want 1", c.Count())
	}
}

func TestManualClock_ZeroSleepAdvances(t *testing.T) {
	src := NewManualClock(time.Unix(0, 0))
	src.Sleep(0)
	if got := src.Now().Sub(time.Unix(0, 0)); got != MANUAL_SPIN_STEP {
		t.Fatalf("zero sleep advanced %v", got)
	}
}
