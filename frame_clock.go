// frame_clock.go - Virtual VBlank Clock

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine

License: GPLv3 or later
*/

/*
frame_clock.go - Virtual VBlank Clock

Reproduces the 60 Hz vertical blank of the original hardware from a wall
clock. Native ticks are 16666us boundaries counted from the clock's epoch;
the virtual tick count (what the frame scheduler compares against) advances
by Tick, which runs a fractional accumulator so a target rate below 60
credits only rate/60 of the native ticks.

Two observers feed Tick:
- Poll credits every native boundary passed since the last observation
  (the vblank interrupt). Backwards clocks and very long gaps (debugger,
  suspend) count as a single tick.
- WaitForNextTick blocks until the next boundary. The caller credits it.

In counting mode Poll credits nothing, so the count only moves when the
caller waits (the "slow PC" behaviour: frames are never skipped).
*/

package main

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// TimeSource supplies the current time and a way to pass it.
type TimeSource interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// WallClock reads the monotonic system clock.
type WallClock struct{}

func (WallClock) Now() time.Time {
	return time.Now()
}

// Sleep yields instead of sleeping for non-positive durations so spin
// loops stay responsive.
func (WallClock) Sleep(d time.Duration) {
	if d <= 0 {
		runtime.Gosched()
		return
	}
	time.Sleep(d)
}

// MANUAL_SPIN_STEP is how far a ManualClock advances on a zero sleep.
const MANUAL_SPIN_STEP = 50 * time.Microsecond

// ManualClock is a TimeSource that only moves when told to. Sleep advances
// it, so waits complete instantly and deterministically.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps int
}

// NewManualClock starts a manual clock at the given time.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (m *ManualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *ManualClock) Sleep(d time.Duration) {
	if d <= 0 {
		d = MANUAL_SPIN_STEP
	}
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.sleeps++
	m.mu.Unlock()
}

// Advance moves the clock, backwards for negative d.
func (m *ManualClock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// Sleeps counts calls to Sleep.
func (m *ManualClock) Sleeps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sleeps
}

// ClockMode selects how native ticks reach the virtual count.
type ClockMode int

const (
	ClockWall     ClockMode = iota // Poll credits elapsed boundaries
	ClockCounting                  // only waits advance the count
)

func (m ClockMode) String() string {
	if m == ClockCounting {
		return "counting"
	}
	return "wallclock"
}

// ParseClockMode accepts "wallclock" and "counting".
func ParseClockMode(s string) (ClockMode, bool) {
	switch s {
	case "wallclock", "":
		return ClockWall, true
	case "counting":
		return ClockCounting, true
	}
	return ClockWall, false
}

// Pause states
const (
	pauseNone      = 0
	pausePaused    = 1
	pauseRequested = 2
)

// FrameClock is the virtual vblank counter.
type FrameClock struct {
	src    TimeSource
	logger *slog.Logger
	mode   ClockMode

	epoch      time.Time
	lastNative int64

	rate  int
	acc   int
	count uint64

	// MaxTickGap is the largest native gap Poll credits in full.
	MaxTickGap int64

	pause atomic.Int32

	// Statistics
	Waits   uint64
	Clamped uint64
}

// NewFrameClock starts a 60 Hz clock at the time source's current time.
func NewFrameClock(src TimeSource, logger *slog.Logger) *FrameClock {
	if src == nil {
		src = WallClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FrameClock{
		src:        src,
		logger:     logger,
		epoch:      src.Now(),
		rate:       GU_NATIVE_RATE,
		MaxTickGap: GU_DEFAULT_MAX_GAP,
	}
}

// Source returns the time source.
func (c *FrameClock) Source() TimeSource {
	return c.src
}

// SetMode selects wallclock or counting mode.
func (c *FrameClock) SetMode(m ClockMode) {
	c.mode = m
}

// Mode returns the clock mode.
func (c *FrameClock) Mode() ClockMode {
	return c.mode
}

// SetRate sets the target frame rate, clamped to 1..60.
func (c *FrameClock) SetRate(rate int) {
	c.rate = min(max(rate, 1), GU_NATIVE_RATE)
}

// Rate returns the target frame rate.
func (c *FrameClock) Rate() int {
	return c.rate
}

// Count is the virtual tick count.
func (c *FrameClock) Count() uint64 {
	return c.count
}

// Accumulator is the fractional remainder, in 60ths of a tick.
func (c *FrameClock) Accumulator() int {
	return c.acc
}

// Tick credits one native tick through the rate accumulator.
func (c *FrameClock) Tick() {
	c.acc += c.rate
	if c.acc >= GU_NATIVE_RATE {
		c.acc -= GU_NATIVE_RATE
		c.count++
	}
}

// nativeIndex is the number of whole native ticks since the epoch.
func (c *FrameClock) nativeIndex(now time.Time) int64 {
	d := now.Sub(c.epoch)
	if d < 0 {
		return -1 - int64(-d/GU_NATIVE_TICK)
	}
	return int64(d / GU_NATIVE_TICK)
}

// boundary is the time native tick idx begins.
func (c *FrameClock) boundary(idx int64) time.Time {
	return c.epoch.Add(time.Duration(idx) * GU_NATIVE_TICK)
}

// Poll credits the native ticks elapsed since the last observation and
// returns how many were credited.
func (c *FrameClock) Poll() int {
	idx := c.nativeIndex(c.src.Now())
	delta := idx - c.lastNative
	c.lastNative = idx

	if c.mode == ClockCounting || delta == 0 {
		return 0
	}
	if delta < 0 || delta > c.MaxTickGap {
		c.Clamped++
		c.logger.Debug("tick gap clamped", "op", "clock poll", "gap", delta, "max", c.MaxTickGap)
		delta = 1
	}
	for range delta {
		c.Tick()
	}
	return int(delta)
}

// WaitForNextTick blocks until a native boundary after the last observed
// one. The deadline is recomputed from the time source on every iteration.
// It sleeps until close to the boundary and spins the rest. The tick is
// not credited; the caller follows with Tick.
func (c *FrameClock) WaitForNextTick() {
	c.Waits++
	for {
		now := c.src.Now()
		idx := c.nativeIndex(now)
		if idx > c.lastNative || idx < c.lastNative {
			c.lastNative = idx
			break
		}
		remaining := c.boundary(idx + 1).Sub(now)
		if remaining > GU_SPIN_THRESHOLD {
			c.src.Sleep(remaining - GU_SPIN_THRESHOLD)
		} else {
			c.src.Sleep(0)
		}
	}

	if c.pause.CompareAndSwap(pauseRequested, pausePaused) {
		c.logger.Info("paused", "op", "vblank", "tick", c.count)
	}
	if c.pause.Load() == pausePaused {
		for c.pause.Load() == pausePaused {
			c.src.Sleep(GU_PAUSE_POLL)
		}
		// Paused time is not credited
		c.lastNative = c.nativeIndex(c.src.Now())
		c.logger.Info("resumed", "op", "vblank", "tick", c.count)
	}
}

// RequestPause pauses the clock at the next vblank wait.
func (c *FrameClock) RequestPause() {
	c.pause.CompareAndSwap(pauseNone, pauseRequested)
}

// Resume ends a pause. Safe to call from another goroutine.
func (c *FrameClock) Resume() {
	c.pause.Store(pauseNone)
}

// Paused reports whether a pause is active or pending.
func (c *FrameClock) Paused() bool {
	return c.pause.Load() != pauseNone
}

// Elapsed is the time since the clock's epoch.
func (c *FrameClock) Elapsed() time.Duration {
	return c.src.Now().Sub(c.epoch)
}
