// frame_scheduler_test.go - Tests for frame pacing decisions

package main

import (
	"errors"
	"testing"
	"time"
)

func newTestScheduler() (*FrameScheduler, *FrameClock, *ManualClock, *int) {
	clock, src := newTestClock()
	presents := new(int)
	s := NewFrameScheduler(clock, func() error {
		*presents++
		return nil
	}, discardLogger())
	return s, clock, src, presents
}

// ===== Sprint 1: Frameskip disabled =====

func TestScheduler_NoFrameskipWaitsOncePerFrame(t *testing.T) {
	s, clock, _, presents := newTestScheduler()
	const frames = 10000
	for i := range frames {
		if s.SyncFrame(0, GU_DEFAULT_MAX_SKIPS, VSYNC_LOCK) {
			t.Fatalf("frame %d skipped with frameskip 0", i)
		}
	}
	if clock.Waits != frames {
		t.Fatalf("Waits = %d, want %d", clock.Waits, frames)
	}
	if clock.Count() != frames {
		t.Fatalf("virtual count = %d, want %d", clock.Count(), frames)
	}
	if *presents != frames || s.Presents != frames {
		t.Fatalf("presents = %d (%d counted), want %d", *presents, s.Presents, frames)
	}
	if s.State() != SchedRunning {
		t.Fatalf("state = %v", s.State())
	}
}

func TestScheduler_NoFrameskipSlowFrameDoesNotWait(t *testing.T) {
	s, clock, src, _ := newTestScheduler()
	src.Advance(3 * GU_NATIVE_TICK)
	s.SyncFrame(0, GU_DEFAULT_MAX_SKIPS, 0)
	if clock.Waits != 0 {
		t.Fatalf("late frame waited %d times", clock.Waits)
	}
	if s.CallCount() != 3 {
		t.Fatalf("call count = %d, want 3", s.CallCount())
	}
}

func TestScheduler_NoSwapLeavesPresentToCaller(t *testing.T) {
	s, _, _, presents := newTestScheduler()
	for range 5 {
		s.SyncFrame(0, GU_DEFAULT_MAX_SKIPS, VSYNC_LOCK|VSYNC_NO_SWAP)
	}
	if *presents != 0 || s.Presents != 0 {
		t.Fatalf("presented %d times with VSYNC_NO_SWAP", *presents)
	}
}

func TestScheduler_PresentErrorCounted(t *testing.T) {
	clock, _ := newTestClock()
	s := NewFrameScheduler(clock, func() error { return errors.New("lost device") }, discardLogger())
	s.SyncFrame(0, GU_DEFAULT_MAX_SKIPS, VSYNC_LOCK)
	if s.PresentErrs != 1 || s.Presents != 1 {
		t.Fatalf("presents=%d errors=%d", s.Presents, s.PresentErrs)
	}
}

// ===== Sprint 2: Frameskip =====

func TestScheduler_HalfRateAlternates(t *testing.T) {
	s, _, _, _ := newTestScheduler()
	for i := range 12 {
		skip := s.SyncFrame(2, 2, VSYNC_LOCK)
		if want := i%2 == 1; skip != want {
			t.Fatalf("frame %d: skip=%v, want %v", i, skip, want)
		}
		if skip && s.State() != SchedBehindSkipping {
			t.Fatalf("frame %d: state %v while skipping", i, s.State())
		}
		if !skip && s.State() != SchedCaughtUp {
			t.Fatalf("frame %d: state %v while drawing", i, s.State())
		}
	}
	if s.SkipTotal != 6 {
		t.Fatalf("SkipTotal = %d, want 6", s.SkipTotal)
	}
}

func TestScheduler_MaxSkipsBoundsRuns(t *testing.T) {
	s, _, src, _ := newTestScheduler()
	const maxSkips = 3
	run, longest := 0, 0
	for range 300 {
		src.Advance(5 * GU_NATIVE_TICK)
		if s.SyncFrame(1, maxSkips, 0) {
			run++
		} else {
			run = 0
		}
		longest = max(longest, run)
		if s.ConsecutiveSkips() > maxSkips-1 {
			t.Fatalf("consecutive skips %d exceed %d", s.ConsecutiveSkips(), maxSkips-1)
		}
	}
	if longest != maxSkips-1 {
		t.Fatalf("longest skip run %d, want %d", longest, maxSkips-1)
	}
	if s.SkipTotal == 0 || s.Presents == 0 {
		t.Fatalf("skips=%d presents=%d", s.SkipTotal, s.Presents)
	}
}

func TestScheduler_MaxSkipsOneNeverSkips(t *testing.T) {
	s, _, src, _ := newTestScheduler()
	for i := range 50 {
		src.Advance(4 * GU_NATIVE_TICK)
		if s.SyncFrame(1, 1, 0) {
			t.Fatalf("frame %d skipped with maxSkips 1", i)
		}
	}
}

func TestScheduler_FastFramesCatchUpWithoutSkipping(t *testing.T) {
	s, clock, src, _ := newTestScheduler()
	for i := range 120 {
		src.Advance(2 * time.Millisecond)
		if s.SyncFrame(1, GU_DEFAULT_MAX_SKIPS, VSYNC_LOCK) {
			t.Fatalf("frame %d skipped although ahead", i)
		}
	}
	if clock.Count() < 119 || clock.Count() > 121 {
		t.Fatalf("virtual count %d after 120 paced frames", clock.Count())
	}
}

func TestScheduler_HalfRateVirtualClock(t *testing.T) {
	s, clock, src, _ := newTestScheduler()
	clock.SetRate(30)
	for range 60 {
		src.Advance(time.Millisecond)
		s.SyncFrame(1, GU_DEFAULT_MAX_SKIPS, VSYNC_LOCK)
	}
	// 60 virtual frames at 30 per second take two seconds of native ticks.
	if got := clock.Elapsed(); got < 119*GU_NATIVE_TICK || got > 121*GU_NATIVE_TICK {
		t.Fatalf("elapsed %v, want about 2s", got)
	}
}

// requireEveryTickCredited checks that each native tick that passed was
// counted once, which holds at the native rate in wall-clock mode.
func requireEveryTickCredited(t *testing.T, clock *FrameClock) {
	t.Helper()
	native := uint64(clock.Elapsed() / GU_NATIVE_TICK)
	if clock.Count() != native {
		t.Fatalf("virtual count %d after %d native ticks", clock.Count(), native)
	}
}

func TestScheduler_WaitWithFrameskipWaitsOneTick(t *testing.T) {
	s, clock, _, presents := newTestScheduler()
	const frames = 120
	for i := range frames {
		if s.SyncFrame(1, 5, VSYNC_WAIT) {
			t.Fatalf("frame %d skipped although ahead", i)
		}
	}
	if clock.Waits != frames {
		t.Fatalf("Waits = %d, want one per frame", clock.Waits)
	}
	if clock.Count() != frames {
		t.Fatalf("virtual count = %d, want %d", clock.Count(), frames)
	}
	requireEveryTickCredited(t, clock)
	if *presents != frames {
		t.Fatalf("presents = %d, want %d", *presents, frames)
	}
}

func TestScheduler_WaitBeforeSkipCreditsTick(t *testing.T) {
	s, clock, src, _ := newTestScheduler()
	for range 20 {
		src.Advance(3 * GU_NATIVE_TICK)
		s.SyncFrame(1, 3, VSYNC_WAIT)
	}
	if s.SkipTotal == 0 {
		t.Fatal("no frames skipped at a third of the native rate")
	}
	if clock.Waits == 0 {
		t.Fatal("no vblank waits before skipping")
	}
	requireEveryTickCredited(t, clock)
}

func TestScheduler_WaitInCountingMode(t *testing.T) {
	s, clock, _, _ := newTestScheduler()
	clock.SetMode(ClockCounting)
	for range 60 {
		s.SyncFrame(1, 5, VSYNC_WAIT)
	}
	if clock.Count() != 60 || clock.Waits != 60 {
		t.Fatalf("count=%d waits=%d, want 60 and 60", clock.Count(), clock.Waits)
	}
}

func TestScheduler_LookaheadCadence(t *testing.T) {
	tests := []struct {
		name      string
		frameskip int
		vsync     int
		want      uint64
	}{
		// One tick ahead of each two-tick group
		{"lookahead", 2, VSYNC_LOOKAHEAD, 90},
		// The lock keeps groups on multiples of the frameskip; the first
		// frame is drawn at once to align
		{"lock wins over lookahead", 2, VSYNC_LOCK | VSYNC_LOOKAHEAD, 59},
		{"wait and lookahead", 1, VSYNC_WAIT | VSYNC_LOOKAHEAD, 60},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, clock, _, presents := newTestScheduler()
			const frames = 30
			for i := range frames {
				if s.SyncFrame(tc.frameskip, 5, tc.vsync) {
					t.Fatalf("frame %d skipped although ahead", i)
				}
			}
			if clock.Count() != tc.want {
				t.Fatalf("virtual count = %d, want %d", clock.Count(), tc.want)
			}
			requireEveryTickCredited(t, clock)
			if *presents != frames {
				t.Fatalf("presents = %d, want %d", *presents, frames)
			}
		})
	}
}

// ===== Sprint 3: Statistics =====

func TestSchedulerState_String(t *testing.T) {
	for state, want := range map[SchedulerState]string{
		SchedRunning:        "RUNNING",
		SchedCaughtUp:       "CAUGHT_UP",
		SchedBehindSkipping: "BEHIND_SKIPPING",
	} {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", state, got, want)
		}
	}
}

func TestMeanBenchmark_PublishesWindowMean(t *testing.T) {
	src := NewManualClock(time.Unix(0, 0))
	b := NewMeanBenchmark(src)
	for range BENCH_SAMPLES {
		b.Start(BENCH_RENDER)
		src.Advance(4 * time.Millisecond)
		b.End(BENCH_RENDER)
	}
	if got := b.Mean(BENCH_RENDER); got != 4*time.Millisecond {
		t.Fatalf("mean = %v, want 4ms", got)
	}
	b.Start(BENCH_RENDER)
	src.Advance(10 * time.Millisecond)
	b.End(BENCH_RENDER)
	if b.Mean(BENCH_RENDER) != 4*time.Millisecond || b.Last(BENCH_RENDER) != 10*time.Millisecond {
		t.Fatalf("mean=%v last=%v", b.Mean(BENCH_RENDER), b.Last(BENCH_RENDER))
	}
}
