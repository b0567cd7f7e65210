// frame_scheduler.go - Frame-Pacing Scheduler

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
frame_scheduler.go - Frame-Pacing Scheduler

Decides once per logical frame whether the next frame is drawn or
skipped, waits on the virtual vblank clock as needed and presents.

frameskip 0   wait for the next tick, present, never skip
frameskip 1+  compare the virtual tick count against the frames issued;
              when behind, skip (bounded by maxSkips-1 in a row),
              otherwise wait out any lead and present

vsync mode bits (combinable):
  VSYNC_WAIT       wait for a tick before presenting
  VSYNC_LOCK       skip on multiples of frameskip rather than on lag
  VSYNC_LOOKAHEAD  let a drawn frame run one tick ahead
  VSYNC_NO_SWAP    never present; the caller does

The lock and look-ahead bits apply independently when both are set.
*/

package main

import "log/slog"

// SchedulerState is the outcome of the last decision.
type SchedulerState int

const (
	SchedRunning        SchedulerState = iota // frameskip disabled
	SchedCaughtUp                             // next frame drawn
	SchedBehindSkipping                       // next frame skipped
)

func (s SchedulerState) String() string {
	switch s {
	case SchedCaughtUp:
		return "CAUGHT_UP"
	case SchedBehindSkipping:
		return "BEHIND_SKIPPING"
	}
	return "RUNNING"
}

// FrameScheduler paces frames against a FrameClock.
type FrameScheduler struct {
	clock   *FrameClock
	present func() error
	bench   *MeanBenchmark
	logger  *slog.Logger

	callCount        uint64
	skip             bool
	consecutiveSkips int
	maxSkips         int
	state            SchedulerState

	// Statistics
	Frames      uint64
	SkipTotal   uint64
	Presents    uint64
	PresentErrs uint64
}

// NewFrameScheduler creates a scheduler. present is called for every
// buffer swap; it may be nil.
func NewFrameScheduler(clock *FrameClock, present func() error, logger *slog.Logger) *FrameScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FrameScheduler{
		clock:    clock,
		present:  present,
		bench:    NewMeanBenchmark(clock.Source()),
		logger:   logger,
		maxSkips: GU_DEFAULT_MAX_SKIPS,
	}
}

// State is the state after the last SyncFrame.
func (s *FrameScheduler) State() SchedulerState {
	return s.state
}

// Skipping reports whether the current frame is being skipped.
func (s *FrameScheduler) Skipping() bool {
	return s.skip
}

// ConsecutiveSkips is the length of the current run of skipped frames.
func (s *FrameScheduler) ConsecutiveSkips() int {
	return s.consecutiveSkips
}

// CallCount is the tick the last frame was issued for.
func (s *FrameScheduler) CallCount() uint64 {
	return s.callCount
}

// Bench exposes the frame timings.
func (s *FrameScheduler) Bench() *MeanBenchmark {
	return s.bench
}

func (s *FrameScheduler) swap() {
	s.Presents++
	if s.present == nil {
		return
	}
	if err := s.present(); err != nil {
		s.PresentErrs++
		s.logger.Warn("present failed", "op", "swap buffers", "err", err)
	}
}

func (s *FrameScheduler) waitTick() {
	s.clock.WaitForNextTick()
	s.clock.Tick()
}

// SyncFrame ends the current logical frame and reports whether the next
// one should be skipped.
func (s *FrameScheduler) SyncFrame(frameskip, maxSkips, vsync int) bool {
	s.clock.Poll()
	s.maxSkips = maxSkips
	s.Frames++
	vbl := s.clock.Count

	if frameskip <= 0 {
		s.bench.End(BENCH_RENDER)
		s.bench.End(BENCH_FRAME)
		if vsync&(VSYNC_WAIT|VSYNC_LOCK) != 0 || s.callCount+1 > vbl() {
			for {
				s.waitTick()
				if s.callCount+1 <= vbl() {
					break
				}
			}
		}
		s.callCount = vbl()
		s.skip = false
		s.bench.Start(BENCH_RENDER)
		s.bench.Start(BENCH_FRAME)
		if vsync&VSYNC_NO_SWAP == 0 {
			s.swap()
		}
	} else {
		fs := uint64(frameskip)
		s.callCount++
		wasSkipping := s.skip
		if s.skip {
			s.bench.End(BENCH_SKIPPED)
		} else {
			s.bench.End(BENCH_RENDER)
		}

		var i uint64
		if vsync&VSYNC_WAIT != 0 && !s.skip && vsync&VSYNC_LOOKAHEAD == 0 {
			i = 1
		}
		behind := vbl()+i > s.callCount+fs-1 || (vsync&VSYNC_LOCK != 0 && s.callCount%fs != 0)
		if behind && s.consecutiveSkips < maxSkips-1 {
			if !s.skip {
				s.bench.End(BENCH_FRAME)
				if vsync&VSYNC_WAIT != 0 {
					s.waitTick()
				}
				if vsync&VSYNC_NO_SWAP == 0 {
					s.swap()
				}
				s.bench.Start(BENCH_FRAME)
			}
			s.consecutiveSkips++
			// The last frame of a group is drawn
			s.skip = !(fs > 1 && s.callCount%fs == fs-1)
		} else {
			if !s.skip {
				s.bench.End(BENCH_FRAME)
			}
			if vsync&VSYNC_WAIT != 0 && !s.skip {
				s.waitTick()
			}
			if vsync&VSYNC_LOCK == 0 {
				s.callCount += fs - 1
			}
			var lookahead uint64
			if vsync&VSYNC_LOOKAHEAD != 0 && !s.skip {
				lookahead = 1
			}
			for vbl() < s.callCount+lookahead {
				s.waitTick()
			}
			if !s.skip && vsync&VSYNC_NO_SWAP == 0 {
				s.swap()
			}
			if !wasSkipping {
				s.bench.Start(BENCH_FRAME)
			}
			s.callCount = vbl()
			s.skip = false
			if vsync&VSYNC_LOCK != 0 && fs > 1 && s.callCount%fs == 0 {
				s.skip = true
			}
		}
		if s.skip {
			s.bench.Start(BENCH_SKIPPED)
		} else {
			s.bench.Start(BENCH_RENDER)
		}
	}

	if !s.skip {
		s.consecutiveSkips = 0
	}
	switch {
	case s.skip:
		s.state = SchedBehindSkipping
		s.SkipTotal++
	case frameskip <= 0:
		s.state = SchedRunning
	default:
		s.state = SchedCaughtUp
	}
	return s.skip
}
