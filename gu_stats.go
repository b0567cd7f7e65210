// gu_stats.go - Frame Statistics

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
gu_stats.go - Frame Statistics

MeanBenchmark keeps running means of timed sections in numbered slots,
averaged over fixed sample windows. The scheduler times three slots:

  BENCH_RENDER   time spent drawing frames that were presented
  BENCH_SKIPPED  time spent on frames that were skipped
  BENCH_FRAME    time between two presents

RenderStats is the per-frame summary shown in the stats bar and logged
with slog.
*/

package main

import (
	"fmt"
	"log/slog"
	"time"
)

const (
	BENCH_SLOTS   = 8
	BENCH_SAMPLES = 20

	BENCH_RENDER  = 4
	BENCH_SKIPPED = 5
	BENCH_FRAME   = 6
)

// MeanBenchmark times sections against a TimeSource.
type MeanBenchmark struct {
	src     TimeSource
	start   [BENCH_SLOTS]time.Time
	total   [BENCH_SLOTS]time.Duration
	samples [BENCH_SLOTS]int
	mean    [BENCH_SLOTS]time.Duration
}

// NewMeanBenchmark creates a benchmark with every slot started now.
func NewMeanBenchmark(src TimeSource) *MeanBenchmark {
	b := &MeanBenchmark{src: src}
	for i := range BENCH_SLOTS {
		b.Reset(i)
	}
	return b
}

// Reset clears a slot and restarts its timer.
func (b *MeanBenchmark) Reset(slot int) {
	b.total[slot] = 0
	b.samples[slot] = 0
	b.mean[slot] = 0
	b.start[slot] = b.src.Now()
}

// Start begins a timed section.
func (b *MeanBenchmark) Start(slot int) {
	b.start[slot] = b.src.Now()
}

// End closes a timed section. Every BENCH_SAMPLES sections the window
// mean is published.
func (b *MeanBenchmark) End(slot int) {
	b.total[slot] += b.src.Now().Sub(b.start[slot])
	b.samples[slot]++
	if b.samples[slot] >= BENCH_SAMPLES {
		b.mean[slot] = b.total[slot] / BENCH_SAMPLES
		b.total[slot] = 0
		b.samples[slot] = 0
	}
}

// Mean returns the last published mean of a slot.
func (b *MeanBenchmark) Mean(slot int) time.Duration {
	return b.mean[slot]
}

// Last returns the mean of the window still being collected, or the last
// published mean when it is empty.
func (b *MeanBenchmark) Last(slot int) time.Duration {
	if b.samples[slot] != 0 {
		return b.total[slot] / time.Duration(b.samples[slot])
	}
	return b.mean[slot]
}

// RenderStats summarizes one presented frame.
type RenderStats struct {
	Frame        uint64
	VirtualTicks uint64
	Shapes       int
	Draws        int
	Uploads      uint64
	CacheHits    uint64
	Skipped      uint64
	State        SchedulerState
	Render       time.Duration
	SkippedTime  time.Duration
	FrameTime    time.Duration
}

// LogValue groups the stats for structured logs.
func (s RenderStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("frame", s.Frame),
		slog.Uint64("ticks", s.VirtualTicks),
		slog.Int("shapes", s.Shapes),
		slog.Int("draws", s.Draws),
		slog.Uint64("uploads", s.Uploads),
		slog.Uint64("cache_hits", s.CacheHits),
		slog.Uint64("skipped", s.Skipped),
		slog.String("state", s.State.String()),
		slog.Duration("render", s.Render),
		slog.Duration("frame_time", s.FrameTime),
	)
}

// String formats the stats bar line: render + skipped = frame.
func (s RenderStats) String() string {
	return fmt.Sprintf("%s + %s = %s  shapes %d  uploads %d  skipped %d  %s",
		formatMillis(s.Render), formatMillis(s.SkippedTime), formatMillis(s.FrameTime),
		s.Shapes, s.Uploads, s.Skipped, s.State)
}

func formatMillis(d time.Duration) string {
	us := d.Microseconds()
	return fmt.Sprintf("%d.%03d", us/1000, us%1000)
}
