// bench_test.go - Tests for the pacing benchmark and the demo scene

package main

import (
	"testing"
	"time"
)

func TestRunPacingBench_LockedFullRate(t *testing.T) {
	frames := 0
	res, err := RunPacingBench(BenchOptions{
		Frames:   120,
		Render:   time.Millisecond,
		MaxSkips: GU_DEFAULT_MAX_SKIPS,
		VSync:    VSYNC_LOCK,
		Rate:     GU_NATIVE_RATE,
	}, discardLogger(), func() { frames++ })
	if err != nil {
		t.Fatalf("RunPacingBench: %v", err)
	}
	if frames != 120 {
		t.Fatalf("progress called %d times", frames)
	}
	if res.Presents != 120 || res.Skipped != 0 {
		t.Fatalf("presents=%d skipped=%d", res.Presents, res.Skipped)
	}
	if res.FPS < 59 || res.FPS > 61 {
		t.Fatalf("fps = %.2f", res.FPS)
	}
}

func TestRunPacingBench_SlowFramesSkipWithinBound(t *testing.T) {
	res, err := RunPacingBench(BenchOptions{
		Frames:    180,
		Render:    30 * time.Millisecond,
		Jitter:    10 * time.Millisecond,
		FrameSkip: 1,
		MaxSkips:  3,
		Rate:      GU_NATIVE_RATE,
		Seed:      7,
	}, discardLogger(), nil)
	if err != nil {
		t.Fatalf("RunPacingBench: %v", err)
	}
	if res.Skipped == 0 {
		t.Fatal("no frames skipped at half speed")
	}
	if res.MaxSkipRun > 2 {
		t.Fatalf("skip run %d exceeds maxSkips-1", res.MaxSkipRun)
	}
	if res.SkipRatio <= 0 || res.SkipRatio >= 1 {
		t.Fatalf("skip ratio %.2f", res.SkipRatio)
	}
	if res.String() == "" {
		t.Fatal("empty summary")
	}
}

func TestRunPacingBench_Deterministic(t *testing.T) {
	opts := BenchOptions{Frames: 60, Render: 12 * time.Millisecond, Jitter: 12 * time.Millisecond, FrameSkip: 1, MaxSkips: 4, Rate: 50, Seed: 42}
	a, err := RunPacingBench(opts, discardLogger(), nil)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := RunPacingBench(opts, discardLogger(), nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if a != b {
		t.Fatalf("runs differ:\n%v\n%v", a, b)
	}
}

func TestRunBench_BadFlag(t *testing.T) {
	if code := runBench([]string{"-n", "many"}); code == 0 {
		t.Fatal("bad flag accepted")
	}
}

func TestDemoScene_DrawsEveryFrame(t *testing.T) {
	ctx, rec, _ := newInitializedContext(t, ContextOptions{})
	ctrl := NewController(nil)
	ctrl.SetKey(HostKeyRight, true)
	d := NewDemoScene(ctrl)
	if err := d.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	x := d.x
	for n := range 8 {
		if err := d.Frame(ctx, uint64(n)); err != nil {
			t.Fatalf("Frame %d: %v", n, err)
		}
	}
	if len(rec.shapes) == 0 || len(rec.uploads) == 0 {
		t.Fatalf("shapes=%d uploads=%d", len(rec.shapes), len(rec.uploads))
	}
	if d.x <= x {
		t.Fatal("sprite did not move right")
	}
	kinds := map[ShapeKind]bool{}
	for _, s := range rec.shapes {
		kinds[s.Kind] = true
	}
	for _, k := range []ShapeKind{ShapePoint, ShapeLineStrip, ShapeTriangleFan, ShapeQuad} {
		if !kinds[k] {
			t.Errorf("no %v drawn", k)
		}
	}
}
