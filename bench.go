// bench.go - Frame Pacing Benchmark

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
bench.go - Frame Pacing Benchmark

Runs the demo scene against a manual clock with a simulated per-frame
render cost and reports how the scheduler paced it: presents, skips,
the longest skip run and the effective frame rate in virtual time.
Nothing sleeps for real, so a long run finishes in seconds.
*/

package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

type BenchOptions struct {
	Frames    int
	Render    time.Duration // simulated draw cost per frame
	Jitter    time.Duration // uniform extra cost in [0, Jitter)
	FrameSkip int
	MaxSkips  int
	VSync     int
	Rate      int
	Seed      uint64
}

type BenchResult struct {
	Frames         int
	Presents       uint64
	Skipped        uint64
	MaxSkipRun     int
	Virtual        time.Duration
	FPS            float64
	SkipRatio      float64
	MeanRender     time.Duration
	RendererShapes int
}

func (r BenchResult) String() string {
	return fmt.Sprintf("%d frames: %d presented, %d skipped (%.1f%%, longest run %d), %.2f fps over %v virtual",
		r.Frames, r.Presents, r.Skipped, r.SkipRatio*100, r.MaxSkipRun, r.FPS, r.Virtual.Round(time.Millisecond))
}

// RunPacingBench drives opts.Frames frames. progress, when set, is called
// after each one.
func RunPacingBench(opts BenchOptions, logger *slog.Logger, progress func()) (BenchResult, error) {
	src := NewManualClock(time.Unix(0, 0))
	clock := NewFrameClock(src, logger)
	clock.SetRate(opts.Rate)

	vram := NewVRAM(GU_VRAM_SIZE)
	ctx, err := NewGuContext(ContextOptions{
		Renderer: NewSoftwareRenderer(vram),
		VRAM:     vram,
		Clock:    clock,
		Logger:   logger,
	})
	if err != nil {
		return BenchResult{}, err
	}
	defer ctx.Destroy()
	if err := ctx.InitGfx(GU_PSM_8888, true); err != nil {
		return BenchResult{}, err
	}
	scene := NewDemoScene(nil)
	if err := scene.Init(ctx); err != nil {
		return BenchResult{}, err
	}
	defer scene.Close()

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9E3779B97F4A7C15))
	var res BenchResult
	for n := range opts.Frames {
		if err := scene.Frame(ctx, uint64(n)); err != nil {
			return res, err
		}
		cost := opts.Render
		if opts.Jitter > 0 {
			cost += time.Duration(rng.Int64N(int64(opts.Jitter)))
		}
		src.Advance(cost)
		ctx.SyncFrame(opts.FrameSkip, opts.MaxSkips, opts.VSync)
		res.MaxSkipRun = max(res.MaxSkipRun, ctx.Scheduler().ConsecutiveSkips())
		if progress != nil {
			progress()
		}
	}
	ctx.EndDrawing()

	sched := ctx.Scheduler()
	res.Frames = opts.Frames
	res.Presents = sched.Presents
	res.Skipped = sched.SkipTotal
	res.Virtual = clock.Elapsed()
	if s := res.Virtual.Seconds(); s > 0 {
		res.FPS = float64(res.Presents) / s
	}
	if opts.Frames > 0 {
		res.SkipRatio = float64(res.Skipped) / float64(opts.Frames)
	}
	res.MeanRender = sched.Bench().Mean(BENCH_RENDER)
	return res, nil
}

// runBench is the "bench" sub-command.
func runBench(args []string) int {
	opts := BenchOptions{Seed: 1}
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVar(&opts.Frames, "n", 600, "Frames to run")
	fs.DurationVar(&opts.Render, "render", 20*time.Millisecond, "Simulated render cost per frame")
	fs.DurationVar(&opts.Jitter, "jitter", 5*time.Millisecond, "Extra random render cost")
	fs.IntVar(&opts.FrameSkip, "frameskip", GU_DEFAULT_FRAMESKIP, "Frameskip policy (0 = auto)")
	fs.IntVar(&opts.MaxSkips, "max-skips", GU_DEFAULT_MAX_SKIPS, "Maximum consecutive skips")
	fs.IntVar(&opts.VSync, "vsync", GU_DEFAULT_VSYNC, "VSync flags")
	fs.IntVar(&opts.Rate, "rate", GU_NATIVE_RATE, "Virtual frame rate 1-60")
	fs.Uint64Var(&opts.Seed, "seed", opts.Seed, "Jitter seed")
	fs.Usage = func() {
		fs.SetOutput(os.Stdout)
		fmt.Println("Usage: gu_host bench [-n 600] [-render 20ms] [-jitter 5ms] [-frameskip 0] [-max-skips 5] [-vsync 4] [-rate 60]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	var progress func()
	if term.IsTerminal(int(os.Stdout.Fd())) {
		pb := progressbar.Default(int64(opts.Frames), "pacing")
		defer pb.Close()
		progress = func() { pb.Add(1) }
	}

	res, err := RunPacingBench(opts, logger, progress)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		return 1
	}
	fmt.Println()
	fmt.Println(res)
	fmt.Printf("mean render %s ms\n", formatMillis(res.MeanRender))
	return 0
}
