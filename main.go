// main.go - Main entry point for the GU host

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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func boilerPlate() {
	fmt.Println("\n\033[38;2;255;20;147m ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████\033[0m\n\033[38;2;255;50;147m▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀\033[0m\n\033[38;2;255;80;147m▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███\033[0m\n\033[38;2;255;110;147m░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄\033[0m\n\033[38;2;255;140;147m░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒\033[0m\n\033[38;2;255;170;147m░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░\033[0m\n\033[38;2;255;200;147m ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░\033[0m\n\033[38;2;255;230;147m ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░\033[0m\n\033[38;2;255;255;147m ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░\033[0m")
	fmt.Println("\nA sceGu style immediate-mode renderer and frame pacer.")
	fmt.Println("(c) 2024 - 2026 Zayn Otley")
	fmt.Println("https://github.com/IntuitionAmiga/IntuitionEngine")
	fmt.Println("License: GPLv3 or later")
}

func usage(fs *flag.FlagSet) {
	fmt.Println("\nUsage: gu_host [options]")
	fmt.Println("       gu_host bench [options]")
	fmt.Println("       gu_host ctl pause|resume|stats|screenshot <file>|dump <file>")
	fmt.Println("       gu_host features")
	fmt.Println("\nOptions:")
	fs.SetOutput(os.Stdout)
	fs.PrintDefaults()
	fmt.Println("\nKeys: arrows d-pad, 1/2/3/5 face buttons, 4/6 triggers, 0 select, Enter start,")
	fmt.Println("      WASD analog stick, P pause, F9 screenshot, F11 fullscreen, F12 stats bar")
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "bench":
			os.Exit(runBench(os.Args[2:]))
		case "features", "-features", "--features":
			printFeatures()
			return
		case "ctl":
			os.Exit(runControlClient(os.Args[2:]))
		}
	}

	bootLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg, flagSet, err := ParseConfig(os.Args[0], os.Args[1:], bootLogger)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			boilerPlate()
			usage(flagSet)
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if flagSet.NArg() > 0 {
		fmt.Printf("Error: unexpected arguments %s\n", strings.Join(flagSet.Args(), " "))
		os.Exit(1)
	}

	logger, err := NewLogger(os.Stderr, cfg.Log)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Display != DISPLAY_BACKEND_TERMINAL {
		boilerPlate()
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(sigCtx, cfg, logger); err != nil {
		fmt.Printf("Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// newRenderer builds the configured host renderer and applies the
// capability settings before the context reads them.
func newRenderer(cfg Config, vram *VRAM, logger *slog.Logger) (HostRenderer, error) {
	var renderer HostRenderer
	switch strings.ToLower(cfg.Renderer) {
	case "opengl":
		r, err := NewGLRenderer(vram, logger)
		if err != nil {
			return nil, fmt.Errorf("opengl renderer: %w", err)
		}
		renderer = r
	default:
		soft := NewSoftwareRenderer(vram)
		caps := cfg.HostCaps()
		if cfg.VulkanProbe {
			probe, err := ProbeVulkan(logger)
			if err != nil {
				logger.Warn("vulkan probe failed, accepting every format", "error", err)
			} else {
				probe.Apply(soft)
				caps.ConstantBlend = caps.ConstantBlend && probe.Caps.ConstantBlend
				caps.BlendEquations = caps.BlendEquations && probe.Caps.BlendEquations
			}
		}
		soft.SetCaps(caps)
		renderer = soft
	}
	return renderer, nil
}

// newScene picks the Lua script when one is configured.
func newScene(cfg Config, controller *Controller) Scene {
	if cfg.Script != "" {
		return NewLuaScene(cfg.Script, controller)
	}
	return NewDemoScene(controller)
}

// setupAudio wires the mixer to the device, the WAV capture and the scene.
// The returned function releases everything.
func setupAudio(cfg Config, ctx *GuContext, scene Scene, logger *slog.Logger) (func(), error) {
	rate := cfg.Audio.SampleRate
	mixer := NewAudioMixer(logger)
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Audio.WavPath != "" {
		capture, err := NewWavCapture(cfg.Audio.WavPath, rate)
		if err != nil {
			return cleanup, err
		}
		mixer.SetCapture(capture)
		closers = append(closers, func() {
			if err := capture.Close(); err != nil {
				logger.Warn("wav capture close failed", "error", err)
			}
			logger.Info("wav capture written", "path", cfg.Audio.WavPath, "frames", capture.Frames())
		})
	}

	realtime := false
	if cfg.Audio.Enabled {
		player, err := NewOtoPlayer(rate)
		if err != nil {
			logger.Warn("audio device unavailable", "error", err)
		} else {
			player.SetupPlayer(mixer)
			player.Start()
			realtime = player.Realtime()
			closers = append(closers, player.Close)
		}
	}
	if !realtime {
		ctx.AddFrameHook(mixer.FrameHook(rate, cfg.FrameRate))
	}

	if demo, ok := scene.(*DemoScene); ok {
		if err := demo.AttachAudio(mixer, 0, rate); err != nil {
			return cleanup, err
		}
	}
	return cleanup, nil
}

func run(sigCtx context.Context, cfg Config, logger *slog.Logger) error {
	mode, _ := ParseClockMode(cfg.ClockMode)
	clock := NewFrameClock(WallClock{}, logger)
	clock.SetRate(cfg.FrameRate)
	clock.SetMode(mode)
	clock.MaxTickGap = cfg.MaxTickGap

	vram := NewVRAM(GU_VRAM_SIZE)
	renderer, err := newRenderer(cfg, vram, logger)
	if err != nil {
		return err
	}

	display, err := NewDisplayOutput(cfg.Display)
	if err != nil {
		renderer.Destroy()
		return err
	}
	dc := DefaultDisplayConfig()
	dc.Scale = cfg.Scale
	dc.Fullscreen = cfg.Fullscreen
	dc.RefreshRate = cfg.FrameRate
	if err := display.SetDisplayConfig(dc); err != nil {
		renderer.Destroy()
		return err
	}

	ctx, err := NewGuContext(ContextOptions{
		Renderer:    renderer,
		VRAM:        vram,
		Clock:       clock,
		Display:     display,
		Logger:      logger,
		StrictLists: cfg.StrictLists,
		MaxShapes:   cfg.MaxShapes,
	})
	if err != nil {
		renderer.Destroy()
		return err
	}
	defer ctx.Destroy()

	controller := NewController(WallClock{})
	if ic, ok := display.(InputCapable); ok {
		ic.SetController(controller)
	}
	if pc, ok := display.(PauseCapable); ok {
		pc.SetPauseHandler(func() {
			if clock.Paused() {
				ctx.Resume()
			} else {
				ctx.RequestPause()
			}
		})
	}
	if sc, ok := display.(StatsCapable); ok {
		ctx.AddFrameHook(sc.SetStats)
	}

	scene := newScene(cfg, controller)
	defer scene.Close()

	if cfg.Audio.Enabled || cfg.Audio.WavPath != "" {
		cleanup, err := setupAudio(cfg, ctx, scene, logger)
		defer cleanup()
		if err != nil {
			return err
		}
	}

	if err := ctx.InitGfx(GU_PSM_8888, true); err != nil {
		return err
	}
	if err := scene.Init(ctx); err != nil {
		return err
	}

	var control *ControlServer
	if cfg.Control {
		status := newRuntimeStatusStore(cfg.Display, cfg.Renderer, time.Now())
		ctx.AddFrameHook(status.frameHook(ctx.Scheduler()))
		sock := cfg.ControlSocket
		if sock == "" {
			sock = resolveSocketPath()
		}
		control, err = NewControlServer(sock, clock, status)
		if err != nil {
			return err
		}
		control.Start()
		defer control.Stop()
		logger.Info("control socket listening", "path", sock)
	}

	if cfg.StatsView != "" {
		LaunchStatsView(cfg.StatsView, logger)
	}

	if err := display.Start(); err != nil {
		return fmt.Errorf("display start: %w", err)
	}
	defer display.Close()

	var closed <-chan struct{}
	if c, ok := display.(Closer); ok {
		closed = c.Done()
	}

	logger.Info("running",
		"display", cfg.Display,
		"renderer", cfg.Renderer,
		"rate", cfg.FrameRate,
		"frameskip", cfg.FrameSkip,
		"max_skips", cfg.MaxSkips,
		"vsync", cfg.VSync)

	var runErr error
loop:
	for n := uint64(0); cfg.Frames == 0 || n < uint64(cfg.Frames); n++ {
		select {
		case <-closed:
			break loop
		case <-sigCtx.Done():
			break loop
		default:
		}
		if control != nil {
			control.Service(ctx)
		}
		if err := scene.Frame(ctx, n); err != nil {
			runErr = err
			break
		}
		ctx.SyncFrame(cfg.FrameSkip, cfg.MaxSkips, cfg.VSync)
	}
	ctx.EndDrawing()

	if cfg.DumpState != "" {
		if err := ctx.DumpState(cfg.DumpState); err != nil {
			logger.Warn("state dump failed", "error", err)
		}
	}
	logger.Info("stopped", "stats", ctx.Stats())
	if err := display.Stop(); err != nil {
		logger.Warn("display stop failed", "error", err)
	}
	return runErr
}
