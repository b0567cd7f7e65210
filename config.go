// config.go - Host Configuration

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
config.go - Host Configuration

Settings come from an optional YAML file and are overridden by command
line flags. A missing file yields the defaults; an unreadable, oversized
or malformed one is logged and ignored.
*/

package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const maxConfigSize = 1024 * 1024

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

type AudioConfig struct {
	Enabled    bool   `yaml:"enabled"`
	SampleRate int    `yaml:"sample_rate"`
	WavPath    string `yaml:"wav_path"`
}

type Config struct {
	Display    string `yaml:"display"`
	Renderer   string `yaml:"renderer"` // software or opengl
	Scale      int    `yaml:"scale"`
	Fullscreen bool   `yaml:"fullscreen"`

	FrameSkip  int    `yaml:"frameskip"`
	MaxSkips   int    `yaml:"max_skips"`
	VSync      int    `yaml:"vsync"`
	FrameRate  int    `yaml:"frame_rate"`
	ClockMode  string `yaml:"clock_mode"`
	MaxTickGap int64  `yaml:"max_tick_gap"`

	ConstantBlend  bool `yaml:"constant_blend"`
	BlendEquations bool `yaml:"blend_equations"`
	VulkanProbe    bool `yaml:"vulkan_probe"`
	StrictLists    bool `yaml:"strict_lists"`
	MaxShapes      int  `yaml:"max_shapes"`

	Frames    int    `yaml:"frames"` // stop after this many frames; 0 runs until closed
	Script    string `yaml:"script"`
	StatsView string `yaml:"statsview"`
	DumpState string `yaml:"dump_state"`

	Control       bool   `yaml:"control"`
	ControlSocket string `yaml:"control_socket"` // empty uses the runtime dir default

	Log   LogConfig   `yaml:"log"`
	Audio AudioConfig `yaml:"audio"`
}

// DefaultConfig matches the library's own start-up defaults.
func DefaultConfig() Config {
	return Config{
		Display:        DISPLAY_BACKEND_EBITEN,
		Renderer:       "software",
		Scale:          2,
		FrameSkip:      GU_DEFAULT_FRAMESKIP,
		MaxSkips:       GU_DEFAULT_MAX_SKIPS,
		VSync:          GU_DEFAULT_VSYNC,
		FrameRate:      GU_NATIVE_RATE,
		ClockMode:      ClockWall.String(),
		MaxTickGap:     GU_DEFAULT_MAX_GAP,
		ConstantBlend:  true,
		BlendEquations: true,
		Log:            LogConfig{Level: "info", Format: "text"},
		Audio:          AudioConfig{SampleRate: AUDIO_SAMPLE_RATE},
	}
}

// LoadConfigFile overlays the YAML file at path onto base.
func LoadConfigFile(path string, base Config, logger *slog.Logger) Config {
	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to stat config", "path", path, "error", err)
		}
		return base
	}
	if info.Size() > maxConfigSize {
		logger.Warn("config file too large", "path", path, "size", info.Size())
		return base
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("failed to read config", "path", path, "error", err)
		return base
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Warn("failed to parse config", "path", path, "error", err)
		return base
	}
	logger.Info("loaded config", "path", path, "size", info.Size())
	return cfg
}

// configPathFromArgs finds -config before the flag set is built, so the
// file can supply the flag defaults.
func configPathFromArgs(args []string) string {
	for i, a := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !strings.HasPrefix(a, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// ParseConfig builds the configuration from the optional file named by
// -config and the remaining flags.
func ParseConfig(name string, args []string, logger *slog.Logger) (Config, *flag.FlagSet, error) {
	cfg := DefaultConfig()
	configPath := configPathFromArgs(args)
	if configPath != "" {
		cfg = LoadConfigFile(configPath, cfg, logger)
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.String("config", configPath, "YAML configuration file")
	fs.StringVar(&cfg.Display, "display", cfg.Display, "Display backend: ebiten, terminal, headless")
	fs.StringVar(&cfg.Renderer, "renderer", cfg.Renderer, "Renderer: software, opengl")
	fs.IntVar(&cfg.Scale, "scale", cfg.Scale, "Window scale 1-4")
	fs.BoolVar(&cfg.Fullscreen, "fullscreen", cfg.Fullscreen, "Start fullscreen")
	fs.IntVar(&cfg.FrameSkip, "frameskip", cfg.FrameSkip, "Frameskip policy (0 = auto)")
	fs.IntVar(&cfg.MaxSkips, "max-skips", cfg.MaxSkips, "Maximum consecutive skipped frames")
	fs.IntVar(&cfg.VSync, "vsync", cfg.VSync, "VSync flags (1 wait, 4 lock, 8 lookahead, 16 no swap)")
	fs.IntVar(&cfg.FrameRate, "rate", cfg.FrameRate, "Virtual frame rate 1-60")
	fs.StringVar(&cfg.ClockMode, "clock", cfg.ClockMode, "Clock mode: wallclock, counting")
	fs.Int64Var(&cfg.MaxTickGap, "max-gap", cfg.MaxTickGap, "Largest tick gap credited in full")
	fs.BoolVar(&cfg.ConstantBlend, "constant-blend", cfg.ConstantBlend, "Host supports constant blend colours")
	fs.BoolVar(&cfg.BlendEquations, "blend-equations", cfg.BlendEquations, "Host supports blend equations other than add")
	fs.BoolVar(&cfg.VulkanProbe, "vulkan-probe", cfg.VulkanProbe, "Restrict texture formats to those of the Vulkan device")
	fs.BoolVar(&cfg.StrictLists, "strict", cfg.StrictLists, "Reject draws outside Start/Finish")
	fs.IntVar(&cfg.MaxShapes, "max-shapes", cfg.MaxShapes, "Shapes per display list (0 = default)")
	fs.IntVar(&cfg.Frames, "frames", cfg.Frames, "Stop after N frames (0 = until closed)")
	fs.StringVar(&cfg.Script, "script", cfg.Script, "Lua script to run instead of the demo scene")
	fs.StringVar(&cfg.StatsView, "statsview", cfg.StatsView, "Serve runtime statistics on this address")
	fs.StringVar(&cfg.DumpState, "dump-state", cfg.DumpState, "Write a graph of the context state to this .dot file on exit")
	fs.BoolVar(&cfg.Control, "control", cfg.Control, "Accept gu_host ctl commands on a Unix socket")
	fs.StringVar(&cfg.ControlSocket, "control-socket", cfg.ControlSocket, "Control socket path")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "Log format: text, json")
	fs.BoolVar(&cfg.Audio.Enabled, "audio", cfg.Audio.Enabled, "Enable audio output")
	fs.IntVar(&cfg.Audio.SampleRate, "sample-rate", cfg.Audio.SampleRate, "Audio sample rate")
	fs.StringVar(&cfg.Audio.WavPath, "wav", cfg.Audio.WavPath, "Capture mixed audio to this WAV file")

	if err := fs.Parse(args); err != nil {
		return cfg, fs, err
	}
	return cfg, fs, cfg.Validate()
}

// Validate rejects settings the engine cannot run with. Scale is clamped
// rather than rejected.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Display) {
	case DISPLAY_BACKEND_EBITEN, DISPLAY_BACKEND_TERMINAL, DISPLAY_BACKEND_HEADLESS:
	default:
		return fmt.Errorf("config: unknown display %q", c.Display)
	}
	switch strings.ToLower(c.Renderer) {
	case "software", "opengl":
	default:
		return fmt.Errorf("config: unknown renderer %q", c.Renderer)
	}
	if _, ok := ParseClockMode(c.ClockMode); !ok {
		return fmt.Errorf("config: unknown clock mode %q", c.ClockMode)
	}
	if c.FrameRate < 1 || c.FrameRate > GU_NATIVE_RATE {
		return fmt.Errorf("config: frame rate %d outside 1-%d", c.FrameRate, GU_NATIVE_RATE)
	}
	if c.FrameSkip < 0 || c.MaxSkips < 0 || c.VSync < 0 {
		return fmt.Errorf("config: frameskip, max skips and vsync must not be negative")
	}
	if c.MaxTickGap < 1 {
		return fmt.Errorf("config: max tick gap must be at least 1")
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("config: sample rate must be positive")
	}
	c.Scale = ClampScale(c.Scale)
	return nil
}

// HostCaps is the blending capability the renderer should report.
func (c *Config) HostCaps() HostCaps {
	return HostCaps{ConstantBlend: c.ConstantBlend, BlendEquations: c.BlendEquations}
}
