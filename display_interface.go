// display_interface.go - Display Output Interface

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
display_interface.go - Display Output Interface

A DisplayOutput shows the frames the GU context presents. Frames arrive as
RGBA bytes, top row first, at the configured size. Backends:

  ebiten    desktop window (stats bar, fullscreen, screenshots, pause)
  terminal  half-block rendering on a tcell screen
  headless  counts frames, keeps the last one
*/

package main

import (
	"fmt"
	"strings"
)

// DisplayConfig contains backend-independent configuration.
type DisplayConfig struct {
	Width       int
	Height      int
	Scale       int // Integer scaling factor for output
	RefreshRate int
	Fullscreen  bool
	Title       string
}

// DefaultDisplayConfig is the native screen at scale 2.
func DefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{
		Width:       GU_SCREEN_WIDTH,
		Height:      GU_SCREEN_HEIGHT,
		Scale:       2,
		RefreshRate: GU_NATIVE_RATE,
		Title:       "GU Host",
	}
}

// DisplayOutput defines the minimal interface that backends must implement.
type DisplayOutput interface {
	// Lifecycle management
	Start() error
	Stop() error
	Close() error
	IsStarted() bool

	SetDisplayConfig(config DisplayConfig) error
	GetDisplayConfig() DisplayConfig
	UpdateFrame(buffer []byte) error // RGBA pixels

	GetFrameCount() uint64
}

// Optional interfaces for interactive backends

// InputCapable backends feed a controller.
type InputCapable interface {
	SetController(c *Controller)
}

// StatsCapable backends show per-frame statistics.
type StatsCapable interface {
	SetStats(stats RenderStats)
}

// PauseCapable backends toggle the frame clock pause.
type PauseCapable interface {
	SetPauseHandler(fn func())
}

// Closer backends report when the user closed the window.
type Closer interface {
	Done() <-chan struct{}
}

// Display backend names
const (
	DISPLAY_BACKEND_EBITEN   = "ebiten"
	DISPLAY_BACKEND_TERMINAL = "terminal"
	DISPLAY_BACKEND_HEADLESS = "headless"
)

// NewDisplayOutput creates a display backend by name.
func NewDisplayOutput(backend string) (DisplayOutput, error) {
	switch strings.ToLower(backend) {
	case DISPLAY_BACKEND_EBITEN, "":
		return NewEbitenOutput()
	case DISPLAY_BACKEND_TERMINAL:
		return NewTerminalOutput()
	case DISPLAY_BACKEND_HEADLESS:
		return NewHeadlessOutput(), nil
	}
	return nil, &GuError{
		Operation: "display backend",
		Details:   fmt.Sprintf("unknown backend %q", backend),
		Err:       ErrNoRenderer,
	}
}

// ClampScale keeps the window scale in 1..4.
func ClampScale(scale int) int {
	return min(max(scale, 1), 4)
}
