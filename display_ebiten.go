//go:build !headless

// display_ebiten.go - Ebiten Desktop Display

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
display_ebiten.go - Ebiten Desktop Display

Shows the presented frames in a window scaled by the configured factor.

  F9   copy a PNG screenshot to the clipboard
  F11  toggle fullscreen
  F12  toggle the stats bar
  P    pause / resume the frame clock

Controller keys are forwarded to the attached Controller.
*/

package main

import (
	"fmt"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

func init() {
	compiledFeatures = append(compiledFeatures, "display:ebiten")
}

type EbitenOutput struct {
	running     atomic.Bool
	window      *ebiten.Image
	width       int
	height      int
	title       string
	fullscreen  bool
	scale       int
	windowedW   int
	windowedH   int
	frameBuffer []byte
	bufferMutex sync.RWMutex
	frameCount  atomic.Uint64
	refreshRate int
	vsyncChan   chan struct{}
	done        chan struct{}

	controller   *Controller
	pauseHandler func()
	stats        RenderStats
	paused       bool

	clipboardOnce sync.Once
	clipboardOK   bool
	showStatusBar bool
	message       string
}

// ebitenKeys maps window keys to controller keys.
var ebitenKeys = []struct {
	key  ebiten.Key
	host HostKey
}{
	{ebiten.KeyArrowUp, HostKeyUp},
	{ebiten.KeyArrowDown, HostKeyDown},
	{ebiten.KeyArrowLeft, HostKeyLeft},
	{ebiten.KeyArrowRight, HostKeyRight},
	{ebiten.KeyDigit0, HostKey0},
	{ebiten.KeyNumpad0, HostKey0},
	{ebiten.KeyDigit1, HostKey1},
	{ebiten.KeyNumpad1, HostKey1},
	{ebiten.KeyDigit2, HostKey2},
	{ebiten.KeyNumpad2, HostKey2},
	{ebiten.KeyDigit3, HostKey3},
	{ebiten.KeyNumpad3, HostKey3},
	{ebiten.KeyDigit4, HostKey4},
	{ebiten.KeyNumpad4, HostKey4},
	{ebiten.KeyDigit5, HostKey5},
	{ebiten.KeyNumpad5, HostKey5},
	{ebiten.KeyDigit6, HostKey6},
	{ebiten.KeyNumpad6, HostKey6},
	{ebiten.KeyEnter, HostKeyEnter},
	{ebiten.KeyNumpadEnter, HostKeyEnter},
	{ebiten.KeyW, HostKeyW},
	{ebiten.KeyA, HostKeyA},
	{ebiten.KeyS, HostKeyS},
	{ebiten.KeyD, HostKeyD},
}

func NewEbitenOutput() (DisplayOutput, error) {
	cfg := DefaultDisplayConfig()
	return &EbitenOutput{
		width:         cfg.Width,
		height:        cfg.Height,
		title:         cfg.Title,
		scale:         cfg.Scale,
		windowedW:     cfg.Width * cfg.Scale,
		windowedH:     cfg.Height * cfg.Scale,
		frameBuffer:   make([]byte, cfg.Width*cfg.Height*4),
		refreshRate:   cfg.RefreshRate,
		vsyncChan:     make(chan struct{}, 1),
		done:          make(chan struct{}),
		showStatusBar: true,
	}, nil
}

func (eo *EbitenOutput) Start() error {
	if eo.running.Load() {
		return nil
	}
	eo.bufferMutex.Lock()
	eo.done = make(chan struct{})
	eo.bufferMutex.Unlock()
	eo.running.Store(true)
	ebiten.SetWindowSize(eo.windowedW, eo.windowedH)
	ebiten.SetWindowTitle(eo.title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)
	if eo.fullscreen {
		ebiten.SetFullscreen(true)
	}

	go func() {
		defer func() {
			eo.running.Store(false)
			eo.bufferMutex.RLock()
			done := eo.done
			eo.bufferMutex.RUnlock()
			select {
			case <-done:
			default:
				close(done)
			}
		}()
		if err := ebiten.RunGame(eo); err != nil {
			fmt.Printf("Ebiten error: %v\n", err)
		}
	}()

	// Wait for first Draw call to ensure Ebiten is ready
	<-eo.vsyncChan
	return nil
}

func (eo *EbitenOutput) Stop() error {
	eo.running.Store(false)
	return nil
}

func (eo *EbitenOutput) Close() error {
	return eo.Stop()
}

func (eo *EbitenOutput) Done() <-chan struct{} {
	eo.bufferMutex.RLock()
	done := eo.done
	eo.bufferMutex.RUnlock()
	return done
}

func (eo *EbitenOutput) IsStarted() bool {
	return eo.running.Load()
}

func (eo *EbitenOutput) UpdateFrame(data []byte) error {
	eo.bufferMutex.Lock()
	copy(eo.frameBuffer, data)
	eo.bufferMutex.Unlock()
	return nil
}

func (eo *EbitenOutput) SetDisplayConfig(config DisplayConfig) error {
	eo.bufferMutex.Lock()
	defer eo.bufferMutex.Unlock()

	if config.Width > 0 {
		eo.width = config.Width
	}
	if config.Height > 0 {
		eo.height = config.Height
	}
	if config.Title != "" {
		eo.title = config.Title
		ebiten.SetWindowTitle(eo.title)
	}
	if config.RefreshRate > 0 {
		eo.refreshRate = config.RefreshRate
	}
	eo.scale = ClampScale(config.Scale)
	if newSize := eo.width * eo.height * 4; len(eo.frameBuffer) != newSize {
		eo.frameBuffer = make([]byte, newSize)
	}

	eo.windowedW = eo.width * eo.scale
	eo.windowedH = eo.height * eo.scale
	eo.fullscreen = config.Fullscreen
	ebiten.SetFullscreen(eo.fullscreen)
	if !eo.fullscreen {
		ebiten.SetWindowSize(eo.windowedW, eo.windowedH)
	}
	if eo.window != nil {
		eo.window.Dispose()
		eo.window = nil
	}
	return nil
}

func (eo *EbitenOutput) GetDisplayConfig() DisplayConfig {
	eo.bufferMutex.RLock()
	defer eo.bufferMutex.RUnlock()
	return DisplayConfig{
		Width:       eo.width,
		Height:      eo.height,
		Scale:       eo.scale,
		RefreshRate: eo.refreshRate,
		Fullscreen:  eo.fullscreen,
		Title:       eo.title,
	}
}

func (eo *EbitenOutput) GetFrameCount() uint64 {
	return eo.frameCount.Load()
}

func (eo *EbitenOutput) SetController(c *Controller) {
	eo.bufferMutex.Lock()
	eo.controller = c
	eo.bufferMutex.Unlock()
}

func (eo *EbitenOutput) SetPauseHandler(fn func()) {
	eo.bufferMutex.Lock()
	eo.pauseHandler = fn
	eo.bufferMutex.Unlock()
}

func (eo *EbitenOutput) SetStats(stats RenderStats) {
	eo.bufferMutex.Lock()
	eo.stats = stats
	eo.bufferMutex.Unlock()
}

func (eo *EbitenOutput) Update() error {
	if ebiten.IsWindowBeingClosed() || !eo.running.Load() {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		eo.bufferMutex.Lock()
		eo.fullscreen = !eo.fullscreen
		ebiten.SetFullscreen(eo.fullscreen)
		if !eo.fullscreen {
			ebiten.SetWindowSize(eo.windowedW, eo.windowedH)
		}
		eo.bufferMutex.Unlock()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		eo.bufferMutex.Lock()
		eo.showStatusBar = !eo.showStatusBar
		eo.bufferMutex.Unlock()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		eo.copyScreenshot()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		eo.bufferMutex.Lock()
		handler := eo.pauseHandler
		eo.paused = !eo.paused
		eo.bufferMutex.Unlock()
		if handler != nil {
			handler()
		}
	}
	eo.handleControllerInput()
	return nil
}

func (eo *EbitenOutput) handleControllerInput() {
	eo.bufferMutex.RLock()
	c := eo.controller
	eo.bufferMutex.RUnlock()
	if c == nil {
		return
	}
	var down [hostKeyCount]bool
	for _, k := range ebitenKeys {
		if ebiten.IsKeyPressed(k.key) {
			down[k.host] = true
		}
	}
	for k := range down {
		c.SetKey(HostKey(k), down[k])
	}
}

// copyScreenshot puts the current frame on the clipboard as PNG.
func (eo *EbitenOutput) copyScreenshot() {
	eo.clipboardOnce.Do(func() {
		eo.clipboardOK = clipboard.Init() == nil
	})
	eo.bufferMutex.RLock()
	pix := append([]byte(nil), eo.frameBuffer...)
	w, h := eo.width, eo.height
	eo.bufferMutex.RUnlock()

	msg := "Screenshot copied"
	if !eo.clipboardOK {
		msg = "Clipboard unavailable"
	} else if data, err := encodePNG(pix, w, h); err != nil {
		msg = err.Error()
	} else {
		clipboard.Write(clipboard.FmtImage, data)
	}
	eo.bufferMutex.Lock()
	eo.message = msg
	eo.bufferMutex.Unlock()
}

func (eo *EbitenOutput) Draw(screen *ebiten.Image) {
	if eo.window == nil {
		eo.window = ebiten.NewImage(eo.width, eo.height)
	}

	eo.bufferMutex.RLock()
	eo.window.WritePixels(eo.frameBuffer)
	showStatusBar := eo.showStatusBar
	stats := eo.stats
	paused := eo.paused
	message := eo.message
	eo.bufferMutex.RUnlock()
	screen.DrawImage(eo.window, nil)
	if showStatusBar {
		eo.drawStatsBar(screen, stats, paused, message)
	}

	eo.frameCount.Add(1)
	select {
	case eo.vsyncChan <- struct{}{}:
	default:
	}
}

func (eo *EbitenOutput) Layout(_, _ int) (int, int) {
	return eo.width, eo.height
}

type statusToken struct {
	name    string
	enabled bool
}

func drawStatusLine(screen *ebiten.Image, x, baselineY int, label string, tokens []statusToken) {
	face := basicfont.Face7x13
	labelColor := color.RGBA{190, 190, 190, 255}
	offColor := color.RGBA{120, 120, 120, 255}
	onColor := color.RGBA{0, 220, 90, 255}

	text.Draw(screen, label, face, x, baselineY, labelColor)
	cursorX := x + text.BoundString(face, label).Dx() + 6

	for _, token := range tokens {
		c := offColor
		if token.enabled {
			c = onColor
		}
		text.Draw(screen, token.name, face, cursorX, baselineY, c)
		cursorX += text.BoundString(face, token.name).Dx() + 8
	}
}

// drawStatsBar shows render + skipped = frame times and the scheduler
// state along the bottom edge.
func (eo *EbitenOutput) drawStatsBar(screen *ebiten.Image, s RenderStats, paused bool, message string) {
	barHeight := 31
	if barHeight >= eo.height {
		return
	}
	y := eo.height - barHeight
	ebitenutil.DrawRect(screen, 0, float64(y), float64(eo.width), float64(barHeight), color.RGBA{0, 0, 0, 0x80})

	face := basicfont.Face7x13
	text.Draw(screen, s.String(), face, 6, y+13, color.RGBA{255, 255, 255, 255})

	drawStatusLine(screen, 6, y+26, "SYNC ", []statusToken{
		{name: SchedRunning.String(), enabled: s.State == SchedRunning},
		{name: "|", enabled: false},
		{name: SchedCaughtUp.String(), enabled: s.State == SchedCaughtUp},
		{name: "|", enabled: false},
		{name: SchedBehindSkipping.String(), enabled: s.State == SchedBehindSkipping},
		{name: "|", enabled: false},
		{name: "PAUSED", enabled: paused},
	})

	legend := "F9 Shot  F11 Full  F12 Bar  P Pause"
	if message != "" {
		legend = message
	}
	legendW := text.BoundString(face, legend).Dx()
	legendX := max(eo.width-legendW-6, 6)
	text.Draw(screen, legend, face, legendX, y+13, color.RGBA{160, 160, 160, 255})
}
