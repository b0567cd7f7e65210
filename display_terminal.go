// display_terminal.go - Terminal Display

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
display_terminal.go - Terminal Display

Draws presented frames on a tcell screen with half-block cells: each cell
shows two pixels, the upper one as foreground of '▀' and the lower one as
background. The frame is sampled down to the terminal size and redrawn on
a fixed ticker, independent of the emulated frame rate.

Keys are pulsed into the controller (terminals report no key releases).
P pauses, Esc or Ctrl-C closes.
*/

package main

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
)

const (
	TERMINAL_REDRAW   = 50 * time.Millisecond
	TERMINAL_KEY_HOLD = 150 * time.Millisecond
)

type TerminalOutput struct {
	mu          sync.Mutex
	screen      tcell.Screen
	config      DisplayConfig
	frameBuffer []byte
	dirty       bool
	stats       RenderStats
	controller  *Controller
	pause       func()

	running    atomic.Bool
	frameCount atomic.Uint64
	done       chan struct{}
	closeOnce  sync.Once
}

func NewTerminalOutput() (DisplayOutput, error) {
	cfg := DefaultDisplayConfig()
	return &TerminalOutput{
		config:      cfg,
		frameBuffer: make([]byte, cfg.Width*cfg.Height*4),
		done:        make(chan struct{}),
	}, nil
}

func (t *TerminalOutput) Start() error {
	if t.running.Load() {
		return nil
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return &GuError{Operation: "terminal start", Details: "create screen", Err: err}
	}
	if err := screen.Init(); err != nil {
		return &GuError{Operation: "terminal start", Details: "init screen", Err: err}
	}
	screen.HideCursor()
	screen.Clear()

	t.mu.Lock()
	t.screen = screen
	t.mu.Unlock()
	t.running.Store(true)

	go t.pollEvents(screen)
	go t.redrawLoop()
	return nil
}

func (t *TerminalOutput) Stop() error {
	if !t.running.CompareAndSwap(true, false) {
		return nil
	}
	t.mu.Lock()
	screen := t.screen
	t.screen = nil
	t.mu.Unlock()
	if screen != nil {
		screen.Fini()
	}
	t.closeOnce.Do(func() { close(t.done) })
	return nil
}

func (t *TerminalOutput) Close() error {
	return t.Stop()
}

func (t *TerminalOutput) Done() <-chan struct{} {
	return t.done
}

func (t *TerminalOutput) IsStarted() bool {
	return t.running.Load()
}

func (t *TerminalOutput) SetDisplayConfig(config DisplayConfig) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if config.Width <= 0 || config.Height <= 0 {
		config.Width, config.Height = t.config.Width, t.config.Height
	}
	t.config = config
	if n := config.Width * config.Height * 4; len(t.frameBuffer) != n {
		t.frameBuffer = make([]byte, n)
	}
	return nil
}

func (t *TerminalOutput) GetDisplayConfig() DisplayConfig {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.config
}

func (t *TerminalOutput) UpdateFrame(buffer []byte) error {
	t.mu.Lock()
	copy(t.frameBuffer, buffer)
	t.dirty = true
	t.mu.Unlock()
	t.frameCount.Add(1)
	return nil
}

func (t *TerminalOutput) GetFrameCount() uint64 {
	return t.frameCount.Load()
}

func (t *TerminalOutput) SetController(c *Controller) {
	t.mu.Lock()
	t.controller = c
	t.mu.Unlock()
}

func (t *TerminalOutput) SetPauseHandler(fn func()) {
	t.mu.Lock()
	t.pause = fn
	t.mu.Unlock()
}

func (t *TerminalOutput) SetStats(stats RenderStats) {
	t.mu.Lock()
	t.stats = stats
	t.mu.Unlock()
}

func (t *TerminalOutput) pollEvents(screen tcell.Screen) {
	for t.running.Load() {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if !t.handleKey(ev) {
				_ = t.Stop()
				return
			}
		case *tcell.EventResize:
			t.mu.Lock()
			t.dirty = true
			t.mu.Unlock()
			screen.Sync()
		}
	}
}

// handleKey returns false when the user asked to quit.
func (t *TerminalOutput) handleKey(ev *tcell.EventKey) bool {
	t.mu.Lock()
	c := t.controller
	pause := t.pause
	t.mu.Unlock()

	var key HostKey
	ok := true
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		key = HostKeyUp
	case tcell.KeyDown:
		key = HostKeyDown
	case tcell.KeyLeft:
		key = HostKeyLeft
	case tcell.KeyRight:
		key = HostKeyRight
	case tcell.KeyEnter:
		key = HostKeyEnter
	case tcell.KeyRune:
		if r := ev.Rune(); r == 'p' || r == 'P' {
			if pause != nil {
				pause()
			}
			return true
		}
		key, ok = hostKeyForRune(ev.Rune())
	default:
		ok = false
	}
	if ok && c != nil {
		c.Pulse(key, TERMINAL_KEY_HOLD)
	}
	return true
}

func (t *TerminalOutput) redrawLoop() {
	ticker := time.NewTicker(TERMINAL_REDRAW)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			t.redraw()
		}
	}
}

func rgbaAt(buf []byte, width, x, y int) tcell.Color {
	i := (y*width + x) * 4
	return tcell.NewRGBColor(int32(buf[i]), int32(buf[i+1]), int32(buf[i+2]))
}

// redraw samples the frame to the terminal and draws a one line status.
func (t *TerminalOutput) redraw() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.screen == nil || !t.dirty {
		return
	}
	t.dirty = false

	cols, rows := t.screen.Size()
	rows-- // status line
	if cols <= 0 || rows <= 0 {
		return
	}
	w, h := t.config.Width, t.config.Height
	for cy := 0; cy < rows; cy++ {
		yTop := (2 * cy) * h / (2 * rows)
		yBottom := (2*cy + 1) * h / (2 * rows)
		for cx := 0; cx < cols; cx++ {
			x := cx * w / cols
			style := tcell.StyleDefault.
				Foreground(rgbaAt(t.frameBuffer, w, x, yTop)).
				Background(rgbaAt(t.frameBuffer, w, x, yBottom))
			t.screen.SetContent(cx, cy, '▀', nil, style)
		}
	}

	status := []rune(t.stats.String())
	statusStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	for cx := 0; cx < cols; cx++ {
		r := ' '
		if cx < len(status) {
			r = status[cx]
		}
		t.screen.SetContent(cx, rows, r, nil, statusStyle)
	}
	t.screen.Show()
}
