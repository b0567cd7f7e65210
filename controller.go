// controller.go - Emulated Controller

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
controller.go - Emulated Controller

Collects host key state from the presenters and reports it as controller
data. The host keyboard maps onto the pad as:

  arrows         d-pad
  1 2 3 5        square cross circle triangle (top row or keypad)
  4 6            L and R triggers
  0              select
  Enter          start
  W A S D        analog stick to the edge (centre 128)

Terminals report key presses without releases, so the terminal presenter
uses Pulse, which holds a key for a fixed time.
*/

package main

import (
	"sync"
	"time"
)

// Controller button bits
const (
	CTRL_SELECT   = 0x000001
	CTRL_START    = 0x000008
	CTRL_UP       = 0x000010
	CTRL_RIGHT    = 0x000020
	CTRL_DOWN     = 0x000040
	CTRL_LEFT     = 0x000080
	CTRL_LTRIGGER = 0x000100
	CTRL_RTRIGGER = 0x000200
	CTRL_TRIANGLE = 0x001000
	CTRL_CIRCLE   = 0x002000
	CTRL_CROSS    = 0x004000
	CTRL_SQUARE   = 0x008000

	CTRL_ANALOG_CENTER = 128
	CTRL_ANALOG_MIN    = 0
	CTRL_ANALOG_MAX    = 255
)

// HostKey is a host keyboard key the controller understands.
type HostKey int

const (
	HostKeyUp HostKey = iota
	HostKeyDown
	HostKeyLeft
	HostKeyRight
	HostKey0
	HostKey1
	HostKey2
	HostKey3
	HostKey4
	HostKey5
	HostKey6
	HostKeyEnter
	HostKeyW
	HostKeyA
	HostKeyS
	HostKeyD
	hostKeyCount
)

// keyButtons maps keys to button bits; the analog keys have none.
var keyButtons = [hostKeyCount]uint32{
	HostKeyUp:    CTRL_UP,
	HostKeyDown:  CTRL_DOWN,
	HostKeyLeft:  CTRL_LEFT,
	HostKeyRight: CTRL_RIGHT,
	HostKey0:     CTRL_SELECT,
	HostKey1:     CTRL_SQUARE,
	HostKey2:     CTRL_CROSS,
	HostKey3:     CTRL_CIRCLE,
	HostKey4:     CTRL_LTRIGGER,
	HostKey5:     CTRL_TRIANGLE,
	HostKey6:     CTRL_RTRIGGER,
	HostKeyEnter: CTRL_START,
}

// CtrlData is one controller sample.
type CtrlData struct {
	Buttons uint32
	Lx, Ly  uint8
}

// Pressed reports whether every bit of mask is held.
func (d CtrlData) Pressed(mask uint32) bool {
	return d.Buttons&mask == mask
}

// Controller is written by a presenter goroutine and read by the program.
type Controller struct {
	mu     sync.Mutex
	src    TimeSource
	held   [hostKeyCount]bool
	pulses [hostKeyCount]time.Time
}

// NewController creates a controller; src times pulsed keys.
func NewController(src TimeSource) *Controller {
	if src == nil {
		src = WallClock{}
	}
	return &Controller{src: src}
}

// SetKey records a key press or release.
func (c *Controller) SetKey(k HostKey, down bool) {
	if k < 0 || k >= hostKeyCount {
		return
	}
	c.mu.Lock()
	c.held[k] = down
	c.mu.Unlock()
}

// Pulse holds a key for d.
func (c *Controller) Pulse(k HostKey, d time.Duration) {
	if k < 0 || k >= hostKeyCount {
		return
	}
	c.mu.Lock()
	c.pulses[k] = c.src.Now().Add(d)
	c.mu.Unlock()
}

// Release lets go of every key.
func (c *Controller) Release() {
	c.mu.Lock()
	c.held = [hostKeyCount]bool{}
	c.pulses = [hostKeyCount]time.Time{}
	c.mu.Unlock()
}

// PeekBuffer samples the controller without consuming anything.
func (c *Controller) PeekBuffer() CtrlData {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.src.Now()
	var down [hostKeyCount]bool
	for k := range down {
		down[k] = c.held[k] || now.Before(c.pulses[k])
	}

	d := CtrlData{Lx: CTRL_ANALOG_CENTER, Ly: CTRL_ANALOG_CENTER}
	for k, bit := range keyButtons {
		if down[k] {
			d.Buttons |= bit
		}
	}
	if down[HostKeyA] {
		d.Lx = CTRL_ANALOG_MIN
	}
	if down[HostKeyD] {
		d.Lx = CTRL_ANALOG_MAX
	}
	if down[HostKeyW] {
		d.Ly = CTRL_ANALOG_MIN
	}
	if down[HostKeyS] {
		d.Ly = CTRL_ANALOG_MAX
	}
	return d
}

// hostKeyForRune maps typed characters, used by the terminal presenter.
func hostKeyForRune(r rune) (HostKey, bool) {
	switch r {
	case '0':
		return HostKey0, true
	case '1':
		return HostKey1, true
	case '2':
		return HostKey2, true
	case '3':
		return HostKey3, true
	case '4':
		return HostKey4, true
	case '5':
		return HostKey5, true
	case '6':
		return HostKey6, true
	case 'w', 'W':
		return HostKeyW, true
	case 'a', 'A':
		return HostKeyA, true
	case 's', 'S':
		return HostKeyS, true
	case 'd', 'D':
		return HostKeyD, true
	}
	return 0, false
}
