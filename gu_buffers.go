// gu_buffers.go - Double-Buffer Manager

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
gu_buffers.go - Double-Buffer Manager

Tracks which VRAM surface is drawn into and which one is shown. In double
buffered mode Swap exchanges the two; in single buffered mode (DispBuffer
with VramNone) the display always shows the draw buffer.
*/

package main

// DoubleBuffer owns the draw and display surfaces.
type DoubleBuffer struct {
	vram    *VRAM
	draw    Surface
	display Surface
	double  bool
	swaps   uint64
}

// NewDoubleBuffer creates a single buffered 8888 screen at VRAM offset 0.
func NewDoubleBuffer(vram *VRAM) *DoubleBuffer {
	s := Surface{Format: GU_PSM_8888, Stride: GU_BUFFER_WIDTH, Width: GU_SCREEN_WIDTH, Height: GU_SCREEN_HEIGHT}
	return &DoubleBuffer{vram: vram, draw: s, display: s}
}

// DrawBuffer sets the surface rendered into.
func (b *DoubleBuffer) DrawBuffer(psm int, ptr VramPtr, stride int) error {
	s := Surface{Ptr: ptr, Format: psm, Stride: stride, Width: GU_SCREEN_WIDTH, Height: GU_SCREEN_HEIGHT}
	if !b.vram.Contains(s) {
		return guErr("draw buffer", ErrBadBuffer, "%v", s)
	}
	b.draw = s
	if !b.double {
		b.display = s
	} else {
		b.display.Format = psm
	}
	return nil
}

// DispBuffer sets the surface shown on screen. VramNone selects single
// buffering.
func (b *DoubleBuffer) DispBuffer(width, height int, ptr VramPtr, stride int) error {
	if ptr == VramNone {
		b.double = false
		b.display = b.draw
		return nil
	}
	s := Surface{Ptr: ptr, Format: b.draw.Format, Stride: stride, Width: width, Height: height}
	if !b.vram.Contains(s) {
		return guErr("display buffer", ErrBadBuffer, "%v", s)
	}
	b.display = s
	b.double = true
	return nil
}

// Swap presents the draw buffer and returns the new draw target.
func (b *DoubleBuffer) Swap() Surface {
	if b.double {
		b.draw, b.display = b.display, b.draw
	} else {
		b.display = b.draw
	}
	b.swaps++
	return b.draw
}

// DrawTarget is the surface draws currently go to.
func (b *DoubleBuffer) DrawTarget() Surface {
	return b.draw
}

// Display is the surface currently shown.
func (b *DoubleBuffer) Display() Surface {
	return b.display
}

// IsDouble reports double buffered mode.
func (b *DoubleBuffer) IsDouble() bool {
	return b.double
}

// Swaps counts presented frames.
func (b *DoubleBuffer) Swaps() uint64 {
	return b.swaps
}
