// gu_drawing.go - Drawing Session Helpers

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
gu_drawing.go - Drawing Session Helpers

Convenience layer over GuContext in the style of a 2D game library:
screen initialization with sensible defaults, a drawing session flag that
makes Start/Finish idempotent, alpha effects mapped onto blend state, and
textured tile drawing.
*/

package main

import "encoding/binary"

// InitGfx sets up a 480x272 screen with the draw buffer at VRAM offset 0
// and, when double buffered, the display buffer right after it. It leaves
// a drawing session open.
func (ctx *GuContext) InitGfx(psm int, doubleBuffer bool) error {
	if psm != GU_PSM_8888 && psm != GU_PSM_5650 && psm != GU_PSM_5551 && psm != GU_PSM_4444 {
		return guErr("init gfx", ErrBadPixelFormat, "format %d", psm)
	}
	ctx.EndDrawing()
	ctx.Start()

	if err := ctx.DrawBuffer(psm, 0, GU_BUFFER_WIDTH); err != nil {
		return err
	}
	disp := VramNone
	if doubleBuffer {
		disp = VramPtr(GU_FRAME_PIXELS * PixelBits(psm) / 8)
	}
	if err := ctx.DispBuffer(GU_SCREEN_WIDTH, GU_SCREEN_HEIGHT, disp, GU_BUFFER_WIDTH); err != nil {
		return err
	}

	ctx.Scissor(0, 0, GU_SCREEN_WIDTH, GU_SCREEN_HEIGHT)
	ctx.Enable(GU_SCISSOR_TEST)
	ctx.Disable(GU_DEPTH_TEST)
	ctx.ShadeModel(GU_SMOOTH)
	ctx.Enable(GU_CULL_FACE)
	ctx.Enable(GU_CLIP_PLANES)
	ctx.Enable(GU_BLEND)
	ctx.BlendFunc(GU_ADD, GU_SRC_ALPHA, GU_ONE_MINUS_SRC_ALPHA, 0, 0)
	ctx.Enable(GU_TEXTURE_2D)
	ctx.Disable(GU_ALPHA_TEST)
	ctx.Disable(GU_DITHER)
	ctx.TexFilter(GU_NEAREST, GU_NEAREST)
	ctx.TexWrap(GU_REPEAT, GU_REPEAT)

	if err := ctx.Finish(); err != nil {
		return err
	}
	if err := ctx.Sync(); err != nil {
		return err
	}

	ctx.StartDrawing()
	ctx.SetAlpha(FX_RGBA, 0)
	ctx.logger.Info("graphics initialized", "op", "init gfx", "format", psm, "double_buffer", doubleBuffer)
	return nil
}

// StartDrawing opens a drawing session unless one is open.
func (ctx *GuContext) StartDrawing() {
	if ctx.drawing {
		return
	}
	ctx.drawing = true
	ctx.Start()
	ctx.SetAlpha(FX_RGBA, 0xFF)
}

// EndDrawing closes the drawing session, finishing and syncing the list.
func (ctx *GuContext) EndDrawing() {
	if !ctx.drawing {
		return
	}
	if err := ctx.Finish(); err != nil {
		ctx.logger.Warn("finish failed", "op", "end drawing", "err", err)
	}
	if err := ctx.Sync(); err != nil {
		ctx.logger.Warn("sync failed", "op", "end drawing", "err", err)
	}
	ctx.drawing = false
}

// SyncDrawing flushes the open session and starts a new list.
func (ctx *GuContext) SyncDrawing() {
	if !ctx.drawing {
		return
	}
	if err := ctx.Finish(); err != nil {
		ctx.logger.Warn("finish failed", "op", "sync drawing", "err", err)
	}
	if err := ctx.Sync(); err != nil {
		ctx.logger.Warn("sync failed", "op", "sync drawing", "err", err)
	}
	ctx.Start()
}

// IsDrawing reports an open drawing session.
func (ctx *GuContext) IsDrawing() bool {
	return ctx.drawing
}

// SetAlpha selects an alpha effect with the destination coefficient at
// full white.
func (ctx *GuContext) SetAlpha(effect int, coeff1 uint32) {
	ctx.SetAlpha2(effect, coeff1, 0xFFFFFFFF)
}

// SetAlpha2 maps an alpha effect onto blend state and ambient colour.
// Without FX_COLOR, coeff1 is an alpha value applied over white.
func (ctx *GuContext) SetAlpha2(effect int, coeff1, coeff2 uint32) {
	if effect <= FX_NONE {
		ctx.alphaCoeff = 0xFFFFFFFF
		ctx.Disable(GU_BLEND)
		return
	}
	fx := effect &^ FX_COLOR
	if fx == FX_RGBA {
		ctx.BlendFunc(GU_ADD, GU_SRC_ALPHA, GU_ONE_MINUS_SRC_ALPHA, 0, 0)
		ctx.AmbientColor(0xFFFFFFFF)
		ctx.alphaCoeff = 0xFFFFFFFF
		ctx.Enable(GU_BLEND)
		return
	}
	if effect&FX_COLOR == 0 {
		coeff1 = coeff1<<24 | 0xFFFFFF
	}
	// Other effects keep the previous blend state and coefficient.
	switch fx {
	case FX_ALPHA:
		ctx.BlendFunc(GU_ADD, GU_SRC_ALPHA, GU_ONE_MINUS_SRC_ALPHA, 0, 0)
		ctx.AmbientColor(coeff1)
		ctx.alphaCoeff = coeff1
	case FX_ADD:
		ctx.BlendFunc(GU_ADD, GU_SRC_ALPHA, GU_FIX, 0, coeff2)
		ctx.AmbientColor(coeff1)
		ctx.alphaCoeff = coeff1
	case FX_SUB:
		ctx.BlendFunc(GU_REVERSE_SUBTRACT, GU_SRC_ALPHA, GU_FIX, 0, coeff2)
		ctx.AmbientColor(coeff1)
		ctx.alphaCoeff = coeff1
	}
	ctx.Enable(GU_BLEND)
}

// ClearScreen fills the draw buffer with a colour.
func (ctx *GuContext) ClearScreen(color uint32) {
	ctx.ClearColor(color)
	ctx.Clear(GU_COLOR_BUFFER_BIT)
}

// SetScreenClipping sets and enables the scissor.
func (ctx *GuContext) SetScreenClipping(x0, y0, x1, y1 int) {
	ctx.Scissor(x0, y0, x1, y1)
	ctx.Enable(GU_SCISSOR_TEST)
}

// tileVertexType is the layout DrawTile emits: 16 bit uv and position in
// screen space.
const tileVertexType = GU_TEXTURE_16BIT | GU_VERTEX_16BIT | GU_TRANSFORM_2D

// DrawTile draws a tX by tY texel region starting at u,v of the bound
// texture at x,y.
func (ctx *GuContext) DrawTile(u, v, x, y, tX, tY int) error {
	var buf [20]byte
	putTileVertex(buf[0:], u, v, x, y)
	putTileVertex(buf[10:], u+tX, v+tY, x+tX, y+tY)
	return ctx.DrawArray(GU_SPRITES, tileVertexType, 2, nil, buf[:])
}

func putTileVertex(b []byte, u, v, x, y int) {
	binary.LittleEndian.PutUint16(b[0:], uint16(int16(u)))
	binary.LittleEndian.PutUint16(b[2:], uint16(int16(v)))
	binary.LittleEndian.PutUint16(b[4:], uint16(int16(x)))
	binary.LittleEndian.PutUint16(b[6:], uint16(int16(y)))
	binary.LittleEndian.PutUint16(b[8:], 0)
}
