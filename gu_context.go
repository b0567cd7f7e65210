// gu_context.go - GU Context

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
gu_context.go - GU Context

GuContext is the sceGu style immediate-mode API. It owns the emulated VRAM,
the render state, the texture cache, the double buffer and the frame
scheduler, and forwards decoded draws to a HostRenderer.

All calls come from one goroutine. WaitVSync and SyncFrame are the only
calls that block. While the scheduler is skipping a frame, draws,
texture binds, palette loads and list barriers are ignored.

With strict lists enabled, drawing outside a Start/Finish pair is
rejected with ErrNotDrawing.
*/

package main

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log/slog"
)

// ContextOptions configures a GuContext.
type ContextOptions struct {
	Renderer    HostRenderer
	VRAM        *VRAM          // nil allocates GU_VRAM_SIZE bytes
	Clock       *FrameClock    // nil uses the wall clock
	Display     DisplayOutput  // nil disables presentation
	Logger      *slog.Logger   // nil uses slog.Default
	StrictLists bool           // reject draws outside Start/Finish
	MaxShapes   int            // per display list; 0 uses GU_MAX_SHAPES_PER_LIST
	OnFrame     []func(RenderStats)
}

// GuContext is the emulated graphics context.
type GuContext struct {
	logger    *slog.Logger
	vram      *VRAM
	renderer  HostRenderer
	display   DisplayOutput
	state     *RenderState
	textures  *TextureCache
	buffers   *DoubleBuffer
	clock     *FrameClock
	scheduler *FrameScheduler
	assembler PrimitiveAssembler

	strict    bool
	maxShapes int
	listOpen  bool
	drawing   bool

	texFormat  int
	clutFormat int
	alphaCoeff uint32 // shape colours are pre-multiplied by the alpha effect

	// Per list and per frame counters
	listShapes  int
	frameShapes int
	frameDraws  int
	frames      uint64

	readback []byte
	onFrame  []func(RenderStats)
}

// NewGuContext creates a context and initializes the renderer on an 8888
// single buffered screen at VRAM offset 0.
func NewGuContext(opts ContextOptions) (*GuContext, error) {
	if opts.Renderer == nil {
		return nil, guErr("init", ErrNoRenderer, "no host renderer")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	vram := opts.VRAM
	if vram == nil {
		vram = NewVRAM(GU_VRAM_SIZE)
	}
	clock := opts.Clock
	if clock == nil {
		clock = NewFrameClock(WallClock{}, logger)
	}
	maxShapes := opts.MaxShapes
	if maxShapes <= 0 {
		maxShapes = GU_MAX_SHAPES_PER_LIST
	}

	if err := opts.Renderer.Init(GU_SCREEN_WIDTH, GU_SCREEN_HEIGHT); err != nil {
		return nil, fmt.Errorf("renderer init: %w", err)
	}

	ctx := &GuContext{
		logger:     logger,
		vram:       vram,
		renderer:   opts.Renderer,
		display:    opts.Display,
		state:      NewRenderState(opts.Renderer.Caps(), logger),
		textures:   NewTextureCache(logger),
		buffers:    NewDoubleBuffer(vram),
		clock:      clock,
		strict:     opts.StrictLists,
		maxShapes:  maxShapes,
		texFormat:  GU_PSM_8888,
		clutFormat: GU_PSM_8888,
		alphaCoeff: 0xFFFFFFFF,
		onFrame:    opts.OnFrame,
	}
	ctx.scheduler = NewFrameScheduler(clock, ctx.SwapBuffers, logger)
	if err := ctx.retarget(); err != nil {
		return nil, err
	}
	return ctx, nil
}

// State exposes the render state.
func (ctx *GuContext) State() *RenderState { return ctx.state }

// Textures exposes the texture cache.
func (ctx *GuContext) Textures() *TextureCache { return ctx.textures }

// Buffers exposes the double-buffer manager.
func (ctx *GuContext) Buffers() *DoubleBuffer { return ctx.buffers }

// Clock exposes the frame clock.
func (ctx *GuContext) Clock() *FrameClock { return ctx.clock }

// Scheduler exposes the frame scheduler.
func (ctx *GuContext) Scheduler() *FrameScheduler { return ctx.scheduler }

// VRAM exposes video memory.
func (ctx *GuContext) VRAM() *VRAM { return ctx.vram }

// Renderer returns the host renderer.
func (ctx *GuContext) Renderer() HostRenderer { return ctx.renderer }

// AddFrameHook registers a function called after every present.
func (ctx *GuContext) AddFrameHook(fn func(RenderStats)) {
	ctx.onFrame = append(ctx.onFrame, fn)
}

// skipping reports whether the current frame is dropped.
func (ctx *GuContext) skipping() bool {
	return ctx.scheduler.Skipping()
}

// retarget points the renderer at the current draw buffer.
func (ctx *GuContext) retarget() error {
	if err := ctx.renderer.SetDrawTarget(ctx.buffers.DrawTarget()); err != nil {
		return fmt.Errorf("retarget: %w", err)
	}
	ctx.state.Invalidate()
	return nil
}

// ===== Drawing =====

// DrawArray decodes count vertices and draws them as prim.
func (ctx *GuContext) DrawArray(prim int, vtype uint32, count int, indices, vertices []byte) error {
	if ctx.skipping() {
		return nil
	}
	if ctx.strict && !ctx.listOpen {
		return guErr("draw array", ErrNotDrawing, "primitive %d", prim)
	}
	desc, err := ParseVertexType(vtype)
	if err != nil {
		return guErr("draw array", err, "vertex type %#x", vtype)
	}

	ctx.assembler.TexW, ctx.assembler.TexH = ctx.textures.LogicalSize()
	ctx.assembler.Shade = ctx.state.Shade

	shapes, err := ctx.assembler.Assemble(prim, desc, count, indices, vertices)
	if err != nil {
		return err
	}
	if ctx.listShapes+len(shapes) > ctx.maxShapes {
		return guErr("draw array", ErrCommandOverflow, "%d shapes in list, limit %d", ctx.listShapes+len(shapes), ctx.maxShapes)
	}

	// Only a draw that will reach the renderer may upload
	if ctx.state.Enabled(GU_TEXTURE_2D) {
		if _, err := ctx.textures.UploadIfNeeded(ctx.renderer); err != nil {
			return err
		}
	}

	if ctx.state.Dirty() {
		ctx.renderer.ApplyState(ctx.state.Host())
		ctx.state.MarkApplied()
	}
	for _, shape := range shapes {
		if err := ctx.renderer.DrawShape(shape); err != nil {
			return fmt.Errorf("draw %s: %w", shape.Kind, err)
		}
	}
	ctx.listShapes += len(shapes)
	ctx.frameShapes += len(shapes)
	ctx.frameDraws++
	return nil
}

// Clear fills the draw buffer with the clear colour.
func (ctx *GuContext) Clear(flags int) {
	if ctx.skipping() {
		return
	}
	if ctx.state.Dirty() {
		ctx.renderer.ApplyState(ctx.state.Host())
		ctx.state.MarkApplied()
	}
	ctx.renderer.Clear(flags, ctx.state.ClearColor)
}

// ===== Textures =====

// TexMode selects the pixel format of the next TexImage. Mipmaps and
// swizzling are not emulated.
func (ctx *GuContext) TexMode(psm, maxMips, swizzle int) {
	if !isDirectFormat(psm) && !isIndexedFormat(psm) {
		ctx.logger.Warn("unsupported texture format", "op", "tex mode", "format", psm)
		return
	}
	if swizzle != 0 {
		ctx.logger.Debug("swizzled textures are read linearly", "op", "tex mode")
	}
	ctx.texFormat = psm
}

// TexImage binds a texture. Only level 0 is used.
func (ctx *GuContext) TexImage(mip, width, height, tbw int, src []byte) error {
	if ctx.skipping() {
		return nil
	}
	if mip != 0 {
		return nil
	}
	return ctx.textures.Bind(TextureBinding{
		Format:      ctx.texFormat,
		Width:       width,
		Height:      height,
		BufferWidth: tbw,
		Source:      src,
	})
}

// ClutMode selects the entry format of the next ClutLoad.
func (ctx *GuContext) ClutMode(cpsm int) {
	if err := ctx.textures.SetPaletteFormat(cpsm); err != nil {
		ctx.logger.Warn("unsupported palette format", "op", "clut mode", "format", cpsm)
		return
	}
	ctx.clutFormat = cpsm
}

// ClutLoad loads blocks of 8 palette entries.
func (ctx *GuContext) ClutLoad(blocks int, src []byte) error {
	if ctx.skipping() {
		return nil
	}
	return ctx.textures.LoadPalette(blocks, src)
}

// TexWrap selects repeat or clamp per axis.
func (ctx *GuContext) TexWrap(u, v int) { ctx.state.TexWrap(u, v) }

// TexFilter selects nearest or linear sampling.
func (ctx *GuContext) TexFilter(minFilter, magFilter int) { ctx.state.TexFilter(minFilter, magFilter) }

// ===== Render state =====

// BlendFunc sets the blend equation and factors.
func (ctx *GuContext) BlendFunc(op, src, dst int, srcFix, dstFix uint32) {
	ctx.state.SetCaps(ctx.renderer.Caps())
	ctx.state.BlendFunc(op, src, dst, srcFix, dstFix)
}

// AmbientColor sets the colour textured vertices are modulated by.
func (ctx *GuContext) AmbientColor(c uint32) { ctx.state.AmbientColor(c) }

// AlphaFunc sets the alpha test.
func (ctx *GuContext) AlphaFunc(fn, ref, mask int) { ctx.state.AlphaFunc(fn, ref, mask) }

// Scissor sets the clip rectangle corners.
func (ctx *GuContext) Scissor(x0, y0, x1, y1 int) { ctx.state.Scissor(x0, y0, x1, y1) }

// Enable turns on a state switch.
func (ctx *GuContext) Enable(state int) { ctx.state.Enable(state) }

// Disable turns off a state switch.
func (ctx *GuContext) Disable(state int) { ctx.state.Disable(state) }

// ShadeModel selects flat or smooth shading.
func (ctx *GuContext) ShadeModel(mode int) { ctx.state.SetShadeModel(mode) }

// ClearColor sets the colour used by Clear.
func (ctx *GuContext) ClearColor(c uint32) { ctx.state.SetClearColor(c) }

// ===== Display lists =====

// Start opens a display list.
func (ctx *GuContext) Start() {
	if ctx.skipping() {
		return
	}
	ctx.listOpen = true
	ctx.listShapes = 0
}

// Finish closes the display list and flushes the host.
func (ctx *GuContext) Finish() error {
	if ctx.skipping() {
		return nil
	}
	if ctx.strict && !ctx.listOpen {
		return guErr("finish", ErrNotDrawing, "no list to finish")
	}
	ctx.listOpen = false
	if err := ctx.renderer.Flush(); err != nil {
		return fmt.Errorf("finish: %w", err)
	}
	return nil
}

// Sync waits for the host to complete queued work.
func (ctx *GuContext) Sync() error {
	if ctx.skipping() {
		return nil
	}
	if err := ctx.renderer.Flush(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	return nil
}

// ===== Buffers and timing =====

// DrawBuffer sets the draw surface.
func (ctx *GuContext) DrawBuffer(psm int, ptr VramPtr, stride int) error {
	if err := ctx.buffers.DrawBuffer(psm, ptr, stride); err != nil {
		return err
	}
	return ctx.retarget()
}

// DispBuffer sets the display surface; VramNone selects single buffering.
func (ctx *GuContext) DispBuffer(width, height int, ptr VramPtr, stride int) error {
	return ctx.buffers.DispBuffer(width, height, ptr, stride)
}

// SwapBuffers presents the draw buffer and retargets the renderer.
func (ctx *GuContext) SwapBuffers() error {
	if err := ctx.renderer.Flush(); err != nil {
		return fmt.Errorf("swap buffers: %w", err)
	}
	ctx.buffers.Swap()
	shown := ctx.buffers.Display()
	if err := ctx.renderer.Present(shown); err != nil {
		return fmt.Errorf("swap buffers: %w", err)
	}
	if err := ctx.retarget(); err != nil {
		return err
	}
	if ctx.display != nil {
		pix, err := ctx.ReadPixels(shown)
		if err != nil {
			return err
		}
		if err := ctx.display.UpdateFrame(pix); err != nil {
			return fmt.Errorf("swap buffers: %w", err)
		}
	}

	ctx.frames++
	stats := ctx.Stats()
	for _, fn := range ctx.onFrame {
		fn(stats)
	}
	ctx.frameShapes = 0
	ctx.frameDraws = 0
	return nil
}

// WaitVSync blocks until the next vblank and counts it.
func (ctx *GuContext) WaitVSync() {
	ctx.clock.WaitForNextTick()
	ctx.clock.Tick()
}

// SyncFrame ends a logical frame: paces, presents and reports whether the
// next frame is skipped. An open drawing session is closed around the
// decision and reopened.
func (ctx *GuContext) SyncFrame(frameskip, maxSkips, vsync int) bool {
	wasDrawing := ctx.drawing
	if wasDrawing {
		ctx.EndDrawing()
	}
	skip := ctx.scheduler.SyncFrame(frameskip, maxSkips, vsync)
	if wasDrawing {
		ctx.StartDrawing()
	}
	return skip
}

// RequestPause pauses at the next vblank.
func (ctx *GuContext) RequestPause() { ctx.clock.RequestPause() }

// Resume ends a pause.
func (ctx *GuContext) Resume() { ctx.clock.Resume() }

// ===== Readback =====

// ReadPixels returns a surface as RGBA bytes, top row first. The slice is
// reused by the next call.
func (ctx *GuContext) ReadPixels(s Surface) ([]byte, error) {
	n := s.Width * s.Height * 4
	if cap(ctx.readback) < n {
		ctx.readback = make([]byte, n)
	}
	ctx.readback = ctx.readback[:n]
	if err := ctx.renderer.ReadPixels(s, ctx.readback); err != nil {
		return nil, fmt.Errorf("read pixels: %w", err)
	}
	return ctx.readback, nil
}

// Screenshot encodes the display buffer as PNG.
func (ctx *GuContext) Screenshot() ([]byte, error) {
	s := ctx.buffers.Display()
	pix, err := ctx.ReadPixels(s)
	if err != nil {
		return nil, err
	}
	return encodePNG(pix, s.Width, s.Height)
}

// encodePNG encodes RGBA bytes with alpha forced opaque.
func encodePNG(pix []byte, width, height int) ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, pix)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xFF
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Stats summarizes the frame in progress.
func (ctx *GuContext) Stats() RenderStats {
	bench := ctx.scheduler.Bench()
	return RenderStats{
		Frame:        ctx.frames,
		VirtualTicks: ctx.clock.Count(),
		Shapes:       ctx.frameShapes,
		Draws:        ctx.frameDraws,
		Uploads:      ctx.textures.Uploads,
		CacheHits:    ctx.textures.Hits,
		Skipped:      ctx.scheduler.SkipTotal,
		State:        ctx.scheduler.State(),
		Render:       bench.Mean(BENCH_RENDER),
		SkippedTime:  bench.Mean(BENCH_SKIPPED),
		FrameTime:    bench.Mean(BENCH_FRAME),
	}
}

// Destroy releases host resources.
func (ctx *GuContext) Destroy() {
	ctx.renderer.Destroy()
	ctx.textures.Invalidate()
}
