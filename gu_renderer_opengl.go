//go:build opengl

// gu_renderer_opengl.go - OpenGL 2.1 Backend for the GU Emulator

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
gu_renderer_opengl.go - OpenGL 2.1 Backend for the GU Emulator

Draws with the fixed-function pipeline into the back buffer of a hidden
SDL window. The back buffer mirrors the current draw target: selecting a
target uploads its VRAM contents, and Flush reads the rendered pixels
back into VRAM so the display path and screenshots see them.

GL calls are only legal on the thread that created the context, so the
renderer locks its creating goroutine to the OS thread and must be used
from that goroutine.
*/

package main

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	compiledFeatures = append(compiledFeatures, "renderer:opengl")
}

const GL_SURFACE_SIZE = 512

type glTexture struct {
	id            uint32
	width, height int
	logicalW      int
	logicalH      int
}

// GLRenderer implements HostRenderer with OpenGL 2.1.
type GLRenderer struct {
	mutex  sync.Mutex
	vram   *VRAM
	logger *slog.Logger

	window  *sdl.Window
	context sdl.GLContext

	width, height int
	target        Surface
	state         HostState
	textures      [GU_TEXTURE_SLOTS]glTexture
	bound         int
	dirty         bool // back buffer holds pixels not yet stored in VRAM
	scratch       []byte
}

// NewGLRenderer opens a hidden window with a 2.1 context.
func NewGLRenderer(vram *VRAM, logger *slog.Logger) (HostRenderer, error) {
	runtime.LockOSThread()

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("sdl: %w", err)
	}
	for attr, v := range map[sdl.GLattr]int{
		sdl.GL_CONTEXT_MAJOR_VERSION: 2,
		sdl.GL_CONTEXT_MINOR_VERSION: 1,
	} {
		if err := sdl.GLSetAttribute(attr, v); err != nil {
			sdl.Quit()
			return nil, fmt.Errorf("sdl: %w", err)
		}
	}
	window, err := sdl.CreateWindow("gu-host", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		GL_SURFACE_SIZE, GL_SURFACE_SIZE, sdl.WINDOW_OPENGL|sdl.WINDOW_HIDDEN)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("sdl: %w", err)
	}
	glContext, err := window.GLCreateContext()
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sdl: %w", err)
	}
	if err := gl.Init(); err != nil {
		sdl.GLDeleteContext(glContext)
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("gl21: %w", err)
	}

	logger.Info("opengl renderer",
		"vendor", gl.GoStr(gl.GetString(gl.VENDOR)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
		"driver", gl.GoStr(gl.GetString(gl.VERSION)))

	r := &GLRenderer{
		vram:    vram,
		logger:  logger,
		window:  window,
		context: glContext,
		bound:   -1,
		scratch: make([]byte, GL_SURFACE_SIZE*GL_SURFACE_SIZE*4),
	}
	for i := range r.textures {
		gl.GenTextures(1, &r.textures[i].id)
	}
	return r, nil
}

func (r *GLRenderer) Init(width, height int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.width, r.height = width, height
	gl.Viewport(0, 0, GL_SURFACE_SIZE, GL_SURFACE_SIZE)
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadIdentity()
	// y grows downward from the top of the surface
	gl.Ortho(0, GL_SURFACE_SIZE, GL_SURFACE_SIZE, 0, -1, 1)
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()
	gl.TexEnvi(gl.TEXTURE_ENV, gl.TEXTURE_ENV_MODE, gl.MODULATE)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	return nil
}

// Caps reports full blending support: constant colours and all equations
// are core in 2.1.
func (r *GLRenderer) Caps() HostCaps {
	return HostCaps{ConstantBlend: true, BlendEquations: true}
}

func (r *GLRenderer) SetDrawTarget(target Surface) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.vram.Contains(target) || target.Width > GL_SURFACE_SIZE || target.Height > GL_SURFACE_SIZE {
		return guErr("set draw target", ErrBadBuffer, "%v", target)
	}
	if target == r.target {
		return nil
	}
	r.resolve()
	r.target = target
	r.load()
	return nil
}

// load copies the draw target from VRAM into the back buffer.
func (r *GLRenderer) load() {
	s := r.target
	n := s.Width * s.Height * 4
	surfaceToRGBA(r.vram.Bytes(), s, r.scratch[:n])
	flipRows(r.scratch[:n], s.Width*4)

	gl.PushAttrib(gl.ENABLE_BIT)
	gl.Disable(gl.BLEND)
	gl.Disable(gl.ALPHA_TEST)
	gl.Disable(gl.SCISSOR_TEST)
	gl.Disable(gl.TEXTURE_2D)
	gl.WindowPos2i(0, int32(GL_SURFACE_SIZE-s.Height))
	gl.DrawPixels(int32(s.Width), int32(s.Height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(r.scratch))
	gl.PopAttrib()
}

// resolve stores the back buffer into the draw target.
func (r *GLRenderer) resolve() {
	if !r.dirty || r.target.Width == 0 {
		return
	}
	s := r.target
	n := s.Width * s.Height * 4
	gl.ReadPixels(0, int32(GL_SURFACE_SIZE-s.Height), int32(s.Width), int32(s.Height),
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(r.scratch))
	flipRows(r.scratch[:n], s.Width*4)
	rgbaToSurface(r.scratch[:n], r.vram.Bytes(), s)
	r.dirty = false
}

// flipRows reverses the row order of a packed image in place.
func flipRows(pix []byte, stride int) {
	rows := len(pix) / stride
	tmp := make([]byte, stride)
	for top, bottom := 0, rows-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := pix[top*stride : (top+1)*stride]
		b := pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

func (r *GLRenderer) Present(display Surface) error {
	return r.Flush()
}

func (r *GLRenderer) ReadPixels(s Surface, dst []byte) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.vram.Contains(s) {
		return guErr("read pixels", ErrBadBuffer, "%v", s)
	}
	if len(dst) < s.Width*s.Height*4 {
		return guErr("read pixels", ErrBadBuffer, "destination holds %d bytes", len(dst))
	}
	r.resolve()
	surfaceToRGBA(r.vram.Bytes(), s, dst)
	return nil
}

var glBlendFactors = map[HostBlendFactor]uint32{
	HostZero:             gl.ZERO,
	HostOne:              gl.ONE,
	HostSrcColor:         gl.SRC_COLOR,
	HostOneMinusSrcColor: gl.ONE_MINUS_SRC_COLOR,
	HostDstColor:         gl.DST_COLOR,
	HostOneMinusDstColor: gl.ONE_MINUS_DST_COLOR,
	HostSrcAlpha:         gl.SRC_ALPHA,
	HostOneMinusSrcAlpha: gl.ONE_MINUS_SRC_ALPHA,
	HostDstAlpha:         gl.DST_ALPHA,
	HostOneMinusDstAlpha: gl.ONE_MINUS_DST_ALPHA,
	HostConstantColor:    gl.CONSTANT_COLOR,
}

var glBlendEquations = map[HostBlendEquation]uint32{
	HostEqAdd:             gl.FUNC_ADD,
	HostEqSubtract:        gl.FUNC_SUBTRACT,
	HostEqReverseSubtract: gl.FUNC_REVERSE_SUBTRACT,
	HostEqMin:             gl.MIN,
	HostEqMax:             gl.MAX,
}

var glCompareFuncs = [...]uint32{
	GU_NEVER:    gl.NEVER,
	GU_ALWAYS:   gl.ALWAYS,
	GU_EQUAL:    gl.EQUAL,
	GU_NOTEQUAL: gl.NOTEQUAL,
	GU_LESS:     gl.LESS,
	GU_LEQUAL:   gl.LEQUAL,
	GU_GREATER:  gl.GREATER,
	GU_GEQUAL:   gl.GEQUAL,
}

func glToggle(cap uint32, on bool) {
	if on {
		gl.Enable(cap)
	} else {
		gl.Disable(cap)
	}
}

func (r *GLRenderer) ApplyState(state HostState) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.state = state

	glToggle(gl.BLEND, state.Blend)
	gl.BlendEquation(glBlendEquations[state.Equation])
	gl.BlendFunc(glBlendFactors[state.SrcFactor], glBlendFactors[state.DstFactor])
	// GL has a single constant colour; the source side wins when both use one.
	constant := state.DstConstant
	if state.SrcFactor == HostConstantColor {
		constant = state.SrcConstant
	}
	gl.BlendColor(float32(constant&0xFF)/255, float32((constant>>8)&0xFF)/255,
		float32((constant>>16)&0xFF)/255, float32(constant>>24)/255)

	glToggle(gl.ALPHA_TEST, state.AlphaTest)
	if state.AlphaFunc >= 0 && state.AlphaFunc < len(glCompareFuncs) {
		gl.AlphaFunc(glCompareFuncs[state.AlphaFunc], float32(state.AlphaRef)/255)
	}

	glToggle(gl.SCISSOR_TEST, state.Scissor)
	sr := state.ScissorRect
	gl.Scissor(int32(sr.X0), int32(GL_SURFACE_SIZE-sr.Y1), int32(sr.X1-sr.X0), int32(sr.Y1-sr.Y0))

	glToggle(gl.TEXTURE_2D, state.Texture)
	if state.Smooth {
		gl.ShadeModel(gl.SMOOTH)
	} else {
		gl.ShadeModel(gl.FLAT)
	}
	if r.bound >= 0 {
		r.texParams()
	}
}

func (r *GLRenderer) texParams() {
	wrap := func(clamp bool) int32 {
		if clamp {
			return gl.CLAMP_TO_EDGE
		}
		return gl.REPEAT
	}
	filter := func(linear bool) int32 {
		if linear {
			return gl.LINEAR
		}
		return gl.NEAREST
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap(r.state.ClampU))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap(r.state.ClampV))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter(r.state.LinearMin))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter(r.state.LinearMag))
}

// UploadTexture accepts direct formats and stores them as RGBA8.
func (r *GLRenderer) UploadTexture(slot int, tex HostTexture) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if slot < 0 || slot >= len(r.textures) {
		return guErr("upload texture", ErrTextureUpload, "slot %d", slot)
	}
	if !isDirectFormat(tex.Format) {
		return ErrFormatRejected
	}
	bpp := PixelBits(tex.Format) / 8
	n := tex.Width * tex.Height
	if tex.Width <= 0 || tex.Height <= 0 || len(tex.Pixels) < n*bpp {
		return guErr("upload texture", ErrTextureUpload, "%dx%d from %d bytes", tex.Width, tex.Height, len(tex.Pixels))
	}
	rgba := make([]byte, n*4)
	for i := range n {
		c := readPixel(tex.Pixels, i*bpp, tex.Format)
		rgba[i*4+0] = byte(c)
		rgba[i*4+1] = byte(c >> 8)
		rgba[i*4+2] = byte(c >> 16)
		rgba[i*4+3] = byte(c >> 24)
	}

	t := &r.textures[slot]
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(tex.Width), int32(tex.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba))
	t.width, t.height = tex.Width, tex.Height
	t.logicalW, t.logicalH = tex.LogicalWidth, tex.LogicalHeight
	if t.logicalW <= 0 {
		t.logicalW = tex.Width
	}
	if t.logicalH <= 0 {
		t.logicalH = tex.Height
	}
	if r.bound >= 0 {
		gl.BindTexture(gl.TEXTURE_2D, r.textures[r.bound].id)
	}
	return nil
}

func (r *GLRenderer) BindTexture(slot int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if slot < 0 || slot >= len(r.textures) {
		r.bound = -1
		return
	}
	r.bound = slot
	gl.BindTexture(gl.TEXTURE_2D, r.textures[slot].id)
	r.texParams()
}

var glShapeModes = map[ShapeKind]uint32{
	ShapePoint:         gl.POINTS,
	ShapeLines:         gl.LINES,
	ShapeLineStrip:     gl.LINE_STRIP,
	ShapeTriangles:     gl.TRIANGLES,
	ShapeTriangleStrip: gl.TRIANGLE_STRIP,
	ShapeTriangleFan:   gl.TRIANGLE_FAN,
	ShapeQuad:          gl.QUADS,
}

func (r *GLRenderer) DrawShape(shape HostShape) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.target.Width == 0 {
		return guErr("draw", ErrBadBuffer, "no draw target")
	}
	// Texture coordinates arrive normalized over the logical size.
	su, sv := float32(1), float32(1)
	if r.bound >= 0 {
		t := &r.textures[r.bound]
		if t.width > 0 && t.height > 0 {
			su = float32(t.logicalW) / float32(t.width)
			sv = float32(t.logicalH) / float32(t.height)
		}
	}
	gl.Begin(glShapeModes[shape.Kind])
	for _, v := range shape.Vertices {
		gl.Color4ub(uint8(v.Color), uint8(v.Color>>8), uint8(v.Color>>16), uint8(v.Color>>24))
		gl.TexCoord2f(v.U*su, v.V*sv)
		gl.Vertex3f(v.X, v.Y, 0)
	}
	gl.End()
	r.dirty = true
	return nil
}

func (r *GLRenderer) Clear(flags int, color uint32) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if flags&GU_COLOR_BUFFER_BIT == 0 {
		return
	}
	gl.ClearColor(float32(color&0xFF)/255, float32((color>>8)&0xFF)/255,
		float32((color>>16)&0xFF)/255, float32(color>>24)/255)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	r.dirty = true
}

func (r *GLRenderer) Flush() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	gl.Finish()
	r.resolve()
	if code := gl.GetError(); code != gl.NO_ERROR {
		return guErr("flush", ErrNoRenderer, "gl error %#x", code)
	}
	return nil
}

func (r *GLRenderer) Destroy() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i := range r.textures {
		gl.DeleteTextures(1, &r.textures[i].id)
	}
	sdl.GLDeleteContext(r.context)
	r.window.Destroy()
	sdl.Quit()
}
