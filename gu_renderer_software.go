// gu_renderer_software.go - Software Rasterizer Backend for the GU Emulator

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
gu_renderer_software.go - Software Rasterizer Backend for the GU Emulator

Provides a pure-Go software rasterizer that implements the HostRenderer
interface and draws straight into emulated VRAM:
- Barycentric triangle rasterization (strips, fans and quads split to triangles)
- Gouraud or flat shading
- Texture mapping (nearest or bilinear, repeat or clamp) modulated by vertex colour
- Alpha test with all 8 compare functions
- Blending with constant-colour factors and all five equations
- Scissor clipping
- Lines and points
- 16 and 32 bit draw targets
*/

package main

import (
	"math"
	"sync"
)

// softTexture is an uploaded texture expanded to 8888 texels.
type softTexture struct {
	texels        []uint32
	width, height int
	logicalW      int
	logicalH      int
}

// SoftwareRenderer implements software rasterization into VRAM.
type SoftwareRenderer struct {
	mutex sync.RWMutex
	vram  *VRAM

	width, height int
	target        Surface
	state         HostState
	caps          HostCaps

	// Texture slots
	textures [GU_TEXTURE_SLOTS]softTexture
	bound    int

	// Formats accepted by UploadTexture; nil accepts all direct formats
	accepted map[int]bool
}

// NewSoftwareRenderer creates a rasterizer drawing into vram.
func NewSoftwareRenderer(vram *VRAM) *SoftwareRenderer {
	return &SoftwareRenderer{
		vram:  vram,
		caps:  HostCaps{ConstantBlend: true, BlendEquations: true},
		bound: -1,
	}
}

// Init records the screen size.
func (r *SoftwareRenderer) Init(width, height int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.width = width
	r.height = height
	r.state.ScissorRect = Rect{0, 0, width, height}
	return nil
}

// Caps reports the pipeline capabilities.
func (r *SoftwareRenderer) Caps() HostCaps {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.caps
}

// SetCaps overrides the capabilities, e.g. to emulate a host without
// constant blending.
func (r *SoftwareRenderer) SetCaps(caps HostCaps) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.caps = caps
}

// SetAcceptedFormats restricts the texture formats UploadTexture accepts.
// A nil or empty list accepts every direct format.
func (r *SoftwareRenderer) SetAcceptedFormats(formats []int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if len(formats) == 0 {
		r.accepted = nil
		return
	}
	r.accepted = make(map[int]bool, len(formats))
	for _, f := range formats {
		r.accepted[f] = true
	}
}

// SetDrawTarget selects the VRAM surface subsequent draws write to.
func (r *SoftwareRenderer) SetDrawTarget(target Surface) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.vram.Contains(target) {
		return guErr("set draw target", ErrBadBuffer, "%v", target)
	}
	r.target = target
	return nil
}

// Present is a no-op: the display buffer already lives in VRAM.
func (r *SoftwareRenderer) Present(display Surface) error {
	return nil
}

// ReadPixels converts a VRAM surface to RGBA bytes, top row first.
func (r *SoftwareRenderer) ReadPixels(s Surface, dst []byte) error {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if !r.vram.Contains(s) {
		return guErr("read pixels", ErrBadBuffer, "%v", s)
	}
	if len(dst) < s.Width*s.Height*4 {
		return guErr("read pixels", ErrBadBuffer, "destination holds %d bytes", len(dst))
	}
	surfaceToRGBA(r.vram.Bytes(), s, dst)
	return nil
}

// ApplyState replaces the pipeline state.
func (r *SoftwareRenderer) ApplyState(state HostState) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.state = state
}

// UploadTexture stores a texture in a slot, expanded to 8888.
func (r *SoftwareRenderer) UploadTexture(slot int, tex HostTexture) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if slot < 0 || slot >= len(r.textures) {
		return guErr("upload texture", ErrTextureUpload, "slot %d", slot)
	}
	if !isDirectFormat(tex.Format) || (r.accepted != nil && !r.accepted[tex.Format]) {
		return ErrFormatRejected
	}
	bpp := PixelBits(tex.Format) / 8
	if tex.Width <= 0 || tex.Height <= 0 || len(tex.Pixels) < tex.Width*tex.Height*bpp {
		return guErr("upload texture", ErrTextureUpload, "%dx%d from %d bytes", tex.Width, tex.Height, len(tex.Pixels))
	}

	t := &r.textures[slot]
	n := tex.Width * tex.Height
	if cap(t.texels) < n {
		t.texels = make([]uint32, n)
	}
	t.texels = t.texels[:n]
	for i := range n {
		t.texels[i] = readPixel(tex.Pixels, i*bpp, tex.Format)
	}
	t.width, t.height = tex.Width, tex.Height
	t.logicalW, t.logicalH = tex.LogicalWidth, tex.LogicalHeight
	if t.logicalW <= 0 {
		t.logicalW = tex.Width
	}
	if t.logicalH <= 0 {
		t.logicalH = tex.Height
	}
	return nil
}

// BindTexture selects the slot sampled by textured draws.
func (r *SoftwareRenderer) BindTexture(slot int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.bound = slot
}

// Clear fills the draw target (within the scissor when enabled). Only the
// colour buffer exists.
func (r *SoftwareRenderer) Clear(flags int, color uint32) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if flags&GU_COLOR_BUFFER_BIT == 0 || r.target.Width == 0 {
		return
	}
	minX, minY, maxX, maxY := r.clipBounds()
	mem := r.vram.Bytes()
	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			writePixel(mem, r.target.pixelOffset(x, y), r.target.Format, color)
		}
	}
}

// Flush is a no-op: draws complete synchronously.
func (r *SoftwareRenderer) Flush() error {
	return nil
}

// Destroy releases texture memory.
func (r *SoftwareRenderer) Destroy() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i := range r.textures {
		r.textures[i] = softTexture{}
	}
	r.bound = -1
}

// DrawShape rasterizes one host shape.
func (r *SoftwareRenderer) DrawShape(shape HostShape) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.target.Width == 0 {
		return guErr("draw", ErrBadBuffer, "no draw target")
	}
	v := shape.Vertices
	switch shape.Kind {
	case ShapePoint:
		for i := range v {
			r.plot(int(v[i].X), int(v[i].Y), v[i].Color, v[i].U, v[i].V)
		}
	case ShapeLines:
		for i := 0; i+1 < len(v); i += 2 {
			r.rasterizeLine(&v[i], &v[i+1])
		}
	case ShapeLineStrip:
		for i := 0; i+1 < len(v); i++ {
			r.rasterizeLine(&v[i], &v[i+1])
		}
	case ShapeTriangles:
		for i := 0; i+2 < len(v); i += 3 {
			r.rasterizeTriangle(&v[i], &v[i+1], &v[i+2])
		}
	case ShapeTriangleStrip:
		for i := 0; i+2 < len(v); i++ {
			r.rasterizeTriangle(&v[i], &v[i+1], &v[i+2])
		}
	case ShapeTriangleFan:
		for i := 1; i+1 < len(v); i++ {
			r.rasterizeTriangle(&v[0], &v[i], &v[i+1])
		}
	case ShapeQuad:
		if len(v) == 4 {
			r.rasterizeTriangle(&v[0], &v[1], &v[2])
			r.rasterizeTriangle(&v[0], &v[2], &v[3])
		}
	}
	return nil
}

// clipBounds returns the writable area: the target clipped by the scissor.
func (r *SoftwareRenderer) clipBounds() (minX, minY, maxX, maxY int) {
	maxX, maxY = r.target.Width, r.target.Height
	if r.state.Scissor {
		sr := r.state.ScissorRect
		minX = max(minX, sr.X0)
		minY = max(minY, sr.Y0)
		maxX = min(maxX, sr.X1)
		maxY = min(maxY, sr.Y1)
	}
	return minX, minY, maxX, maxY
}

// rasterizeTriangle performs barycentric rasterization of one triangle.
func (r *SoftwareRenderer) rasterizeTriangle(v0, v1, v2 *HostVertex) {
	flatColor := v2.Color

	clipMinX, clipMinY, clipMaxX, clipMaxY := r.clipBounds()
	minX := max(clipMinX, int(math.Floor(float64(min3f(v0.X, v1.X, v2.X)))))
	maxX := min(clipMaxX, int(math.Ceil(float64(max3f(v0.X, v1.X, v2.X)))))
	minY := max(clipMinY, int(math.Floor(float64(min3f(v0.Y, v1.Y, v2.Y)))))
	maxY := min(clipMaxY, int(math.Ceil(float64(max3f(v0.Y, v1.Y, v2.Y)))))

	area := edgeFunction(v0.X, v0.Y, v1.X, v1.Y, v2.X, v2.Y)
	if area == 0 {
		return
	}
	// Either winding is filled
	if area < 0 {
		v0, v2 = v2, v0
		area = -area
	}
	invArea := 1.0 / area
	// Pixels centred on a shared edge belong to one triangle only
	top0 := isTopLeftEdge(v1, v2)
	top1 := isTopLeftEdge(v2, v0)
	top2 := isTopLeftEdge(v0, v1)

	for y := minY; y < maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x < maxX; x++ {
			px := float32(x) + 0.5

			w0 := edgeFunction(v1.X, v1.Y, v2.X, v2.Y, px, py)
			w1 := edgeFunction(v2.X, v2.Y, v0.X, v0.Y, px, py)
			w2 := edgeFunction(v0.X, v0.Y, v1.X, v1.Y, px, py)
			if !edgeCovers(w0, top0) || !edgeCovers(w1, top1) || !edgeCovers(w2, top2) {
				continue
			}
			w0 *= invArea
			w1 *= invArea
			w2 *= invArea

			color := flatColor
			if r.state.Smooth {
				color = lerpColor3(v0.Color, v1.Color, v2.Color, w0, w1, w2)
			}
			u := w0*v0.U + w1*v1.U + w2*v2.U
			t := w0*v0.V + w1*v1.V + w2*v2.V
			r.shadePixel(x, y, color, u, t)
		}
	}
}

// rasterizeLine draws a DDA line, colour interpolated along its length.
func (r *SoftwareRenderer) rasterizeLine(a, b *HostVertex) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	steps := int(math.Ceil(float64(max(abs32(dx), abs32(dy)))))
	if steps == 0 {
		r.plot(int(a.X), int(a.Y), a.Color, a.U, a.V)
		return
	}
	for i := 0; i <= steps; i++ {
		f := float32(i) / float32(steps)
		color := b.Color
		if r.state.Smooth {
			color = lerpColor3(a.Color, b.Color, 0, 1-f, f, 0)
		}
		r.plot(int(a.X+dx*f), int(a.Y+dy*f), color, a.U+(b.U-a.U)*f, a.V+(b.V-a.V)*f)
	}
}

func (r *SoftwareRenderer) plot(x, y int, color uint32, u, v float32) {
	minX, minY, maxX, maxY := r.clipBounds()
	if x < minX || y < minY || x >= maxX || y >= maxY {
		return
	}
	r.shadePixel(x, y, color, u, v)
}

// shadePixel runs the fragment pipeline for one covered pixel: texture
// modulate, alpha test, blend, store.
func (r *SoftwareRenderer) shadePixel(x, y int, color uint32, u, v float32) {
	if r.state.Texture && r.bound >= 0 && r.textures[r.bound].texels != nil {
		color = modulateColor(color, r.sampleTexture(&r.textures[r.bound], u, v))
	}

	if r.state.AlphaTest && !testFunc(r.state.AlphaFunc, uint8(color>>24), r.state.AlphaRef) {
		return
	}

	mem := r.vram.Bytes()
	off := r.target.pixelOffset(x, y)
	if r.state.Blend {
		color = r.blend(color, readPixel(mem, off, r.target.Format))
	}
	writePixel(mem, off, r.target.Format, color)
}

// sampleTexture fetches a texel at normalized u,v over the logical size.
func (r *SoftwareRenderer) sampleTexture(t *softTexture, u, v float32) uint32 {
	fx := u * float32(t.logicalW)
	fy := v * float32(t.logicalH)

	linear := r.state.LinearMag
	if !linear {
		return t.fetch(wrapCoord(int(math.Floor(float64(fx))), t.logicalW, r.state.ClampU),
			wrapCoord(int(math.Floor(float64(fy))), t.logicalH, r.state.ClampV))
	}

	fx -= 0.5
	fy -= 0.5
	x0 := int(math.Floor(float64(fx)))
	y0 := int(math.Floor(float64(fy)))
	ax := fx - float32(x0)
	ay := fy - float32(y0)
	xa := wrapCoord(x0, t.logicalW, r.state.ClampU)
	xb := wrapCoord(x0+1, t.logicalW, r.state.ClampU)
	ya := wrapCoord(y0, t.logicalH, r.state.ClampV)
	yb := wrapCoord(y0+1, t.logicalH, r.state.ClampV)

	top := lerpColor3(t.fetch(xa, ya), t.fetch(xb, ya), 0, 1-ax, ax, 0)
	bottom := lerpColor3(t.fetch(xa, yb), t.fetch(xb, yb), 0, 1-ax, ax, 0)
	return lerpColor3(top, bottom, 0, 1-ay, ay, 0)
}

func (t *softTexture) fetch(x, y int) uint32 {
	if x >= t.width || y >= t.height {
		return 0
	}
	return t.texels[y*t.width+x]
}

// wrapCoord maps a texel coordinate into [0,size) by repeat or clamp.
func wrapCoord(c, size int, clamp bool) int {
	if size <= 0 {
		return 0
	}
	if clamp {
		return min(max(c, 0), size-1)
	}
	c %= size
	if c < 0 {
		c += size
	}
	return c
}

// blend combines a source fragment with the destination pixel.
func (r *SoftwareRenderer) blend(src, dst uint32) uint32 {
	const inv255 = float32(1.0 / 255.0)
	var s, d [4]float32
	for i := range 4 {
		s[i] = float32((src>>(8*i))&0xFF) * inv255
		d[i] = float32((dst>>(8*i))&0xFF) * inv255
	}
	sf := r.blendFactor(r.state.SrcFactor, r.state.SrcConstant, s, d)
	df := r.blendFactor(r.state.DstFactor, r.state.DstConstant, s, d)

	var out uint32
	for i := range 4 {
		a := s[i] * sf[i]
		b := d[i] * df[i]
		var c float32
		switch r.state.Equation {
		case HostEqSubtract:
			c = a - b
		case HostEqReverseSubtract:
			c = b - a
		case HostEqMin:
			c = min(s[i], d[i])
		case HostEqMax:
			c = max(s[i], d[i])
		default:
			c = a + b
		}
		out |= uint32(clampf(c, 0, 1)*255+0.5) << (8 * i)
	}
	return out
}

// blendFactor returns the per-channel weights of a factor.
func (r *SoftwareRenderer) blendFactor(f HostBlendFactor, constant uint32, s, d [4]float32) [4]float32 {
	switch f {
	case HostZero:
		return [4]float32{}
	case HostOne:
		return [4]float32{1, 1, 1, 1}
	case HostSrcColor:
		return s
	case HostOneMinusSrcColor:
		return [4]float32{1 - s[0], 1 - s[1], 1 - s[2], 1 - s[3]}
	case HostDstColor:
		return d
	case HostOneMinusDstColor:
		return [4]float32{1 - d[0], 1 - d[1], 1 - d[2], 1 - d[3]}
	case HostSrcAlpha:
		return [4]float32{s[3], s[3], s[3], s[3]}
	case HostOneMinusSrcAlpha:
		a := 1 - s[3]
		return [4]float32{a, a, a, a}
	case HostDstAlpha:
		return [4]float32{d[3], d[3], d[3], d[3]}
	case HostOneMinusDstAlpha:
		a := 1 - d[3]
		return [4]float32{a, a, a, a}
	case HostConstantColor:
		const inv255 = float32(1.0 / 255.0)
		return [4]float32{
			float32(constant&0xFF) * inv255,
			float32((constant>>8)&0xFF) * inv255,
			float32((constant>>16)&0xFF) * inv255,
			float32(constant>>24) * inv255,
		}
	}
	return [4]float32{1, 1, 1, 1}
}

// testFunc evaluates a GU compare function.
func testFunc(fn int, value, ref uint8) bool {
	switch fn {
	case GU_NEVER:
		return false
	case GU_ALWAYS:
		return true
	case GU_EQUAL:
		return value == ref
	case GU_NOTEQUAL:
		return value != ref
	case GU_LESS:
		return value < ref
	case GU_LEQUAL:
		return value <= ref
	case GU_GREATER:
		return value > ref
	case GU_GEQUAL:
		return value >= ref
	}
	return true
}

// lerpColor3 weights three packed colours channel by channel.
func lerpColor3(c0, c1, c2 uint32, w0, w1, w2 float32) uint32 {
	var out uint32
	for shift := uint(0); shift < 32; shift += 8 {
		v := float32((c0>>shift)&0xFF)*w0 + float32((c1>>shift)&0xFF)*w1 + float32((c2>>shift)&0xFF)*w2
		out |= uint32(clampf(v+0.5, 0, 255)) << shift
	}
	return out
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// edgeFunction computes the signed area of a parallelogram
// isTopLeftEdge reports whether edge a->b of a positive-area triangle is a
// top or left edge, the edges whose centred pixels the triangle owns.
func isTopLeftEdge(a, b *HostVertex) bool {
	dx, dy := b.X-a.X, b.Y-a.Y
	return dy > 0 || (dy == 0 && dx < 0)
}

func edgeCovers(w float32, topLeft bool) bool {
	return w > 0 || (w == 0 && topLeft)
}

func edgeFunction(ax, ay, bx, by, cx, cy float32) float32 {
	return (cx-ax)*(by-ay) - (cy-ay)*(bx-ax)
}

func min3f(a, b, c float32) float32 {
	return min(a, b, c)
}

func max3f(a, b, c float32) float32 {
	return max(a, b, c)
}

func clampf(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
