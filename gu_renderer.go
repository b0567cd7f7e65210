// gu_renderer.go - Host Renderer Interface

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
gu_renderer.go - Host Renderer Interface

The GU context never talks to a graphics API directly. It translates its
state into a HostState, decodes draws into HostShapes and hands both to a
HostRenderer. Implementations:
- SoftwareRenderer: pure Go rasterizer drawing into emulated VRAM
- GLRenderer: OpenGL 2.1 fixed-function pipeline (opengl build tag)
*/

package main

import "fmt"

// VramPtr is a byte offset into emulated VRAM.
type VramPtr uint32

// Surface is a pixel buffer in VRAM: the draw target or the display buffer.
type Surface struct {
	Ptr    VramPtr
	Format int // GU_PSM_5650..GU_PSM_8888
	Stride int // pixels per row
	Width  int
	Height int
}

// ByteSize is the VRAM span covered by the surface.
func (s Surface) ByteSize() int {
	return s.Stride * s.Height * PixelBits(s.Format) / 8
}

func (s Surface) pixelOffset(x, y int) int {
	return int(s.Ptr) + (y*s.Stride+x)*PixelBits(s.Format)/8
}

func (s Surface) String() string {
	return fmt.Sprintf("%#x %dx%d/%d psm %d", uint32(s.Ptr), s.Width, s.Height, s.Stride, s.Format)
}

// VRAM is the emulated video memory shared by the renderer and the
// double-buffer manager.
type VRAM struct {
	mem []byte
}

// NewVRAM allocates size bytes of video memory.
func NewVRAM(size int) *VRAM {
	return &VRAM{mem: make([]byte, size)}
}

// Bytes exposes the backing store.
func (v *VRAM) Bytes() []byte {
	return v.mem
}

// Contains reports whether the whole surface lies inside VRAM.
func (v *VRAM) Contains(s Surface) bool {
	if !isDirectFormat(s.Format) || s.Stride < s.Width || s.Width <= 0 || s.Height <= 0 {
		return false
	}
	return int(s.Ptr)+s.ByteSize() <= len(v.mem)
}

// HostBlendFactor is a blend factor of the host pipeline.
type HostBlendFactor int

const (
	HostZero HostBlendFactor = iota
	HostOne
	HostSrcColor
	HostOneMinusSrcColor
	HostDstColor
	HostOneMinusDstColor
	HostSrcAlpha
	HostOneMinusSrcAlpha
	HostDstAlpha
	HostOneMinusDstAlpha
	HostConstantColor
)

// HostBlendEquation combines the weighted source and destination.
type HostBlendEquation int

const (
	HostEqAdd HostBlendEquation = iota
	HostEqSubtract
	HostEqReverseSubtract
	HostEqMin
	HostEqMax
)

// Rect is a pixel rectangle, top-left origin, exclusive end.
type Rect struct {
	X0, Y0, X1, Y1 int
}

// HostState is the complete pipeline state for the next draw.
type HostState struct {
	Blend       bool
	Equation    HostBlendEquation
	SrcFactor   HostBlendFactor
	DstFactor   HostBlendFactor
	SrcConstant uint32
	DstConstant uint32

	AlphaTest bool
	AlphaFunc int
	AlphaRef  uint8

	Scissor     bool
	ScissorRect Rect

	Texture   bool
	ClampU    bool
	ClampV    bool
	LinearMin bool
	LinearMag bool

	Smooth    bool
	DepthTest bool
	CullFace  bool
}

// HostCaps describes what the host pipeline can express natively.
type HostCaps struct {
	ConstantBlend  bool // blend factors may reference a constant colour
	BlendEquations bool // equations other than add
}

// HostTexture is a texture ready for upload. Width is the buffer width and
// Height the padded power-of-two height; the logical size is the area u,v
// in [0,1] map onto.
type HostTexture struct {
	Format        int
	Width         int
	Height        int
	LogicalWidth  int
	LogicalHeight int
	Pixels        []byte
}

// HostRenderer is implemented by rendering backends.
type HostRenderer interface {
	Init(width, height int) error
	Caps() HostCaps

	// Targets
	SetDrawTarget(target Surface) error
	Present(display Surface) error
	ReadPixels(surface Surface, dst []byte) error

	// State and resources
	ApplyState(state HostState)
	UploadTexture(slot int, tex HostTexture) error
	BindTexture(slot int)

	// Commands
	DrawShape(shape HostShape) error
	Clear(flags int, color uint32)
	Flush() error

	Destroy()
}

// surfaceToRGBA converts a VRAM surface to RGBA bytes, top row first.
func surfaceToRGBA(mem []byte, s Surface, dst []byte) {
	i := 0
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			c := readPixel(mem, s.pixelOffset(x, y), s.Format)
			dst[i+0] = byte(c)
			dst[i+1] = byte(c >> 8)
			dst[i+2] = byte(c >> 16)
			dst[i+3] = byte(c >> 24)
			i += 4
		}
	}
}

// rgbaToSurface stores RGBA bytes, top row first, into a VRAM surface.
func rgbaToSurface(src []byte, mem []byte, s Surface) {
	i := 0
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			c := uint32(src[i]) | uint32(src[i+1])<<8 | uint32(src[i+2])<<16 | uint32(src[i+3])<<24
			writePixel(mem, s.pixelOffset(x, y), s.Format, c)
			i += 4
		}
	}
}
