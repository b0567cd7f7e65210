// gu_renderer_software_test.go - Pixel tests for the software rasterizer

package main

import (
	"errors"
	"testing"
	"time"
)

func newSoftwareContext(t *testing.T) (*GuContext, *SoftwareRenderer) {
	t.Helper()
	vram := NewVRAM(GU_VRAM_SIZE)
	r := NewSoftwareRenderer(vram)
	ctx, err := NewGuContext(ContextOptions{
		Renderer: r,
		VRAM:     vram,
		Clock:    NewFrameClock(NewManualClock(time.Unix(0, 0)), discardLogger()),
		Logger:   discardLogger(),
	})
	if err != nil {
		t.Fatalf("NewGuContext: %v", err)
	}
	if err := ctx.InitGfx(GU_PSM_8888, true); err != nil {
		t.Fatalf("InitGfx: %v", err)
	}
	return ctx, r
}

// pixelAt reads one pixel of the draw target as canonical RGBA.
func pixelAt(t *testing.T, ctx *GuContext, x, y int) uint32 {
	t.Helper()
	s := ctx.Buffers().DrawTarget()
	pix, err := ctx.ReadPixels(s)
	if err != nil {
		t.Fatalf("ReadPixels: %v", err)
	}
	i := (y*s.Width + x) * 4
	return uint32(pix[i]) | uint32(pix[i+1])<<8 | uint32(pix[i+2])<<16 | uint32(pix[i+3])<<24
}

// ===== Sprint 1: Fill and clear =====

func TestSoftwareRenderer_ClearFillsOpaque(t *testing.T) {
	ctx, _ := newSoftwareContext(t)
	ctx.ClearScreen(0x000000FF)
	if got := pixelAt(t, ctx, 0, 0); got != 0xFF0000FF {
		t.Fatalf("cleared pixel = %#08x, want 0xFF0000FF", got)
	}
	if got := pixelAt(t, ctx, GU_SCREEN_WIDTH-1, GU_SCREEN_HEIGHT-1); got != 0xFF0000FF {
		t.Fatalf("far corner = %#08x", got)
	}
}

func TestSoftwareRenderer_FillRect(t *testing.T) {
	ctx, _ := newSoftwareContext(t)
	ctx.ClearScreen(0xFF000000)
	ctx.SetAlpha(FX_NONE, 0)
	if err := ctx.DrawFillRect(10, 10, 20, 20, 0xFF00FF00); err != nil {
		t.Fatalf("DrawFillRect: %v", err)
	}
	if got := pixelAt(t, ctx, 15, 15); got != 0xFF00FF00 {
		t.Fatalf("inside = %#08x", got)
	}
	if got := pixelAt(t, ctx, 25, 25); got != 0xFF000000 {
		t.Fatalf("outside = %#08x", got)
	}
}

func TestSoftwareRenderer_ScissorClips(t *testing.T) {
	ctx, _ := newSoftwareContext(t)
	ctx.ClearScreen(0xFF000000)
	ctx.SetAlpha(FX_NONE, 0)
	ctx.SetScreenClipping(0, 0, 5, 5)
	ctx.DrawFillRect(0, 0, 20, 20, 0xFFFFFFFF)
	if got := pixelAt(t, ctx, 2, 2); got != 0xFFFFFFFF {
		t.Fatalf("inside scissor = %#08x", got)
	}
	if got := pixelAt(t, ctx, 10, 10); got != 0xFF000000 {
		t.Fatalf("outside scissor = %#08x", got)
	}
}

// ===== Sprint 2: Blending and texturing =====

func TestSoftwareRenderer_HalfAlphaBlend(t *testing.T) {
	ctx, _ := newSoftwareContext(t)
	ctx.ClearScreen(0xFF000000)
	ctx.SetAlpha(FX_ALPHA, 0x80)
	ctx.DrawFillRect(0, 0, 8, 8, 0xFFFFFFFF)
	got := pixelAt(t, ctx, 4, 4)
	if r := got & 0xFF; r < 0x7F || r > 0x81 {
		t.Fatalf("blended red = %#02x, want about 0x80", r)
	}
}

func TestSoftwareRenderer_AdditiveEffect(t *testing.T) {
	ctx, _ := newSoftwareContext(t)
	ctx.ClearScreen(0xFF202020)
	ctx.SetAlpha2(FX_ADD, 0xFF, 0xFFFFFFFF)
	ctx.DrawFillRect(0, 0, 8, 8, 0xFF404040)
	if got := pixelAt(t, ctx, 4, 4) & 0xFFFFFF; got != 0x606060 {
		t.Fatalf("added colour = %#06x, want 0x606060", got)
	}
}

// requireAddedOnce checks that every pixel of the 8x8 square at the origin
// received the additive colour exactly once.
func requireAddedOnce(t *testing.T, ctx *GuContext, shape string) {
	t.Helper()
	s := ctx.Buffers().DrawTarget()
	pix, err := ctx.ReadPixels(s)
	if err != nil {
		t.Fatalf("ReadPixels: %v", err)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			i := (y*s.Width + x) * 4
			if got := uint32(pix[i]) | uint32(pix[i+1])<<8 | uint32(pix[i+2])<<16; got != 0x404040 {
				t.Fatalf("%s: pixel (%d,%d) = %#06x, want 0x404040", shape, x, y, got)
			}
		}
	}
	if i := (8*s.Width + 8) * 4; pix[i] != 0 {
		t.Fatalf("%s: pixel (8,8) outside the square was drawn", shape)
	}
}

func TestSoftwareRenderer_SharedEdgesDrawnOnce(t *testing.T) {
	const c = 0xFF404040
	draws := []struct {
		name string
		draw func(ctx *GuContext) error
	}{
		{"fill rect", func(ctx *GuContext) error {
			return ctx.DrawFillRect(0, 0, 8, 8, c)
		}},
		{"gradient strip", func(ctx *GuContext) error {
			return ctx.DrawGradientRect(0, 0, 8, 8, c, c, c, c)
		}},
		{"fan around centre", func(ctx *GuContext) error {
			return ctx.drawShape(GU_TRIANGLE_FAN, []DecodedVertex{
				ctx.shapeVertex(4, 4, c),
				ctx.shapeVertex(0, 0, c),
				ctx.shapeVertex(8, 0, c),
				ctx.shapeVertex(8, 8, c),
				ctx.shapeVertex(0, 8, c),
				ctx.shapeVertex(0, 0, c),
			})
		}},
	}
	for _, tc := range draws {
		t.Run(tc.name, func(t *testing.T) {
			ctx, _ := newSoftwareContext(t)
			ctx.ClearScreen(0xFF000000)
			ctx.SetAlpha2(FX_ADD, 0xFF, 0xFFFFFFFF)
			if err := tc.draw(ctx); err != nil {
				t.Fatalf("draw: %v", err)
			}
			requireAddedOnce(t, ctx, tc.name)
		})
	}
}

func TestIsTopLeftEdge(t *testing.T) {
	// Positive-area triangle: top-left, bottom-left, top-right
	tl := &HostVertex{X: 0, Y: 0}
	bl := &HostVertex{X: 0, Y: 8}
	tr := &HostVertex{X: 8, Y: 0}
	if edgeFunction(tl.X, tl.Y, bl.X, bl.Y, tr.X, tr.Y) <= 0 {
		t.Fatal("test triangle has non-positive area")
	}
	if !isTopLeftEdge(tl, bl) {
		t.Fatal("left edge not owned")
	}
	if !isTopLeftEdge(tr, tl) {
		t.Fatal("top edge not owned")
	}
	if isTopLeftEdge(bl, tr) {
		t.Fatal("bottom-right edge owned")
	}
	if edgeCovers(0, false) || !edgeCovers(0, true) || !edgeCovers(0.5, false) {
		t.Fatal("edgeCovers disagrees with the ownership rule")
	}
}

func TestSoftwareRenderer_TexturedTile(t *testing.T) {
	ctx, _ := newSoftwareContext(t)
	ctx.ClearScreen(0xFF000000)
	tex := make([]byte, 8*8*4)
	for i := 0; i < len(tex); i += 4 {
		tex[i], tex[i+3] = 0xFF, 0xFF
	}
	ctx.TexMode(GU_PSM_8888, 0, 0)
	if err := ctx.TexImage(0, 8, 8, 8, tex); err != nil {
		t.Fatalf("TexImage: %v", err)
	}
	if err := ctx.DrawTile(0, 0, 100, 50, 8, 8); err != nil {
		t.Fatalf("DrawTile: %v", err)
	}
	if got := pixelAt(t, ctx, 104, 54); got != 0xFF0000FF {
		t.Fatalf("texel = %#08x, want red", got)
	}
	if got := pixelAt(t, ctx, 110, 54); got != 0xFF000000 {
		t.Fatalf("outside tile = %#08x", got)
	}
}

func TestSoftwareRenderer_AcceptedFormats(t *testing.T) {
	r := NewSoftwareRenderer(NewVRAM(GU_VRAM_SIZE))
	r.SetAcceptedFormats([]int{GU_PSM_8888})
	tex := HostTexture{Format: GU_PSM_4444, Width: 4, Height: 4, Pixels: make([]byte, 32)}
	if err := r.UploadTexture(0, tex); !errors.Is(err, ErrFormatRejected) {
		t.Fatalf("err = %v, want ErrFormatRejected", err)
	}
	tex = HostTexture{Format: GU_PSM_8888, Width: 4, Height: 4, Pixels: make([]byte, 64)}
	if err := r.UploadTexture(0, tex); err != nil {
		t.Fatalf("8888 upload: %v", err)
	}
	if err := r.UploadTexture(GU_TEXTURE_SLOTS, tex); !errors.Is(err, ErrTextureUpload) {
		t.Fatalf("slot out of range: err = %v", err)
	}
}

func TestWrapCoord(t *testing.T) {
	tests := []struct {
		c, size int
		clamp   bool
		want    int
	}{
		{9, 8, false, 1},
		{-1, 8, false, 7},
		{9, 8, true, 7},
		{-3, 8, true, 0},
		{3, 0, false, 0},
	}
	for _, tc := range tests {
		if got := wrapCoord(tc.c, tc.size, tc.clamp); got != tc.want {
			t.Errorf("wrapCoord(%d, %d, %v) = %d, want %d", tc.c, tc.size, tc.clamp, got, tc.want)
		}
	}
}
