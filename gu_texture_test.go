// gu_texture_test.go - Tests for the texture and palette cache

package main

import (
	"encoding/binary"
	"errors"
	"testing"
)

func solidTexture(format, w, h int, c uint32) []byte {
	bpp := PixelBits(format) / 8
	buf := make([]byte, w*h*bpp)
	for p := 0; p < w*h; p++ {
		writePixel(buf, p*bpp, format, c)
	}
	return buf
}

func bindOrFail(t *testing.T, c *TextureCache, b TextureBinding) {
	t.Helper()
	if err := c.Bind(b); err != nil {
		t.Fatalf("Bind: %v", err)
	}
}

// ===== Sprint 1: Lazy upload =====

func TestTextureCache_BindDoesNotUpload(t *testing.T) {
	c := NewTextureCache(discardLogger())
	rec := newRecordingRenderer()
	bindOrFail(t, c, TextureBinding{Format: GU_PSM_8888, Width: 8, Height: 8, BufferWidth: 8, Source: make([]byte, 256)})
	if len(rec.uploads) != 0 {
		t.Fatalf("bind uploaded %d textures", len(rec.uploads))
	}
	if slot, err := c.UploadIfNeeded(rec); err != nil || slot != 0 {
		t.Fatalf("UploadIfNeeded = %d, %v", slot, err)
	}
	if len(rec.uploads) != 1 {
		t.Fatalf("got %d uploads, want 1", len(rec.uploads))
	}
}

func TestTextureCache_RepeatedDrawIsHit(t *testing.T) {
	c := NewTextureCache(discardLogger())
	rec := newRecordingRenderer()
	bindOrFail(t, c, TextureBinding{Format: GU_PSM_8888, Width: 8, Height: 8, BufferWidth: 8, Source: make([]byte, 256)})
	for range 5 {
		if _, err := c.UploadIfNeeded(rec); err != nil {
			t.Fatalf("UploadIfNeeded: %v", err)
		}
	}
	if c.Uploads != 1 || c.Hits != 4 {
		t.Fatalf("uploads=%d hits=%d, want 1 and 4", c.Uploads, c.Hits)
	}
	if len(rec.binds) != 1 {
		t.Fatalf("host bound %d times, want 1", len(rec.binds))
	}
}

func TestTextureCache_SwitchBackIsHit(t *testing.T) {
	c := NewTextureCache(discardLogger())
	rec := newRecordingRenderer()
	a := TextureBinding{Format: GU_PSM_8888, Width: 4, Height: 4, BufferWidth: 4, Source: make([]byte, 64)}
	b := TextureBinding{Format: GU_PSM_8888, Width: 4, Height: 4, BufferWidth: 4, Source: make([]byte, 64)}
	for _, tb := range []TextureBinding{a, b, a, b} {
		bindOrFail(t, c, tb)
		if _, err := c.UploadIfNeeded(rec); err != nil {
			t.Fatalf("UploadIfNeeded: %v", err)
		}
	}
	if c.Uploads != 2 {
		t.Fatalf("uploads=%d, want 2", c.Uploads)
	}
	if got := rec.binds; len(got) != 4 || got[2] != 0 || got[3] != 1 {
		t.Fatalf("binds = %v, want [0 1 0 1]", got)
	}
}

func TestTextureCache_RoundRobinSlots(t *testing.T) {
	c := NewTextureCache(discardLogger())
	rec := newRecordingRenderer()
	for i := range GU_TEXTURE_SLOTS + 1 {
		bindOrFail(t, c, TextureBinding{Format: GU_PSM_8888, Width: 2, Height: 2, BufferWidth: 2, Source: make([]byte, 16+i)})
		slot, err := c.UploadIfNeeded(rec)
		if err != nil {
			t.Fatalf("UploadIfNeeded: %v", err)
		}
		if want := i % GU_TEXTURE_SLOTS; slot != want {
			t.Fatalf("texture %d went to slot %d, want %d", i, slot, want)
		}
	}
}

func TestTextureCache_NoBindingNoUpload(t *testing.T) {
	c := NewTextureCache(discardLogger())
	rec := newRecordingRenderer()
	if slot, err := c.UploadIfNeeded(rec); slot != -1 || err != nil {
		t.Fatalf("UploadIfNeeded = %d, %v", slot, err)
	}
	if w, h := c.LogicalSize(); w != 0 || h != 0 {
		t.Fatalf("logical size without binding = %vx%v", w, h)
	}
}

// ===== Sprint 2: Palettes =====

func TestTextureCache_PaletteChangeReuploadsIndexed(t *testing.T) {
	c := NewTextureCache(discardLogger())
	rec := newRecordingRenderer()
	pal := make([]byte, 16*4)
	binary.LittleEndian.PutUint32(pal[4:], 0xFF0000FF)
	if err := c.LoadPalette(2, pal); err != nil {
		t.Fatalf("LoadPalette: %v", err)
	}
	bindOrFail(t, c, TextureBinding{Format: GU_PSM_T8, Width: 4, Height: 4, BufferWidth: 4, Source: []byte{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}})
	if _, err := c.UploadIfNeeded(rec); err != nil {
		t.Fatalf("UploadIfNeeded: %v", err)
	}
	if got := binary.LittleEndian.Uint32(rec.uploads[0].Texture.Pixels); got != 0xFF0000FF {
		t.Fatalf("expanded texel %#08x, want 0xFF0000FF", got)
	}

	binary.LittleEndian.PutUint32(pal[4:], 0xFF00FF00)
	if err := c.LoadPalette(2, pal); err != nil {
		t.Fatalf("LoadPalette: %v", err)
	}
	if _, err := c.UploadIfNeeded(rec); err != nil {
		t.Fatalf("UploadIfNeeded: %v", err)
	}
	if c.Uploads != 2 {
		t.Fatalf("uploads=%d after palette change, want 2", c.Uploads)
	}
	if got := binary.LittleEndian.Uint32(rec.uploads[1].Texture.Pixels); got != 0xFF00FF00 {
		t.Fatalf("re-expanded texel %#08x, want 0xFF00FF00", got)
	}
}

func TestTextureCache_PaletteChangeKeepsDirect(t *testing.T) {
	c := NewTextureCache(discardLogger())
	rec := newRecordingRenderer()
	bindOrFail(t, c, TextureBinding{Format: GU_PSM_5650, Width: 4, Height: 4, BufferWidth: 4, Source: make([]byte, 32)})
	c.UploadIfNeeded(rec)
	if err := c.LoadPalette(1, make([]byte, 32)); err != nil {
		t.Fatalf("LoadPalette: %v", err)
	}
	c.UploadIfNeeded(rec)
	if c.Uploads != 1 {
		t.Fatalf("uploads=%d, direct texture re-uploaded on palette change", c.Uploads)
	}
}

func TestTextureCache_T4NibbleOrder(t *testing.T) {
	c := NewTextureCache(discardLogger())
	rec := newRecordingRenderer()
	if err := c.SetPaletteFormat(GU_PSM_5650); err != nil {
		t.Fatalf("SetPaletteFormat: %v", err)
	}
	pal := make([]byte, 16*2)
	binary.LittleEndian.PutUint16(pal[2*2:], 0x001F) // entry 2 red
	binary.LittleEndian.PutUint16(pal[7*2:], 0xF800) // entry 7 blue
	if err := c.LoadPalette(2, pal); err != nil {
		t.Fatalf("LoadPalette: %v", err)
	}
	// First texel in the low nibble.
	bindOrFail(t, c, TextureBinding{Format: GU_PSM_T4, Width: 2, Height: 1, BufferWidth: 2, Source: []byte{0x72}})
	if _, err := c.UploadIfNeeded(rec); err != nil {
		t.Fatalf("UploadIfNeeded: %v", err)
	}
	px := rec.uploads[0].Texture.Pixels
	if got := binary.LittleEndian.Uint32(px[0:]); got != 0xFF0000FF {
		t.Fatalf("texel 0 = %#08x, want red", got)
	}
	if got := binary.LittleEndian.Uint32(px[4:]); got != 0xFFFF0000 {
		t.Fatalf("texel 1 = %#08x, want blue", got)
	}
}

func TestTextureCache_PaletteShort(t *testing.T) {
	c := NewTextureCache(discardLogger())
	if err := c.LoadPalette(2, make([]byte, 15*4)); !errors.Is(err, ErrPaletteShort) {
		t.Fatalf("expected ErrPaletteShort, got %v", err)
	}
}

// ===== Sprint 3: Format fallback and validation =====

func TestTextureCache_FallbackTo8888(t *testing.T) {
	c := NewTextureCache(discardLogger())
	rec := newRecordingRenderer()
	rec.reject[GU_PSM_4444] = true
	bindOrFail(t, c, TextureBinding{Format: GU_PSM_4444, Width: 2, Height: 2, BufferWidth: 2, Source: solidTexture(GU_PSM_4444, 2, 2, 0x80FF0000)})
	if _, err := c.UploadIfNeeded(rec); err != nil {
		t.Fatalf("UploadIfNeeded: %v", err)
	}
	up := rec.uploads[0].Texture
	if up.Format != GU_PSM_8888 {
		t.Fatalf("uploaded format %d, want 8888", up.Format)
	}
	if got := binary.LittleEndian.Uint32(up.Pixels); got != 0x88FF0000 {
		t.Fatalf("converted texel %#08x, want 0x88FF0000", got)
	}
}

func TestTextureCache_RejectedEverywhere(t *testing.T) {
	c := NewTextureCache(discardLogger())
	rec := newRecordingRenderer()
	rec.reject[GU_PSM_5551] = true
	rec.reject[GU_PSM_8888] = true
	bindOrFail(t, c, TextureBinding{Format: GU_PSM_5551, Width: 2, Height: 2, BufferWidth: 2, Source: make([]byte, 8)})
	slot, err := c.UploadIfNeeded(rec)
	if !errors.Is(err, ErrTextureUpload) || slot != -1 {
		t.Fatalf("UploadIfNeeded = %d, %v", slot, err)
	}
	if c.Uploads != 0 {
		t.Fatalf("failed upload counted")
	}
}

func TestTextureCache_HeightPaddedToPow2(t *testing.T) {
	c := NewTextureCache(discardLogger())
	rec := newRecordingRenderer()
	bindOrFail(t, c, TextureBinding{Format: GU_PSM_8888, Width: 5, Height: 3, BufferWidth: 8, Source: make([]byte, 8*3*4)})
	c.UploadIfNeeded(rec)
	up := rec.uploads[0].Texture
	if up.Width != 8 || up.Height != 4 {
		t.Fatalf("host texture %dx%d, want 8x4", up.Width, up.Height)
	}
	if up.LogicalWidth != 8 || up.LogicalHeight != 3 {
		t.Fatalf("logical %dx%d, want 8x3", up.LogicalWidth, up.LogicalHeight)
	}
	if w, h := c.LogicalSize(); w != 8 || h != 3 {
		t.Fatalf("LogicalSize = %vx%v", w, h)
	}
}

func TestTextureCache_BindValidation(t *testing.T) {
	c := NewTextureCache(discardLogger())
	tests := []struct {
		name string
		b    TextureBinding
		want error
	}{
		{"buffer narrower than image", TextureBinding{Format: GU_PSM_8888, Width: 8, Height: 8, BufferWidth: 4, Source: make([]byte, 256)}, ErrBadTextureSize},
		{"too large", TextureBinding{Format: GU_PSM_8888, Width: 1024, Height: 8, BufferWidth: 1024, Source: make([]byte, 1024*8*4)}, ErrBadTextureSize},
		{"short source", TextureBinding{Format: GU_PSM_8888, Width: 8, Height: 8, BufferWidth: 8, Source: make([]byte, 255)}, ErrBadTextureSize},
		{"odd T4 row rounds up", TextureBinding{Format: GU_PSM_T4, Width: 3, Height: 1, BufferWidth: 3, Source: []byte{0x21}}, ErrBadTextureSize},
		{"unknown format", TextureBinding{Format: 9, Width: 8, Height: 8, BufferWidth: 8, Source: make([]byte, 256)}, ErrBadPixelFormat},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := c.Bind(tc.b); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if _, bound := c.Binding(); bound {
		t.Fatal("invalid bind left a binding")
	}
}
