// gu_texture.go - Texture and Palette Cache

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
gu_texture.go - Texture and Palette Cache

TexImage only records a binding; the texels reach the host lazily, at the
next draw, and only when no host slot already holds the same image. Host
slots are handed out round-robin.

Indexed formats (T4, T8) are expanded through the palette before upload.
Direct formats upload natively; a host that rejects the format gets one
retry with the image converted to 8888.

A slot is identified by its key: source buffer, width, height, buffer
width, format and, for indexed formats, the palette generation. Every
ClutLoad starts a new generation, so an indexed texture drawn after a
palette change is expanded and uploaded again.
*/

package main

import (
	"log/slog"
	"unsafe"
)

// TextureBinding is the texture selected by TexMode + TexImage.
type TextureBinding struct {
	Format      int
	Width       int
	Height      int
	BufferWidth int
	Source      []byte
}

// logicalSize is the area normalized u,v map onto.
func (b TextureBinding) logicalSize() (int, int) {
	return b.BufferWidth, b.Height
}

// textureKey identifies the image held by a host slot.
type textureKey struct {
	source     *byte
	sourceLen  int
	width      int
	height     int
	bufWidth   int
	format     int
	paletteGen uint64
}

// uploadResult is the outcome of one upload attempt loop.
type uploadResult int

const (
	uploadNative    uploadResult = iota // accepted in the source format
	uploadConverted                     // accepted after conversion to 8888
	uploadRejected                      // refused in every format tried
)

func (r uploadResult) String() string {
	switch r {
	case uploadNative:
		return "native"
	case uploadConverted:
		return "converted"
	}
	return "rejected"
}

// TextureCache tracks the bound texture, the palette and the host slots.
type TextureCache struct {
	logger *slog.Logger

	binding TextureBinding
	bound   bool

	palette       [GU_PALETTE_ENTRIES]uint32
	paletteFormat int
	paletteGen    uint64

	slots    [GU_TEXTURE_SLOTS]textureKey
	valid    [GU_TEXTURE_SLOTS]bool
	next     int
	selected int

	scratch []byte

	// Counters for the stats bar
	Uploads uint64
	Hits    uint64
}

// NewTextureCache creates an empty cache with an 8888 palette.
func NewTextureCache(logger *slog.Logger) *TextureCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextureCache{
		logger:        logger,
		paletteFormat: GU_PSM_8888,
		selected:      -1,
	}
}

// Bind records the texture used by subsequent draws. Nothing is uploaded.
func (c *TextureCache) Bind(b TextureBinding) error {
	if !isDirectFormat(b.Format) && !isIndexedFormat(b.Format) {
		return guErr("texture bind", ErrBadPixelFormat, "format %d", b.Format)
	}
	if b.Width <= 0 || b.Height <= 0 || b.Width > GU_MAX_TEXTURE_SIZE || b.Height > GU_MAX_TEXTURE_SIZE ||
		b.BufferWidth < b.Width || b.BufferWidth > GU_MAX_TEXTURE_SIZE {
		return guErr("texture bind", ErrBadTextureSize, "%dx%d, buffer width %d", b.Width, b.Height, b.BufferWidth)
	}
	if need := (b.BufferWidth*b.Height*PixelBits(b.Format) + 7) / 8; len(b.Source) < need {
		return guErr("texture bind", ErrBadTextureSize, "%d bytes, need %d", len(b.Source), need)
	}
	c.binding = b
	c.bound = true
	return nil
}

// Binding returns the current binding.
func (c *TextureCache) Binding() (TextureBinding, bool) {
	return c.binding, c.bound
}

// LogicalSize returns the size u,v are divided by under the 2D transform,
// or zero when no texture is bound.
func (c *TextureCache) LogicalSize() (float32, float32) {
	if !c.bound {
		return 0, 0
	}
	w, h := c.binding.logicalSize()
	return float32(w), float32(h)
}

// SetPaletteFormat selects the storage of palette entries for the next
// LoadPalette.
func (c *TextureCache) SetPaletteFormat(psm int) error {
	if !isDirectFormat(psm) {
		return guErr("clut mode", ErrBadPixelFormat, "format %d", psm)
	}
	c.paletteFormat = psm
	return nil
}

// LoadPalette reads blocks of 8 entries from src, converting them to 8888.
func (c *TextureCache) LoadPalette(blocks int, src []byte) error {
	n := min(blocks*GU_CLUT_BLOCK, GU_PALETTE_ENTRIES)
	if n < 0 {
		n = 0
	}
	size := PixelBits(c.paletteFormat) / 8
	if len(src) < n*size {
		return guErr("clut load", ErrPaletteShort, "%d entries from %d bytes", n, len(src))
	}
	for i := range n {
		c.palette[i] = readPixel(src, i*size, c.paletteFormat)
	}
	c.paletteGen++
	c.logger.Debug("palette loaded", "op", "clut load", "entries", n, "format", c.paletteFormat, "generation", c.paletteGen)
	return nil
}

// PaletteEntry returns a canonical palette entry.
func (c *TextureCache) PaletteEntry(i int) uint32 {
	return c.palette[i&(GU_PALETTE_ENTRIES-1)]
}

func (c *TextureCache) key() textureKey {
	b := c.binding
	k := textureKey{
		source:    unsafe.SliceData(b.Source),
		sourceLen: len(b.Source),
		width:     b.Width,
		height:    b.Height,
		bufWidth:  b.BufferWidth,
		format:    b.Format,
	}
	if isIndexedFormat(b.Format) {
		k.paletteGen = c.paletteGen
	}
	return k
}

// Invalidate drops every cached slot, e.g. after the host lost its
// textures.
func (c *TextureCache) Invalidate() {
	c.valid = [GU_TEXTURE_SLOTS]bool{}
	c.selected = -1
}

// UploadIfNeeded makes sure the bound texture is resident on the host and
// selected. It returns the host slot, or -1 when no texture is bound.
func (c *TextureCache) UploadIfNeeded(host HostRenderer) (int, error) {
	if !c.bound {
		return -1, nil
	}
	k := c.key()
	for slot := range c.slots {
		if c.valid[slot] && c.slots[slot] == k {
			c.Hits++
			if c.selected != slot {
				host.BindTexture(slot)
				c.selected = slot
			}
			return slot, nil
		}
	}

	slot := c.next
	c.next = (c.next + 1) % GU_TEXTURE_SLOTS
	c.valid[slot] = false

	result, err := c.upload(host, slot)
	if result == uploadRejected {
		c.logger.Warn("texture upload failed", "op", "texture upload", "format", c.binding.Format, "slot", slot, "err", err)
		return -1, guErr("texture upload", ErrTextureUpload, "format %d, slot %d: %v", c.binding.Format, slot, err)
	}

	c.slots[slot] = k
	c.valid[slot] = true
	c.Uploads++
	host.BindTexture(slot)
	c.selected = slot
	c.logger.Debug("texture uploaded", "op", "texture upload", "format", c.binding.Format, "slot", slot, "result", result.String())
	return slot, nil
}

// upload tries the native format first and 8888 second.
func (c *TextureCache) upload(host HostRenderer, slot int) (uploadResult, error) {
	format := c.binding.Format
	if isIndexedFormat(format) {
		format = GU_PSM_8888
	}
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		err := host.UploadTexture(slot, c.expand(format))
		if err == nil {
			if format == c.binding.Format {
				return uploadNative, nil
			}
			return uploadConverted, nil
		}
		lastErr = err
		if format == GU_PSM_8888 {
			break
		}
		format = GU_PSM_8888
	}
	return uploadRejected, lastErr
}

// expand builds the host image of the binding in the requested format:
// buffer width wide, padded to a power-of-two height.
func (c *TextureCache) expand(format int) HostTexture {
	b := c.binding
	w := b.BufferWidth
	h := NextPow2(b.Height)
	bpp := PixelBits(format) / 8

	size := w * h * bpp
	if cap(c.scratch) < size {
		c.scratch = make([]byte, size)
	}
	dst := c.scratch[:size]
	clear(dst)

	switch {
	case b.Format == GU_PSM_T4:
		for y := 0; y < b.Height; y++ {
			for x := 0; x < w; x++ {
				p := y*w + x
				idx := b.Source[p/2]
				if p&1 == 0 {
					idx &= 0xF
				} else {
					idx >>= 4
				}
				writePixel(dst, p*4, GU_PSM_8888, c.palette[idx])
			}
		}
	case b.Format == GU_PSM_T8:
		for p := 0; p < w*b.Height; p++ {
			writePixel(dst, p*4, GU_PSM_8888, c.palette[b.Source[p]])
		}
	case format == b.Format:
		copy(dst, b.Source[:w*b.Height*bpp])
	default:
		srcBpp := PixelBits(b.Format) / 8
		for p := 0; p < w*b.Height; p++ {
			writePixel(dst, p*bpp, format, readPixel(b.Source, p*srcBpp, b.Format))
		}
	}

	lw, lh := b.logicalSize()
	return HostTexture{
		Format:        format,
		Width:         w,
		Height:        h,
		LogicalWidth:  lw,
		LogicalHeight: lh,
		Pixels:        dst,
	}
}
