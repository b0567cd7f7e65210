// gu_vertex_test.go - Tests for the vertex stream decoder and pixel formats

package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

// ===== Sprint 1: Vertex type parsing =====

func TestParseVertexType_Fields(t *testing.T) {
	d, err := ParseVertexType(GU_TEXTURE_16BIT | GU_COLOR_5650 | GU_VERTEX_16BIT | GU_TRANSFORM_2D)
	if err != nil {
		t.Fatalf("ParseVertexType: %v", err)
	}
	if d.TexCoordWidth != Width16 || d.ColorFormat != Color5650 || d.VertexWidth != Width16 {
		t.Fatalf("unexpected descriptor %+v", d)
	}
	if d.NormalWidth != WidthNone || d.IndexWidth != WidthNone || !d.Is2DTransform {
		t.Fatalf("unexpected descriptor %+v", d)
	}
}

func TestParseVertexType_BitsRoundTrip(t *testing.T) {
	vtype := uint32(GU_TEXTURE_32BITF | GU_COLOR_8888 | GU_NORMAL_8BIT | GU_VERTEX_32BITF | GU_INDEX_16BIT | GU_TRANSFORM_2D)
	d, err := ParseVertexType(vtype)
	if err != nil {
		t.Fatalf("ParseVertexType: %v", err)
	}
	if got := d.Bits(); got != vtype {
		t.Fatalf("Bits() = %#x, want %#x", got, vtype)
	}
}

func TestParseVertexType_ReservedColorIsAbsent(t *testing.T) {
	d, err := ParseVertexType(1<<GU_COLOR_SHIFT | GU_VERTEX_16BIT)
	if err != nil {
		t.Fatalf("ParseVertexType: %v", err)
	}
	if d.ColorFormat != ColorNone {
		t.Fatalf("reserved selector decoded as %v", d.ColorFormat)
	}
}

func TestParseVertexType_NoPosition(t *testing.T) {
	if _, err := ParseVertexType(GU_COLOR_8888 | GU_TEXTURE_16BIT); !errors.Is(err, ErrNoPosition) {
		t.Fatalf("expected ErrNoPosition, got %v", err)
	}
}

func TestVertexDescriptor_Stride(t *testing.T) {
	tests := []struct {
		name  string
		vtype uint32
		want  int
	}{
		{"position float", GU_VERTEX_32BITF, 12},
		{"position byte", GU_VERTEX_8BIT, 3},
		{"uv8 padded to float", GU_TEXTURE_8BIT | GU_VERTEX_32BITF, 16},
		{"color32 padded", GU_COLOR_8888 | GU_VERTEX_16BIT, 12},
		{"normal8 padded to short", GU_NORMAL_8BIT | GU_VERTEX_16BIT, 10},
		{"5551 with byte position", GU_COLOR_5551 | GU_VERTEX_8BIT, 6},
		{"full float", GU_TEXTURE_32BITF | GU_COLOR_8888 | GU_VERTEX_32BITF, 24},
		{"sprite layout", GU_TEXTURE_16BIT | GU_COLOR_5650 | GU_VERTEX_16BIT, 12},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := ParseVertexType(tc.vtype)
			if err != nil {
				t.Fatalf("ParseVertexType: %v", err)
			}
			if got := d.Stride(); got != tc.want {
				t.Fatalf("Stride() = %d, want %d", got, tc.want)
			}
		})
	}
}

// ===== Sprint 2: Decoding =====

// packedSprite builds one TEX_16BIT|COLOR_8888|VERTEX_16BIT record by hand.
func packedSprite(u, v int16, color uint32, x, y, z int16) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint16(buf[0:], uint16(u))
	binary.LittleEndian.PutUint16(buf[2:], uint16(v))
	binary.LittleEndian.PutUint32(buf[4:], color)
	binary.LittleEndian.PutUint16(buf[8:], uint16(x))
	binary.LittleEndian.PutUint16(buf[10:], uint16(y))
	binary.LittleEndian.PutUint16(buf[12:], uint16(z))
	return buf
}

func TestDecodeVertex_2DNormalizesTexCoords(t *testing.T) {
	d, _ := ParseVertexType(GU_TEXTURE_16BIT | GU_COLOR_8888 | GU_VERTEX_16BIT | GU_TRANSFORM_2D)
	buf := packedSprite(16, 8, 0xFF112233, -5, 100, 0)

	v, next, err := DecodeVertex(buf, 0, d, 32, 16)
	if err != nil {
		t.Fatalf("DecodeVertex: %v", err)
	}
	if next != 16 {
		t.Fatalf("next offset = %d, want 16", next)
	}
	if v.U != 0.5 || v.V != 0.5 {
		t.Fatalf("uv = (%v,%v), want (0.5,0.5)", v.U, v.V)
	}
	if v.Color != 0xFF112233 || !v.HasExplicitColor {
		t.Fatalf("color = %#x explicit=%v", v.Color, v.HasExplicitColor)
	}
	if v.X != -5 || v.Y != 100 || v.Z != 0 {
		t.Fatalf("position = (%v,%v,%v)", v.X, v.Y, v.Z)
	}
}

func TestDecodeVertex_3DKeepsTexCoords(t *testing.T) {
	d, _ := ParseVertexType(GU_TEXTURE_16BIT | GU_COLOR_8888 | GU_VERTEX_16BIT)
	v, _, err := DecodeVertex(packedSprite(16, 8, 0, 0, 0, 0), 0, d, 32, 16)
	if err != nil {
		t.Fatalf("DecodeVertex: %v", err)
	}
	if v.U != 16 || v.V != 8 {
		t.Fatalf("uv = (%v,%v), want (16,8)", v.U, v.V)
	}
}

func TestDecodeVertex_DefaultColorIsOpaqueWhite(t *testing.T) {
	d, _ := ParseVertexType(GU_VERTEX_32BITF)
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(1.5))
	v, _, err := DecodeVertex(buf, 0, d, 0, 0)
	if err != nil {
		t.Fatalf("DecodeVertex: %v", err)
	}
	if v.Color != 0xFFFFFFFF || v.HasExplicitColor {
		t.Fatalf("color = %#x explicit=%v", v.Color, v.HasExplicitColor)
	}
	if v.X != 1.5 {
		t.Fatalf("x = %v, want 1.5", v.X)
	}
}

func TestDecodeVertex_16BitColorExpands(t *testing.T) {
	d, _ := ParseVertexType(GU_COLOR_5650 | GU_VERTEX_16BIT)
	buf := make([]byte, d.Stride())
	binary.LittleEndian.PutUint16(buf, 0xF800) // blue only
	v, _, err := DecodeVertex(buf, 0, d, 0, 0)
	if err != nil {
		t.Fatalf("DecodeVertex: %v", err)
	}
	if v.Color != 0xFFFF0000 {
		t.Fatalf("color = %#08x, want 0xFFFF0000", v.Color)
	}
}

func TestDecodeVertex_ShortBuffer(t *testing.T) {
	d, _ := ParseVertexType(GU_VERTEX_32BITF)
	if _, _, err := DecodeVertex(make([]byte, 11), 0, d, 0, 0); !errors.Is(err, ErrVertexBufferShort) {
		t.Fatalf("expected ErrVertexBufferShort, got %v", err)
	}
}

func TestEncodeVertices_DecodesBack(t *testing.T) {
	d, _ := ParseVertexType(GU_TEXTURE_16BIT | GU_COLOR_4444 | GU_NORMAL_8BIT | GU_VERTEX_16BIT | GU_TRANSFORM_2D)
	in := []DecodedVertex{
		{U: 0.25, V: 1, Color: 0xFF88CC00, NX: 1, NY: -1, NZ: 0, X: 10, Y: -20, Z: 3},
		{U: 0, V: 0.5, Color: 0x00FFFFFF, X: 479, Y: 271},
	}
	buf, err := EncodeVertices(d, in, 64, 32)
	if err != nil {
		t.Fatalf("EncodeVertices: %v", err)
	}
	if len(buf) != 2*d.Stride() {
		t.Fatalf("buffer length %d, want %d", len(buf), 2*d.Stride())
	}
	off := 0
	for i, want := range in {
		got, next, err := DecodeVertex(buf, off, d, 64, 32)
		if err != nil {
			t.Fatalf("vertex %d: %v", i, err)
		}
		off = next
		if got.U != want.U || got.V != want.V || got.X != want.X || got.Y != want.Y || got.Z != want.Z {
			t.Fatalf("vertex %d: got %+v, want %+v", i, got, want)
		}
		if got.Color != want.Color {
			t.Fatalf("vertex %d: color %#08x, want %#08x", i, got.Color, want.Color)
		}
	}
}

func TestColorFormat_PSMAndSize(t *testing.T) {
	tests := []struct {
		format ColorFormat
		psm    int
		size   int
	}{
		{Color5650, GU_PSM_5650, 2},
		{Color5551, GU_PSM_5551, 2},
		{Color4444, GU_PSM_4444, 2},
		{Color8888, GU_PSM_8888, 4},
	}
	for _, tc := range tests {
		if tc.format.PSM() != tc.psm || tc.format.Size() != tc.size {
			t.Fatalf("format %d: psm %d size %d, want %d and %d", tc.format, tc.format.PSM(), tc.format.Size(), tc.psm, tc.size)
		}
	}
	if ColorNone.Size() != 0 {
		t.Fatalf("absent colour has size %d", ColorNone.Size())
	}
}

// fillVertexRecord writes random field values in layout order and leaves
// the record padding zero.
func fillVertexRecord(rng *rand.Rand, rec []byte, d VertexDescriptor) {
	p := 0
	elems := func(w FieldWidth, n int) {
		for range n {
			switch w {
			case Width8:
				rec[p] = byte(rng.IntN(256))
			case Width16:
				binary.LittleEndian.PutUint16(rec[p:], uint16(rng.IntN(1<<16)))
			case Width32F:
				binary.LittleEndian.PutUint32(rec[p:], math.Float32bits(float32(rng.NormFloat64()*1000)))
			}
			p += w.Size()
		}
	}
	elems(d.TexCoordWidth, 2)
	for range d.ColorFormat.Size() {
		rec[p] = byte(rng.IntN(256))
		p++
	}
	elems(d.NormalWidth, 3)
	elems(d.VertexWidth, 3)
}

func TestEncodeVertices_RoundTripEveryLayout(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	layouts := 0
	for tex := uint32(0); tex < 4; tex++ {
		for _, col := range []uint32{0, 4, 5, 6, 7} {
			for normal := uint32(0); normal < 4; normal++ {
				for pos := uint32(1); pos < 4; pos++ {
					for idx := uint32(0); idx < 3; idx++ {
						for _, xform := range []uint32{0, GU_TRANSFORM_2D} {
							vtype := tex<<GU_TEXTURE_SHIFT | col<<GU_COLOR_SHIFT | normal<<GU_NORMAL_SHIFT |
								pos<<GU_VERTEX_SHIFT | idx<<GU_INDEX_SHIFT | xform
							d, err := ParseVertexType(vtype)
							if err != nil {
								t.Fatalf("vtype %#x: %v", vtype, err)
							}
							if d.Bits() != vtype {
								t.Fatalf("vtype %#x: Bits() = %#x", vtype, d.Bits())
							}

							const n = 3
							src := make([]byte, n*d.Stride())
							for i := range n {
								fillVertexRecord(rng, src[i*d.Stride():], d)
							}
							verts := make([]DecodedVertex, n)
							off := 0
							for i := range verts {
								verts[i], off, err = DecodeVertex(src, off, d, 64, 32)
								if err != nil {
									t.Fatalf("vtype %#x vertex %d: %v", vtype, i, err)
								}
							}
							got, err := EncodeVertices(d, verts, 64, 32)
							if err != nil {
								t.Fatalf("vtype %#x: EncodeVertices: %v", vtype, err)
							}
							if !bytes.Equal(got, src) {
								t.Fatalf("vtype %#x: re-encoded % x, want % x", vtype, got, src)
							}
							layouts++
						}
					}
				}
			}
		}
	}
	if layouts != 4*5*4*3*3*2 {
		t.Fatalf("checked %d layouts", layouts)
	}
}

func TestReadIndex_Widths(t *testing.T) {
	idx8 := []byte{7, 3}
	if i, err := readIndex(idx8, 1, Width8); err != nil || i != 3 {
		t.Fatalf("8 bit index = %d, %v", i, err)
	}
	idx16 := []byte{0x34, 0x12}
	if i, err := readIndex(idx16, 0, Width16); err != nil || i != 0x1234 {
		t.Fatalf("16 bit index = %#x, %v", i, err)
	}
	if _, err := readIndex(idx16, 1, Width16); !errors.Is(err, ErrIndexBufferShort) {
		t.Fatalf("expected ErrIndexBufferShort, got %v", err)
	}
	if i, err := readIndex(nil, 42, WidthNone); err != nil || i != 42 {
		t.Fatalf("unindexed = %d, %v", i, err)
	}
}

// ===== Sprint 3: Pixel formats =====

func TestConvertTo8888_FullScale(t *testing.T) {
	tests := []struct {
		psm  int
		in   uint32
		want uint32
	}{
		{GU_PSM_5650, 0xFFFF, 0xFFFFFFFF},
		{GU_PSM_5650, 0x001F, 0xFF0000FF},
		{GU_PSM_5551, 0x7FFF, 0x00FFFFFF},
		{GU_PSM_5551, 0x8000, 0xFF000000},
		{GU_PSM_4444, 0xF00F, 0xFF0000FF},
		{GU_PSM_8888, 0x12345678, 0x12345678},
	}
	for _, tc := range tests {
		if got := ConvertTo8888(tc.psm, tc.in); got != tc.want {
			t.Errorf("ConvertTo8888(%d, %#x) = %#08x, want %#08x", tc.psm, tc.in, got, tc.want)
		}
	}
}

func TestConvertFrom8888_InvertsExpansion(t *testing.T) {
	for _, psm := range []int{GU_PSM_5650, GU_PSM_5551, GU_PSM_4444} {
		for c := uint32(0); c < 0x10000; c += 0x101 {
			if got := ConvertFrom8888(psm, ConvertTo8888(psm, c)); got != c {
				t.Fatalf("psm %d: %#04x -> %#04x", psm, c, got)
			}
		}
	}
}

func TestModulateColor(t *testing.T) {
	if got := modulateColor(0xFFFFFFFF, 0x80FF00FF); got != 0x80FF00FF {
		t.Fatalf("white modulated = %#08x", got)
	}
	if got := modulateColor(0xFF808080, 0xFFFFFFFF); got != 0xFF808080 {
		t.Fatalf("identity modulation = %#08x", got)
	}
}

func TestNextPow2(t *testing.T) {
	for in, want := range map[int]int{1: 1, 3: 4, 16: 16, 17: 32, 272: 512} {
		if got := NextPow2(in); got != want {
			t.Errorf("NextPow2(%d) = %d, want %d", in, got, want)
		}
	}
}
