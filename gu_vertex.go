// gu_vertex.go - Vertex Stream Decoder

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
gu_vertex.go - Vertex Stream Decoder

Decodes the packed GU vertex layout. The vertex type bit-field is parsed
once per draw call into a VertexDescriptor; DecodeVertex then reads one
record from the raw buffer.

Record layout (fields packed in this order, each optional except position):
  texture  u,v     int8 | int16 | float32
  color            5650 | 5551 | 4444 (16 bit) | 8888 (32 bit)
  normal   x,y,z   int8 | int16 | float32 (consumed, not interpreted)
  position x,y,z   int8 | int16 | float32

The record as a whole is padded to a multiple of its widest field.
*/

package main

import (
	"encoding/binary"
	"math"
)

// FieldWidth is the element width selector shared by the texture, normal,
// position and index fields. Zero means absent.
type FieldWidth uint32

const (
	WidthNone FieldWidth = iota
	Width8
	Width16
	Width32F
)

// Size returns the byte size of one element.
func (w FieldWidth) Size() int {
	switch w {
	case Width8:
		return 1
	case Width16:
		return 2
	case Width32F:
		return 4
	}
	return 0
}

// ColorFormat is the per-vertex colour storage.
type ColorFormat uint32

const (
	ColorNone ColorFormat = iota
	Color5650
	Color5551
	Color4444
	Color8888
)

// PSM returns the matching pixel storage mode.
func (c ColorFormat) PSM() int {
	return int(c) - 1
}

// Size returns the byte size of the colour field.
func (c ColorFormat) Size() int {
	switch c {
	case Color5650, Color5551, Color4444:
		return 2
	case Color8888:
		return 4
	}
	return 0
}

// VertexDescriptor is the parsed form of a vertex type bit-field.
type VertexDescriptor struct {
	TexCoordWidth FieldWidth
	ColorFormat   ColorFormat
	NormalWidth   FieldWidth
	VertexWidth   FieldWidth
	IndexWidth    FieldWidth
	Is2DTransform bool
}

// ParseVertexType splits the vertex type bit-field. Reserved colour
// selectors (1..3) read as absent. A descriptor without position is
// returned together with ErrNoPosition.
func ParseVertexType(vtype uint32) (VertexDescriptor, error) {
	d := VertexDescriptor{
		TexCoordWidth: FieldWidth((vtype & GU_TEXTURE_BITS) >> GU_TEXTURE_SHIFT),
		NormalWidth:   FieldWidth((vtype & GU_NORMAL_BITS) >> GU_NORMAL_SHIFT),
		VertexWidth:   FieldWidth((vtype & GU_VERTEX_BITS) >> GU_VERTEX_SHIFT),
		IndexWidth:    FieldWidth((vtype & GU_INDEX_BITS) >> GU_INDEX_SHIFT),
		Is2DTransform: vtype&GU_TRANSFORM_2D != 0,
	}
	if sel := (vtype & GU_COLOR_BITS) >> GU_COLOR_SHIFT; sel >= 4 {
		d.ColorFormat = ColorFormat(sel - 3)
	}
	if d.IndexWidth == Width32F {
		d.IndexWidth = WidthNone
	}
	if d.VertexWidth == WidthNone {
		return d, ErrNoPosition
	}
	return d, nil
}

// Bits packs the descriptor back into a vertex type bit-field.
func (d VertexDescriptor) Bits() uint32 {
	v := uint32(d.TexCoordWidth)<<GU_TEXTURE_SHIFT |
		uint32(d.NormalWidth)<<GU_NORMAL_SHIFT |
		uint32(d.VertexWidth)<<GU_VERTEX_SHIFT |
		uint32(d.IndexWidth)<<GU_INDEX_SHIFT
	if d.ColorFormat != ColorNone {
		v |= uint32(d.ColorFormat+3) << GU_COLOR_SHIFT
	}
	if d.Is2DTransform {
		v |= GU_TRANSFORM_2D
	}
	return v
}

// rawSize is the packed size of the fields, before record padding.
func (d VertexDescriptor) rawSize() int {
	return 2*d.TexCoordWidth.Size() + d.ColorFormat.Size() +
		3*d.NormalWidth.Size() + 3*d.VertexWidth.Size()
}

// alignment is the widest element present.
func (d VertexDescriptor) alignment() int {
	a := 1
	for _, s := range []int{d.TexCoordWidth.Size(), d.ColorFormat.Size(), d.NormalWidth.Size(), d.VertexWidth.Size()} {
		if s > a {
			a = s
		}
	}
	return a
}

// Stride is the size of one padded vertex record.
func (d VertexDescriptor) Stride() int {
	a := d.alignment()
	return (d.rawSize() + a - 1) / a * a
}

// DecodedVertex is one vertex read from a buffer. Color is canonical 8888.
type DecodedVertex struct {
	U, V             float32
	Color            uint32
	NX, NY, NZ       float32
	X, Y, Z          float32
	HasExplicitColor bool
}

func readElement(buf []byte, off int, w FieldWidth) float32 {
	switch w {
	case Width8:
		return float32(int8(buf[off]))
	case Width16:
		return float32(int16(binary.LittleEndian.Uint16(buf[off:])))
	case Width32F:
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
	}
	return 0
}

func writeElement(buf []byte, off int, w FieldWidth, v float32) {
	switch w {
	case Width8:
		buf[off] = byte(int8(roundToInt(v)))
	case Width16:
		binary.LittleEndian.PutUint16(buf[off:], uint16(int16(roundToInt(v))))
	case Width32F:
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
	}
}

func roundToInt(v float32) int {
	return int(math.Round(float64(v)))
}

// DecodeVertex reads the record starting at off. texW and texH are the
// logical size of the bound texture, used to normalize u,v under the 2D
// transform; a zero size leaves the coordinates untouched. It returns the
// offset of the next record.
func DecodeVertex(buf []byte, off int, d VertexDescriptor, texW, texH float32) (DecodedVertex, int, error) {
	v := DecodedVertex{Color: 0xFFFFFFFF}
	if d.VertexWidth == WidthNone {
		return v, off, ErrNoPosition
	}
	if off < 0 || off+d.rawSize() > len(buf) {
		return v, off, ErrVertexBufferShort
	}
	p := off

	if w := d.TexCoordWidth; w != WidthNone {
		s := w.Size()
		v.U = readElement(buf, p, w)
		v.V = readElement(buf, p+s, w)
		p += 2 * s
	}

	switch d.ColorFormat {
	case Color5650, Color5551, Color4444:
		v.Color = ConvertTo8888(d.ColorFormat.PSM(), uint32(binary.LittleEndian.Uint16(buf[p:])))
		v.HasExplicitColor = true
		p += 2
	case Color8888:
		v.Color = binary.LittleEndian.Uint32(buf[p:])
		v.HasExplicitColor = true
		p += 4
	}

	if w := d.NormalWidth; w != WidthNone {
		s := w.Size()
		v.NX = readElement(buf, p, w)
		v.NY = readElement(buf, p+s, w)
		v.NZ = readElement(buf, p+2*s, w)
		p += 3 * s
	}

	s := d.VertexWidth.Size()
	v.X = readElement(buf, p, d.VertexWidth)
	v.Y = readElement(buf, p+s, d.VertexWidth)
	v.Z = readElement(buf, p+2*s, d.VertexWidth)

	if d.Is2DTransform {
		if texW > 0 {
			v.U /= texW
		}
		if texH > 0 {
			v.V /= texH
		}
	}

	return v, off + d.Stride(), nil
}

// EncodeVertex writes v at off using the descriptor's layout and returns
// the offset of the next record. Under the 2D transform u,v are scaled back
// to texel units. Padding bytes are left untouched.
func EncodeVertex(buf []byte, off int, d VertexDescriptor, v DecodedVertex, texW, texH float32) (int, error) {
	if d.VertexWidth == WidthNone {
		return off, ErrNoPosition
	}
	if off < 0 || off+d.rawSize() > len(buf) {
		return off, ErrVertexBufferShort
	}
	p := off

	if w := d.TexCoordWidth; w != WidthNone {
		u, t := v.U, v.V
		if d.Is2DTransform {
			if texW > 0 {
				u *= texW
			}
			if texH > 0 {
				t *= texH
			}
		}
		s := w.Size()
		writeElement(buf, p, w, u)
		writeElement(buf, p+s, w, t)
		p += 2 * s
	}

	switch d.ColorFormat {
	case Color5650, Color5551, Color4444:
		binary.LittleEndian.PutUint16(buf[p:], uint16(ConvertFrom8888(d.ColorFormat.PSM(), v.Color)))
		p += 2
	case Color8888:
		binary.LittleEndian.PutUint32(buf[p:], v.Color)
		p += 4
	}

	if w := d.NormalWidth; w != WidthNone {
		s := w.Size()
		writeElement(buf, p, w, v.NX)
		writeElement(buf, p+s, w, v.NY)
		writeElement(buf, p+2*s, w, v.NZ)
		p += 3 * s
	}

	s := d.VertexWidth.Size()
	writeElement(buf, p, d.VertexWidth, v.X)
	writeElement(buf, p+s, d.VertexWidth, v.Y)
	writeElement(buf, p+2*s, d.VertexWidth, v.Z)

	return off + d.Stride(), nil
}

// EncodeVertices builds a vertex buffer for the given layout.
func EncodeVertices(d VertexDescriptor, verts []DecodedVertex, texW, texH float32) ([]byte, error) {
	buf := make([]byte, len(verts)*d.Stride())
	off := 0
	for _, v := range verts {
		next, err := EncodeVertex(buf, off, d, v, texW, texH)
		if err != nil {
			return nil, err
		}
		off = next
	}
	return buf, nil
}

// readIndex fetches entry i of an 8 or 16 bit index buffer.
func readIndex(indices []byte, i int, w FieldWidth) (int, error) {
	switch w {
	case Width8:
		if i >= len(indices) {
			return 0, ErrIndexBufferShort
		}
		return int(indices[i]), nil
	case Width16:
		if 2*i+2 > len(indices) {
			return 0, ErrIndexBufferShort
		}
		return int(binary.LittleEndian.Uint16(indices[2*i:])), nil
	}
	return i, nil
}
