// gu_assembler.go - Primitive Assembler

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
gu_assembler.go - Primitive Assembler

Turns one DrawArray call into host shapes. All vertices are decoded before
the first shape is produced, so a malformed call draws nothing.

  SPRITES         vertex pairs, each expanded to a 4 corner quad
  TRIANGLE_STRIP  fixed groups of 4 vertices, one strip per group
  TRIANGLES       groups of 3
  LINES           pairs
  LINE_STRIP      one strip over the whole call
  TRIANGLE_FAN    one fan over the whole call
  POINTS          one point per vertex
*/

package main

// ShapeKind is the host primitive emitted by the assembler.
type ShapeKind int

const (
	ShapePoint ShapeKind = iota
	ShapeLines
	ShapeLineStrip
	ShapeTriangles
	ShapeTriangleStrip
	ShapeTriangleFan
	ShapeQuad
)

func (k ShapeKind) String() string {
	switch k {
	case ShapePoint:
		return "point"
	case ShapeLines:
		return "lines"
	case ShapeLineStrip:
		return "line-strip"
	case ShapeTriangles:
		return "triangles"
	case ShapeTriangleStrip:
		return "triangle-strip"
	case ShapeTriangleFan:
		return "triangle-fan"
	case ShapeQuad:
		return "quad"
	}
	return "unknown"
}

// HostVertex is a vertex ready for the host renderer: screen position,
// normalized texture coordinates and the final (ambient applied) colour.
type HostVertex struct {
	X, Y, Z float32
	U, V    float32
	Color   uint32
}

// HostShape is one native draw operation.
type HostShape struct {
	Kind     ShapeKind
	Vertices []HostVertex
}

// primitiveGroup returns the vertex multiple a primitive requires and the
// minimum count of a non-empty call.
func primitiveGroup(prim int) (multiple, minimum int, ok bool) {
	switch prim {
	case GU_POINTS:
		return 1, 1, true
	case GU_LINES, GU_SPRITES:
		return 2, 2, true
	case GU_LINE_STRIP:
		return 1, 2, true
	case GU_TRIANGLES:
		return 3, 3, true
	case GU_TRIANGLE_STRIP:
		return 4, 4, true
	case GU_TRIANGLE_FAN:
		return 1, 3, true
	}
	return 0, 0, false
}

// PrimitiveAssembler converts decoded vertex streams into host shapes.
// TexW/TexH are the logical size of the bound texture and Shade maps a
// vertex colour to the colour sent to the host.
type PrimitiveAssembler struct {
	TexW, TexH float32
	Shade      func(uint32) uint32

	decoded []DecodedVertex
}

func (a *PrimitiveAssembler) hostVertex(v DecodedVertex, color uint32) HostVertex {
	return HostVertex{X: v.X, Y: v.Y, Z: v.Z, U: v.U, V: v.V, Color: color}
}

func (a *PrimitiveAssembler) shade(c uint32) uint32 {
	if a.Shade == nil {
		return c
	}
	return a.Shade(c)
}

// Assemble decodes count vertices (through indices when the descriptor has
// an index width) and emits the host shapes for prim.
func (a *PrimitiveAssembler) Assemble(prim int, d VertexDescriptor, count int, indices, vertices []byte) ([]HostShape, error) {
	multiple, minimum, ok := primitiveGroup(prim)
	if !ok {
		return nil, guErr("assemble", ErrBadPrimitive, "primitive %d", prim)
	}
	if d.VertexWidth == WidthNone {
		return nil, guErr("assemble", ErrNoPosition, "vertex type %#x", d.Bits())
	}
	if count == 0 {
		return nil, nil
	}
	if count < minimum || count%multiple != 0 {
		return nil, guErr("assemble", ErrPrimitiveCount, "%d vertices for primitive %d", count, prim)
	}

	a.decoded = a.decoded[:0]
	stride := d.Stride()
	for i := 0; i < count; i++ {
		idx, err := readIndex(indices, i, d.IndexWidth)
		if err != nil {
			return nil, guErr("assemble", err, "index %d", i)
		}
		v, _, err := DecodeVertex(vertices, idx*stride, d, a.TexW, a.TexH)
		if err != nil {
			return nil, guErr("assemble", err, "vertex %d", idx)
		}
		a.decoded = append(a.decoded, v)
	}

	switch prim {
	case GU_SPRITES:
		return a.sprites(), nil
	case GU_TRIANGLE_STRIP:
		return a.groups(ShapeTriangleStrip, 4), nil
	case GU_TRIANGLES:
		return a.groups(ShapeTriangles, 3), nil
	case GU_LINES:
		return a.groups(ShapeLines, 2), nil
	case GU_POINTS:
		return a.groups(ShapePoint, 1), nil
	case GU_LINE_STRIP:
		return a.groups(ShapeLineStrip, count), nil
	default:
		return a.groups(ShapeTriangleFan, count), nil
	}
}

func (a *PrimitiveAssembler) groups(kind ShapeKind, size int) []HostShape {
	shapes := make([]HostShape, 0, len(a.decoded)/size)
	for i := 0; i+size <= len(a.decoded); i += size {
		verts := make([]HostVertex, size)
		for j := range size {
			v := a.decoded[i+j]
			verts[j] = a.hostVertex(v, a.shade(v.Color))
		}
		shapes = append(shapes, HostShape{Kind: kind, Vertices: verts})
	}
	return shapes
}

// sprites expands corner pairs into quads wound top-left, top-right,
// bottom-right, bottom-left whatever order the corners were given in.
// Colour comes from the first vertex of the pair.
func (a *PrimitiveAssembler) sprites() []HostShape {
	shapes := make([]HostShape, 0, len(a.decoded)/2)
	for i := 0; i+1 < len(a.decoded); i += 2 {
		v0, v1 := a.decoded[i], a.decoded[i+1]
		color := a.shade(v0.Color)

		x0, u0, x1, u1 := v0.X, v0.U, v1.X, v1.U
		if x1 < x0 {
			x0, u0, x1, u1 = x1, u1, x0, u0
		}
		y0, t0, y1, t1 := v0.Y, v0.V, v1.Y, v1.V
		if y1 < y0 {
			y0, t0, y1, t1 = y1, t1, y0, t0
		}

		shapes = append(shapes, HostShape{
			Kind: ShapeQuad,
			Vertices: []HostVertex{
				{X: x0, Y: y0, U: u0, V: t0, Color: color},
				{X: x1, Y: y0, U: u1, V: t0, Color: color},
				{X: x1, Y: y1, U: u1, V: t1, Color: color},
				{X: x0, Y: y1, U: u0, V: t1, Color: color},
			},
		})
	}
	return shapes
}
