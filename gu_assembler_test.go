// gu_assembler_test.go - Tests for primitive assembly

package main

import (
	"errors"
	"testing"
)

const testLayout = GU_COLOR_8888 | GU_TEXTURE_32BITF | GU_VERTEX_32BITF | GU_TRANSFORM_2D

func assembleVerts(t *testing.T, prim int, verts []DecodedVertex) ([]HostShape, error) {
	t.Helper()
	d, err := ParseVertexType(testLayout)
	if err != nil {
		t.Fatalf("ParseVertexType: %v", err)
	}
	buf, err := EncodeVertices(d, verts, 0, 0)
	if err != nil {
		t.Fatalf("EncodeVertices: %v", err)
	}
	var a PrimitiveAssembler
	return a.Assemble(prim, d, len(verts), nil, buf)
}

func nVerts(n int) []DecodedVertex {
	verts := make([]DecodedVertex, n)
	for i := range verts {
		verts[i] = DecodedVertex{X: float32(i), Y: float32(2 * i), Color: 0xFF000000 | uint32(i)}
	}
	return verts
}

// ===== Sprint 1: Vertex counts =====

func TestAssemble_Counts(t *testing.T) {
	tests := []struct {
		name      string
		prim      int
		count     int
		shapes    int
		perShape  int
		wantError bool
	}{
		{"points", GU_POINTS, 3, 3, 1, false},
		{"lines", GU_LINES, 4, 2, 2, false},
		{"lines odd", GU_LINES, 3, 0, 0, true},
		{"line strip", GU_LINE_STRIP, 5, 1, 5, false},
		{"line strip single", GU_LINE_STRIP, 1, 0, 0, true},
		{"triangles", GU_TRIANGLES, 6, 2, 3, false},
		{"triangles short", GU_TRIANGLES, 4, 0, 0, true},
		{"strip groups of four", GU_TRIANGLE_STRIP, 8, 2, 4, false},
		{"strip of six", GU_TRIANGLE_STRIP, 6, 0, 0, true},
		{"fan", GU_TRIANGLE_FAN, 5, 1, 5, false},
		{"fan of two", GU_TRIANGLE_FAN, 2, 0, 0, true},
		{"sprites", GU_SPRITES, 4, 2, 4, false},
		{"sprites odd", GU_SPRITES, 3, 0, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			shapes, err := assembleVerts(t, tc.prim, nVerts(tc.count))
			if tc.wantError {
				if !errors.Is(err, ErrPrimitiveCount) {
					t.Fatalf("expected ErrPrimitiveCount, got %v", err)
				}
				if shapes != nil {
					t.Fatalf("failed call produced %d shapes", len(shapes))
				}
				return
			}
			if err != nil {
				t.Fatalf("Assemble: %v", err)
			}
			if len(shapes) != tc.shapes {
				t.Fatalf("got %d shapes, want %d", len(shapes), tc.shapes)
			}
			for i, s := range shapes {
				if len(s.Vertices) != tc.perShape {
					t.Fatalf("shape %d has %d vertices, want %d", i, len(s.Vertices), tc.perShape)
				}
			}
		})
	}
}

func TestAssemble_ZeroCountDrawsNothing(t *testing.T) {
	shapes, err := assembleVerts(t, GU_TRIANGLES, nil)
	if err != nil || shapes != nil {
		t.Fatalf("empty draw: shapes=%v err=%v", shapes, err)
	}
}

func TestAssemble_UnknownPrimitive(t *testing.T) {
	if _, err := assembleVerts(t, 7, nVerts(3)); !errors.Is(err, ErrBadPrimitive) {
		t.Fatalf("expected ErrBadPrimitive, got %v", err)
	}
}

func TestAssemble_StripKeepsOrderPerGroup(t *testing.T) {
	shapes, err := assembleVerts(t, GU_TRIANGLE_STRIP, nVerts(8))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if shapes[1].Kind != ShapeTriangleStrip {
		t.Fatalf("kind = %v", shapes[1].Kind)
	}
	if shapes[1].Vertices[0].X != 4 || shapes[1].Vertices[3].X != 7 {
		t.Fatalf("second strip spans x %v..%v, want 4..7", shapes[1].Vertices[0].X, shapes[1].Vertices[3].X)
	}
}

// ===== Sprint 2: Sprites =====

func TestAssemble_SpriteWinding(t *testing.T) {
	// Bottom-right corner first: the quad still starts top-left.
	shapes, err := assembleVerts(t, GU_SPRITES, []DecodedVertex{
		{X: 50, Y: 40, U: 1, V: 1, Color: 0xFF0000FF},
		{X: 10, Y: 20, U: 0, V: 0, Color: 0xFF00FF00},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	q := shapes[0]
	if q.Kind != ShapeQuad {
		t.Fatalf("kind = %v, want quad", q.Kind)
	}
	want := []HostVertex{
		{X: 10, Y: 20, U: 0, V: 0},
		{X: 50, Y: 20, U: 1, V: 0},
		{X: 50, Y: 40, U: 1, V: 1},
		{X: 10, Y: 40, U: 0, V: 1},
	}
	for i, w := range want {
		v := q.Vertices[i]
		if v.X != w.X || v.Y != w.Y || v.U != w.U || v.V != w.V {
			t.Fatalf("corner %d = %+v, want %+v", i, v, w)
		}
		if v.Color != 0xFF0000FF {
			t.Fatalf("corner %d colour %#08x, want first vertex colour", i, v.Color)
		}
	}
}

func TestAssemble_SpriteFlippedTexture(t *testing.T) {
	// u decreasing while x increases mirrors the image; the swap must
	// keep each u with its x.
	shapes, err := assembleVerts(t, GU_SPRITES, []DecodedVertex{
		{X: 0, Y: 0, U: 1, V: 0},
		{X: 8, Y: 8, U: 0, V: 1},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	q := shapes[0].Vertices
	if q[0].U != 1 || q[1].U != 0 {
		t.Fatalf("mirrored u lost: %+v", q)
	}
}

// ===== Sprint 3: Indices, shading and atomicity =====

func TestAssemble_Indexed(t *testing.T) {
	d, _ := ParseVertexType(testLayout | GU_INDEX_8BIT)
	buf, _ := EncodeVertices(d, nVerts(4), 0, 0)
	var a PrimitiveAssembler
	shapes, err := a.Assemble(GU_TRIANGLES, d, 6, []byte{0, 1, 2, 0, 2, 3}, buf)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(shapes) != 2 {
		t.Fatalf("got %d triangles, want 2", len(shapes))
	}
	if shapes[1].Vertices[2].X != 3 {
		t.Fatalf("last index resolved to x=%v, want 3", shapes[1].Vertices[2].X)
	}
}

func TestAssemble_ShortIndexBufferDrawsNothing(t *testing.T) {
	d, _ := ParseVertexType(testLayout | GU_INDEX_16BIT)
	buf, _ := EncodeVertices(d, nVerts(3), 0, 0)
	var a PrimitiveAssembler
	shapes, err := a.Assemble(GU_TRIANGLES, d, 3, []byte{0, 0, 1, 0}, buf)
	if !errors.Is(err, ErrIndexBufferShort) || shapes != nil {
		t.Fatalf("shapes=%v err=%v", shapes, err)
	}
}

func TestAssemble_ShortVertexBufferDrawsNothing(t *testing.T) {
	d, _ := ParseVertexType(testLayout)
	buf, _ := EncodeVertices(d, nVerts(3), 0, 0)
	var a PrimitiveAssembler
	shapes, err := a.Assemble(GU_TRIANGLES, d, 6, nil, buf)
	if !errors.Is(err, ErrVertexBufferShort) || shapes != nil {
		t.Fatalf("shapes=%v err=%v", shapes, err)
	}
}

func TestAssemble_ShadeApplied(t *testing.T) {
	d, _ := ParseVertexType(testLayout)
	buf, _ := EncodeVertices(d, nVerts(3), 0, 0)
	a := PrimitiveAssembler{Shade: func(uint32) uint32 { return 0x12345678 }}
	shapes, err := a.Assemble(GU_TRIANGLES, d, 3, nil, buf)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	for _, v := range shapes[0].Vertices {
		if v.Color != 0x12345678 {
			t.Fatalf("colour %#08x not shaded", v.Color)
		}
	}
}

func TestAssemble_2DNormalizesWithTextureSize(t *testing.T) {
	d, _ := ParseVertexType(testLayout)
	buf, _ := EncodeVertices(d, []DecodedVertex{{U: 0}, {U: 64, V: 32, X: 1, Y: 1}}, 0, 0)
	a := PrimitiveAssembler{TexW: 128, TexH: 64}
	shapes, err := a.Assemble(GU_SPRITES, d, 2, nil, buf)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	br := shapes[0].Vertices[2]
	if br.U != 0.5 || br.V != 0.5 {
		t.Fatalf("bottom-right uv = (%v,%v), want (0.5,0.5)", br.U, br.V)
	}
}
