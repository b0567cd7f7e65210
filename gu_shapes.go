// gu_shapes.go - Untextured Shape Helpers

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
gu_shapes.go - Untextured Shape Helpers

Lines, rectangles and gradients drawn with 8888 colour and 16 bit screen
coordinates. Texturing is switched off for the draw and restored after,
and colours are pre-multiplied by the current alpha effect coefficient.
*/

package main

const shapeVertexType = GU_COLOR_8888 | GU_VERTEX_16BIT | GU_TRANSFORM_2D

var shapeLayout, _ = ParseVertexType(shapeVertexType)

// AlphaCoeff is the colour the current alpha effect multiplies shapes by.
func (ctx *GuContext) AlphaCoeff() uint32 {
	return ctx.alphaCoeff
}

func (ctx *GuContext) drawShape(prim int, verts []DecodedVertex) error {
	buf, err := EncodeVertices(shapeLayout, verts, 0, 0)
	if err != nil {
		return err
	}
	wasTextured := ctx.state.Enabled(GU_TEXTURE_2D)
	ctx.Disable(GU_TEXTURE_2D)
	err = ctx.DrawArray(prim, shapeVertexType, len(verts), nil, buf)
	if wasTextured {
		ctx.Enable(GU_TEXTURE_2D)
	}
	return err
}

func (ctx *GuContext) shapeVertex(x, y int, color uint32) DecodedVertex {
	return DecodedVertex{X: float32(x), Y: float32(y), Color: modulateColor(color, ctx.alphaCoeff)}
}

func (ctx *GuContext) DrawLine(x0, y0, x1, y1 int, color uint32) error {
	return ctx.drawShape(GU_LINES, []DecodedVertex{
		ctx.shapeVertex(x0, y0, color),
		ctx.shapeVertex(x1, y1, color),
	})
}

// DrawRect draws the outline of a rectangle; corners may come in any order.
func (ctx *GuContext) DrawRect(x0, y0, x1, y1 int, color uint32) error {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	tl := ctx.shapeVertex(x0, y0, color)
	tr := ctx.shapeVertex(x1, y0, color)
	br := ctx.shapeVertex(x1, y1, color)
	bl := ctx.shapeVertex(x0, y1, color)
	return ctx.drawShape(GU_LINES, []DecodedVertex{tl, tr, tr, br, br, bl, bl, tl})
}

func (ctx *GuContext) DrawFillRect(x0, y0, x1, y1 int, color uint32) error {
	return ctx.drawShape(GU_SPRITES, []DecodedVertex{
		ctx.shapeVertex(x0, y0, color),
		ctx.shapeVertex(x1, y1, color),
	})
}

// DrawGradientRect fills a rectangle interpolating four corner colours.
func (ctx *GuContext) DrawGradientRect(x0, y0, x1, y1 int, topLeft, topRight, bottomLeft, bottomRight uint32) error {
	return ctx.drawShape(GU_TRIANGLE_STRIP, []DecodedVertex{
		ctx.shapeVertex(x0, y0, topLeft),
		ctx.shapeVertex(x1, y0, topRight),
		ctx.shapeVertex(x0, y1, bottomLeft),
		ctx.shapeVertex(x1, y1, bottomRight),
	})
}

// DrawPoints plots single pixels.
func (ctx *GuContext) DrawPoints(points [][2]int, color uint32) error {
	verts := make([]DecodedVertex, len(points))
	for i, p := range points {
		verts[i] = ctx.shapeVertex(p[0], p[1], color)
	}
	return ctx.drawShape(GU_POINTS, verts)
}

// texturedVertexType carries float texel u,v, 8888 colour and float
// screen position.
const texturedVertexType = GU_TEXTURE_32BITF | GU_COLOR_8888 | GU_VERTEX_32BITF | GU_TRANSFORM_2D

var texturedLayout, _ = ParseVertexType(texturedVertexType)

// DrawVertices draws screen-space vertices whose u,v are in texels. The
// texturing switch is left as it is.
func (ctx *GuContext) DrawVertices(prim int, verts []DecodedVertex) error {
	return ctx.DrawIndexed(prim, verts, nil)
}

// DrawIndexed draws through an 8 bit index buffer when indices is not nil.
func (ctx *GuContext) DrawIndexed(prim int, verts []DecodedVertex, indices []byte) error {
	buf, err := EncodeVertices(texturedLayout, verts, 1, 1)
	if err != nil {
		return err
	}
	vtype := uint32(texturedVertexType)
	count := len(verts)
	if indices != nil {
		vtype |= GU_INDEX_8BIT
		count = len(indices)
	}
	return ctx.DrawArray(prim, vtype, count, indices, buf)
}
