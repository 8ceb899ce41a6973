package render

import "github.com/kiln-gfx/kiln/pkg/math"

// VertexFloats is the number of float32 components per vertex:
// position (3), color (4), texture coordinate (2).
const VertexFloats = 9

// VertexStride is the packed byte stride of one vertex.
const VertexStride = VertexFloats * 4

// Vertex is the fixed interleaved vertex layout every backend uploads.
// Field order is the wire layout: changing it changes the GPU format.
type Vertex struct {
	Pos   [3]float32
	Color [4]float32
	UV    [2]float32
}

// appendTransformed packs v into dst with its position transformed by world.
func appendTransformed(dst []float32, v Vertex, world *math.Mat4) []float32 {
	p := world.TransformPoint(math.Vec3{X: v.Pos[0], Y: v.Pos[1], Z: v.Pos[2]})
	return append(dst,
		p.X, p.Y, p.Z,
		v.Color[0], v.Color[1], v.Color[2], v.Color[3],
		v.UV[0], v.UV[1],
	)
}

// Quad returns six triangle vertices for an axis-aligned rectangle at
// (x, y) with the given size, color and UV rect.
func Quad(x, y, w, h float32, color [4]float32, u0, v0, u1, v1 float32) []Vertex {
	tl := Vertex{Pos: [3]float32{x, y, 0}, Color: color, UV: [2]float32{u0, v0}}
	tr := Vertex{Pos: [3]float32{x + w, y, 0}, Color: color, UV: [2]float32{u1, v0}}
	bl := Vertex{Pos: [3]float32{x, y + h, 0}, Color: color, UV: [2]float32{u0, v1}}
	br := Vertex{Pos: [3]float32{x + w, y + h, 0}, Color: color, UV: [2]float32{u1, v1}}
	return []Vertex{tl, tr, bl, tr, br, bl}
}
