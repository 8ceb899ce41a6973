package render

import "github.com/kiln-gfx/kiln/pkg/math"

// Transform is a position/rotation/scale with an optional parent chain.
type Transform struct {
	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3
	parent   *Transform
}

// NewTransform returns an identity transform.
func NewTransform() Transform {
	return Transform{
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// SetParent chains this transform under parent. Passing nil detaches it.
func (t *Transform) SetParent(parent *Transform) {
	t.parent = parent
}

// Parent returns the parent transform, or nil.
func (t *Transform) Parent() *Transform {
	return t.parent
}

// Local returns the local translate*rotate*scale matrix.
func (t *Transform) Local() math.Mat4 {
	m := math.Translate(t.Position.X, t.Position.Y, t.Position.Z)
	m = m.Mul(t.Rotation.ToMat4())
	return m.Mul(math.Scale(t.Scale.X, t.Scale.Y, t.Scale.Z))
}

// World composes the parent chain into a world matrix.
func (t *Transform) World() math.Mat4 {
	local := t.Local()
	if t.parent == nil {
		return local
	}
	return t.parent.World().Mul(local)
}
