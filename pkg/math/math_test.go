package math

import (
	"testing"

	"github.com/chewxy/math32"
)

const eps = 1e-4

func almost(t *testing.T, got, want float32, what string) {
	t.Helper()
	if math32.Abs(got-want) > eps {
		t.Errorf("%s: expected %v, got %v", what, want, got)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{X: 1}
	y := Vec3{Y: 1}
	z := x.Cross(y)
	almost(t, z.X, 0, "cross X")
	almost(t, z.Y, 0, "cross Y")
	almost(t, z.Z, 1, "cross Z")
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{X: 3, Y: 4}.Normalize()
	almost(t, v.Length(), 1, "unit length")

	zero := Vec3{}.Normalize()
	if zero != (Vec3{}) {
		t.Errorf("normalizing zero vector should return zero, got %+v", zero)
	}
}

func TestMat4Identity(t *testing.T) {
	m := Identity()
	p := m.TransformPoint(Vec3{X: 1, Y: 2, Z: 3})
	almost(t, p.X, 1, "X")
	almost(t, p.Y, 2, "Y")
	almost(t, p.Z, 3, "Z")
}

func TestMat4MulTranslateScale(t *testing.T) {
	// Translate then scale: M = T * S applies scale first.
	m := Translate(10, 0, 0).Mul(Scale(2, 2, 2))
	p := m.TransformPoint(Vec3{X: 1, Y: 1, Z: 0})
	almost(t, p.X, 12, "X")
	almost(t, p.Y, 2, "Y")
}

func TestOrthoMapsCorners(t *testing.T) {
	// 0..800 x 0..600 should map to clip space corners.
	m := Ortho(0, 800, 600, 0, -1, 1)

	tl := m.MulVec4(Vec4{X: 0, Y: 0, W: 1})
	almost(t, tl.X, -1, "top-left X")
	almost(t, tl.Y, 1, "top-left Y")

	br := m.MulVec4(Vec4{X: 800, Y: 600, W: 1})
	almost(t, br.X, 1, "bottom-right X")
	almost(t, br.Y, -1, "bottom-right Y")
}

func TestQuatAxisAngleRotation(t *testing.T) {
	// 90 degrees around Z takes +X to +Y.
	q := QuatFromAxisAngle(Vec3{Z: 1}, math32.Pi/2)
	p := q.ToMat4().TransformPoint(Vec3{X: 1})
	almost(t, p.X, 0, "rotated X")
	almost(t, p.Y, 1, "rotated Y")
}

func TestQuatMulCompose(t *testing.T) {
	a := QuatFromAxisAngle(Vec3{Z: 1}, math32.Pi/4)
	b := a.Mul(a)
	p := b.ToMat4().TransformPoint(Vec3{X: 1})
	almost(t, p.Y, 1, "two quarter turns Y")
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}.Normalize()
	l := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	almost(t, l, 1, "unit length")
}
