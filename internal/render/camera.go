package render

import "github.com/kiln-gfx/kiln/pkg/math"

// Camera supplies the view/projection matrices for a batcher. Viewport
// is optional; an empty rect means "full target size".
type Camera struct {
	View     math.Mat4
	Proj     math.Mat4
	Viewport Rect
}

// NewOrtho2D returns a pixel-space 2D camera with the origin at the
// top-left corner.
func NewOrtho2D(width, height float32) *Camera {
	return &Camera{
		View: math.Identity(),
		Proj: math.Ortho(0, width, height, 0, -1, 1),
	}
}

// NewPerspective returns a perspective camera looking from eye toward
// center. fovY is in radians.
func NewPerspective(fovY, aspect, near, far float32, eye, center, up math.Vec3) *Camera {
	return &Camera{
		View: math.LookAt(eye, center, up),
		Proj: math.Perspective(fovY, aspect, near, far),
	}
}

// ViewProj returns the combined projection*view matrix.
func (c *Camera) ViewProj() math.Mat4 {
	return c.Proj.Mul(c.View)
}
