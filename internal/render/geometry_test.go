package render

import (
	"testing"

	"github.com/kiln-gfx/kiln/pkg/math"
)

func TestDropDetachesFromAllBatchers(t *testing.T) {
	b1 := NewBatcher(BatcherOptions{Shader: "sprite"})
	b2 := NewBatcher(BatcherOptions{Shader: "sprite"})
	g := quad("atlas")
	b1.Add(g)
	b2.Add(g)

	g.Drop()

	if !g.Dropped() {
		t.Fatal("Dropped() = false after Drop")
	}
	if b1.Len() != 0 || b2.Len() != 0 {
		t.Errorf("batcher lens = %d/%d after Drop, want 0/0", b1.Len(), b2.Len())
	}
	if !b1.Dirty() || !b2.Dirty() {
		t.Error("Drop did not dirty owning batchers")
	}
}

func TestDropIsIdempotent(t *testing.T) {
	b := NewBatcher(BatcherOptions{Shader: "sprite"})
	g := quad("atlas")
	b.Add(g)

	g.Drop()
	g.Drop()

	if b.Len() != 0 {
		t.Errorf("Len = %d, want 0", b.Len())
	}
	// A dropped geometry cannot be re-added.
	b.Add(g)
	if b.Len() != 0 {
		t.Error("dropped geometry was re-added")
	}
}

func TestMutationsDirtyOwners(t *testing.T) {
	cases := []struct {
		name string
		f    func(*Geometry)
	}{
		{"SetVertices", func(g *Geometry) { g.SetVertices(nil) }},
		{"SetPosition", func(g *Geometry) { g.SetPosition(math.Vec3{X: 1}) }},
		{"SetDepth", func(g *Geometry) { g.SetDepth(3) }},
		{"SetShader", func(g *Geometry) { g.SetShader("other") }},
		{"SetTextures", func(g *Geometry) { g.SetTextures("other") }},
		{"SetBlend", func(g *Geometry) { g.SetBlend(AlphaBlend()) }},
		{"SetClip", func(g *Geometry) { g.SetClip(Rect{W: 1, H: 1}) }},
		{"SetUpload", func(g *Geometry) { g.SetUpload(UploadStatic) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBatcher(BatcherOptions{Shader: "sprite"})
			g := quad("atlas")
			b.Add(g)
			batch(b) // clears dirty

			tc.f(g)
			if !b.Dirty() {
				t.Error("owner not dirtied")
			}
		})
	}
}

func TestContentMutationBumpsGeneration(t *testing.T) {
	b := NewBatcher(BatcherOptions{Shader: "sprite"})
	g := quad("atlas")
	g.SetUpload(UploadStatic)
	b.Add(g)

	first := batch(b)[0].Generation
	g.SetVertices(Quad(0, 0, 5, 5, [4]float32{1, 1, 1, 1}, 0, 0, 1, 1))
	second := batch(b)[0].Generation

	if second == first {
		t.Error("generation unchanged after content mutation")
	}
}

func TestStateMutationKeepsGeneration(t *testing.T) {
	b := NewBatcher(BatcherOptions{Shader: "sprite"})
	g := quad("atlas")
	g.SetUpload(UploadStatic)
	b.Add(g)

	first := batch(b)[0].Generation
	g.SetBlend(AlphaBlend())
	second := batch(b)[0].Generation

	if second != first {
		t.Error("pure state mutation bumped the content generation")
	}
}

func TestShaderOverrideResolution(t *testing.T) {
	b := NewBatcher(BatcherOptions{Shader: "default"})
	g := quad("")
	b.Add(g)

	if cmds := batch(b); cmds[0].Shader != "default" {
		t.Errorf("shader = %q, want batcher default", cmds[0].Shader)
	}

	g.SetShader("override")
	if cmds := batch(b); cmds[0].Shader != "override" {
		t.Errorf("shader = %q, want override", cmds[0].Shader)
	}

	g.SetShader("")
	if cmds := batch(b); cmds[0].Shader != "default" {
		t.Errorf("shader = %q, want default restored", cmds[0].Shader)
	}
}

func TestTargetOverrideResolution(t *testing.T) {
	b := NewBatcher(BatcherOptions{Shader: "sprite"})
	g := quad("")
	b.Add(g)

	if cmds := batch(b); cmds[0].Target != Backbuffer() {
		t.Errorf("target = %+v, want backbuffer", cmds[0].Target)
	}

	rt := TextureTarget("offscreen")
	g.SetTarget(&rt)
	if cmds := batch(b); cmds[0].Target != rt {
		t.Errorf("target = %+v, want %+v", cmds[0].Target, rt)
	}
}

func TestTransformParentChain(t *testing.T) {
	parent := NewTransform()
	parent.Position = math.Vec3{X: 10}

	child := NewTransform()
	child.Position = math.Vec3{Y: 5}
	child.SetParent(&parent)

	p := child.World().TransformPoint(math.Vec3{})
	if p.X != 10 || p.Y != 5 {
		t.Errorf("world origin = (%v, %v), want (10, 5)", p.X, p.Y)
	}

	child.SetParent(nil)
	p = child.World().TransformPoint(math.Vec3{})
	if p.X != 0 || p.Y != 5 {
		t.Errorf("detached origin = (%v, %v), want (0, 5)", p.X, p.Y)
	}
}
