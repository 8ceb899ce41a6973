package render

import (
	"testing"

	"github.com/kiln-gfx/kiln/pkg/math"
)

func quad(tex string) *Geometry {
	g := NewGeometry(Triangles, Quad(0, 0, 10, 10, [4]float32{1, 1, 1, 1}, 0, 0, 1, 1), nil)
	if tex != "" {
		g.SetTextures(tex)
	}
	return g
}

func indexedQuad(tex string) *Geometry {
	verts := []Vertex{
		{Pos: [3]float32{0, 0, 0}},
		{Pos: [3]float32{10, 0, 0}},
		{Pos: [3]float32{10, 10, 0}},
		{Pos: [3]float32{0, 10, 0}},
	}
	g := NewGeometry(Triangles, verts, []uint32{0, 1, 2, 2, 3, 0})
	if tex != "" {
		g.SetTextures(tex)
	}
	return g
}

func batch(b *Batcher) []*DrawCommand {
	var q CommandQueue
	b.Batch(&q)
	return q.Commands
}

func TestBatchMergesIdenticalState(t *testing.T) {
	b := NewBatcher(BatcherOptions{Shader: "sprite"})
	for i := 0; i < 3; i++ {
		b.Add(quad("atlas"))
	}

	cmds := batch(b)
	if len(cmds) != 1 {
		t.Fatalf("got %d commands, want 1", len(cmds))
	}
	if cmds[0].VertexCount != 18 {
		t.Errorf("merged VertexCount = %d, want 18", cmds[0].VertexCount)
	}
	if got := len(cmds[0].Verts); got != 18*VertexFloats {
		t.Errorf("packed floats = %d, want %d", got, 18*VertexFloats)
	}
}

func TestBatchDistinctStates(t *testing.T) {
	b := NewBatcher(BatcherOptions{Shader: "sprite"})
	b.Add(quad("a"))
	b.Add(quad("b"))
	b.Add(quad("c"))

	cmds := batch(b)
	if len(cmds) != 3 {
		t.Fatalf("got %d commands, want 3", len(cmds))
	}
	for i, cmd := range cmds {
		if cmd.ID != uint32(i) {
			t.Errorf("command %d has ID %d", i, cmd.ID)
		}
	}
}

func TestBatchDepthOrder(t *testing.T) {
	b := NewBatcher(BatcherOptions{Shader: "sprite"})
	far := quad("far")
	far.SetDepth(10)
	near := quad("near")
	near.SetDepth(1)

	// Insertion order deliberately reversed.
	b.Add(far)
	b.Add(near)

	cmds := batch(b)
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}
	if cmds[0].Textures[0] != "near" || cmds[1].Textures[0] != "far" {
		t.Errorf("commands out of depth order: %q, %q", cmds[0].Textures[0], cmds[1].Textures[0])
	}
}

// A geometry with intermediate depth and different state must split an
// otherwise mergeable pair.
func TestBatchDepthInterleave(t *testing.T) {
	b := NewBatcher(BatcherOptions{Shader: "sprite"})

	a0 := quad("a")
	a0.SetDepth(0)
	mid := quad("b")
	mid.SetDepth(1)
	a1 := quad("a")
	a1.SetDepth(2)

	b.Add(a0)
	b.Add(a1)
	b.Add(mid)

	cmds := batch(b)
	if len(cmds) != 3 {
		t.Fatalf("got %d commands, want 3", len(cmds))
	}
	want := []string{"a", "b", "a"}
	for i, cmd := range cmds {
		if cmd.Textures[0] != want[i] {
			t.Errorf("command %d texture = %q, want %q", i, cmd.Textures[0], want[i])
		}
	}
}

func TestBatchShaderTieBreak(t *testing.T) {
	b := NewBatcher(BatcherOptions{Shader: "sprite"})

	zg := quad("")
	zg.SetShader("z-shader")
	ag := quad("")
	ag.SetShader("a-shader")

	b.Add(zg)
	b.Add(ag)

	cmds := batch(b)
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}
	if cmds[0].Shader != "a-shader" || cmds[1].Shader != "z-shader" {
		t.Errorf("shader order = %q, %q", cmds[0].Shader, cmds[1].Shader)
	}
}

// Batching twice without mutations must replay the cached sequence
// unchanged.
func TestBatchReplayIdentical(t *testing.T) {
	b := NewBatcher(BatcherOptions{Shader: "sprite"})
	b.Add(quad("a"))
	b.Add(quad("b"))

	first := batch(b)
	if b.Dirty() {
		t.Fatal("batcher still dirty after Batch")
	}
	second := batch(b)

	if len(first) != len(second) {
		t.Fatalf("replay produced %d commands, want %d", len(second), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("command %d differs between replays", i)
		}
	}
}

func TestBatchRebatchAfterMutation(t *testing.T) {
	b := NewBatcher(BatcherOptions{Shader: "sprite"})
	g := quad("a")
	b.Add(g)
	batch(b)

	g.SetDepth(5)
	if !b.Dirty() {
		t.Fatal("mutation did not dirty the batcher")
	}

	cmds := batch(b)
	if len(cmds) != 1 {
		t.Fatalf("got %d commands, want 1", len(cmds))
	}
}

func TestStripNeverMerges(t *testing.T) {
	b := NewBatcher(BatcherOptions{Shader: "sprite"})
	for i := 0; i < 2; i++ {
		verts := Quad(0, 0, 4, 4, [4]float32{1, 1, 1, 1}, 0, 0, 1, 1)[:4]
		b.Add(NewGeometry(TriangleStrip, verts, nil))
	}

	cmds := batch(b)
	if len(cmds) != 2 {
		t.Fatalf("strips merged: got %d commands, want 2", len(cmds))
	}
}

func TestStaticEmitsBufferRange(t *testing.T) {
	b := NewBatcher(BatcherOptions{Shader: "sprite"})

	static := quad("bg")
	static.SetUpload(UploadStatic)
	static.SetDepth(-1)
	b.Add(static)
	b.Add(quad("bg"))

	cmds := batch(b)
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}
	if cmds[0].Kind != CmdBufferRange {
		t.Errorf("static command kind = %d, want CmdBufferRange", cmds[0].Kind)
	}
	if cmds[1].Kind != CmdGeometry {
		t.Errorf("stream command kind = %d, want CmdGeometry", cmds[1].Kind)
	}
	if cmds[0].GeometryID != static.ID() {
		t.Errorf("static command GeometryID = %d, want %d", cmds[0].GeometryID, static.ID())
	}
}

func TestIndexRebaseOnMerge(t *testing.T) {
	b := NewBatcher(BatcherOptions{Shader: "sprite"})
	b.Add(indexedQuad("atlas"))
	b.Add(indexedQuad("atlas"))

	cmds := batch(b)
	if len(cmds) != 1 {
		t.Fatalf("got %d commands, want 1", len(cmds))
	}
	cmd := cmds[0]
	if cmd.VertexCount != 8 || cmd.IndexCount != 12 {
		t.Fatalf("counts = %d/%d, want 8/12", cmd.VertexCount, cmd.IndexCount)
	}
	// Second quad's indices must be rebased past the first's vertices.
	for i := 6; i < 12; i++ {
		if cmd.Indices[i] != cmd.Indices[i-6]+4 {
			t.Errorf("index %d = %d, want %d", i, cmd.Indices[i], cmd.Indices[i-6]+4)
		}
	}
}

func TestIndexedNeverMergesWithNonIndexed(t *testing.T) {
	b := NewBatcher(BatcherOptions{Shader: "sprite"})
	b.Add(indexedQuad("atlas"))
	b.Add(quad("atlas"))

	cmds := batch(b)
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}
}

func TestRemoveDoesNotMutateGeometry(t *testing.T) {
	b := NewBatcher(BatcherOptions{Shader: "sprite"})
	g := quad("a")
	b.Add(g)
	b.Remove(g)

	if g.Dropped() {
		t.Error("Remove marked geometry dropped")
	}
	if b.Len() != 0 {
		t.Errorf("Len = %d after Remove, want 0", b.Len())
	}
	if len(batch(b)) != 0 {
		t.Error("removed geometry still batched")
	}
}

func TestAddTwiceIsNoop(t *testing.T) {
	b := NewBatcher(BatcherOptions{Shader: "sprite"})
	g := quad("a")
	b.Add(g)
	b.Add(g)

	if b.Len() != 1 {
		t.Errorf("Len = %d, want 1", b.Len())
	}
}

func TestWorldTransformBakedIntoVertices(t *testing.T) {
	b := NewBatcher(BatcherOptions{Shader: "sprite"})
	g := quad("a")
	g.SetPosition(math.Vec3{X: 100, Y: 50})
	b.Add(g)

	cmds := batch(b)
	if len(cmds) != 1 {
		t.Fatalf("got %d commands, want 1", len(cmds))
	}
	// First vertex of Quad(0,0,...) lands at the translation.
	if x, y := cmds[0].Verts[0], cmds[0].Verts[1]; x != 100 || y != 50 {
		t.Errorf("transformed vertex = (%v, %v), want (100, 50)", x, y)
	}
}

func TestBatchMergesAcrossDepthsInDepthOrder(t *testing.T) {
	b := NewBatcher(BatcherOptions{Shader: "sprite"})

	far := quad("atlas")
	far.SetDepth(1)
	far.SetPosition(math.Vec3{X: 100})
	b.Add(far)

	near := quad("atlas")
	near.SetDepth(0)
	b.Add(near)

	cmds := batch(b)
	if len(cmds) != 1 {
		t.Fatalf("got %d commands, want 1", len(cmds))
	}
	if cmds[0].VertexCount != 12 {
		t.Errorf("merged VertexCount = %d, want 12", cmds[0].VertexCount)
	}
	// Depth 0 sorts first, so its vertices lead the packed buffer; the
	// depth-1 quad sits at x=100 and must come second.
	if x := cmds[0].Verts[0]; x != 0 {
		t.Errorf("first vertex x = %v, want the depth-0 quad first", x)
	}
	if x := cmds[0].Verts[6*VertexFloats]; x != 100 {
		t.Errorf("seventh vertex x = %v, want 100 (depth-1 quad second)", x)
	}
}
