package render

import (
	"sort"

	"github.com/kiln-gfx/kiln/pkg/math"
)

// BatcherOptions configures a new batcher.
type BatcherOptions struct {
	Camera *Camera
	Shader string // default shader for geometries without an override
	Target Target
	Depth  float32 // renderer-level ordering key across batchers
}

// Batcher groups geometries sharing a camera and default shader and
// converts them into a minimal ordered sequence of draw commands,
// merging adjacent geometries with identical resolved state.
type Batcher struct {
	camera *Camera
	shader string
	target Target
	depth  float32

	// geoms is append-only with nil holes; removal invalidates a slot
	// in O(1) and the holes are skipped at batch time.
	geoms []*Geometry

	dirty bool
	cache []*DrawCommand
}

// NewBatcher creates a standalone batcher. Renderer.CreateBatcher is the
// usual entry point.
func NewBatcher(opts BatcherOptions) *Batcher {
	return &Batcher{
		camera: opts.Camera,
		shader: opts.Shader,
		target: opts.Target,
		depth:  opts.Depth,
		dirty:  true,
	}
}

// Camera returns the batcher's camera.
func (b *Batcher) Camera() *Camera { return b.camera }

// Target returns the batcher's render target.
func (b *Batcher) Target() Target { return b.target }

// Depth returns the batcher's renderer-level ordering key.
func (b *Batcher) Depth() float32 { return b.depth }

// Shader returns the batcher's default shader id.
func (b *Batcher) Shader() string { return b.shader }

// Dirty reports whether the cached command sequence is stale.
func (b *Batcher) Dirty() bool { return b.dirty }

// MarkDirty invalidates the cached command sequence.
func (b *Batcher) MarkDirty() { b.dirty = true }

// Add appends a geometry. Adding the same geometry twice is a no-op.
func (b *Batcher) Add(g *Geometry) {
	if g == nil || g.dropped {
		return
	}
	for _, ref := range g.owners {
		if ref.batcher == b {
			return
		}
	}
	slot := len(b.geoms)
	b.geoms = append(b.geoms, g)
	g.attach(b, slot)
	b.dirty = true
}

// Remove detaches a geometry without mutating it.
func (b *Batcher) Remove(g *Geometry) {
	if g == nil {
		return
	}
	for _, ref := range g.owners {
		if ref.batcher == b {
			b.invalidateSlot(ref.slot, g)
			g.detach(b)
			return
		}
	}
}

// Len returns the number of live geometries.
func (b *Batcher) Len() int {
	n := 0
	for _, g := range b.geoms {
		if g != nil {
			n++
		}
	}
	return n
}

// invalidateSlot nils out a slot if it still holds g.
func (b *Batcher) invalidateSlot(slot int, g *Geometry) {
	if slot < len(b.geoms) && b.geoms[slot] == g {
		b.geoms[slot] = nil
		b.dirty = true
	}
}

// release detaches all geometries without mutating them. Called when the
// batcher is removed from the renderer.
func (b *Batcher) release() {
	for _, g := range b.geoms {
		if g != nil {
			g.detach(b)
		}
	}
	b.geoms = nil
	b.cache = nil
	b.dirty = true
}

// Batch appends the batcher's draw commands to q. If the batcher is not
// dirty the cached sequence is replayed with the camera re-stamped, so
// camera mutation takes effect without a rebatch.
func (b *Batcher) Batch(q *CommandQueue) {
	if !b.dirty {
		for _, cmd := range b.cache {
			b.stampCamera(cmd)
			q.Push(cmd)
		}
		return
	}

	live := make([]*Geometry, 0, len(b.geoms))
	for _, g := range b.geoms {
		if g != nil && !g.dropped {
			live = append(live, g)
		}
	}

	// Primary depth ascending, then target (backbuffer first), then
	// shader. Stable sort keeps insertion order for full ties.
	sort.SliceStable(live, func(i, j int) bool {
		gi, gj := live[i], live[j]
		if gi.depth != gj.depth {
			return gi.depth < gj.depth
		}
		si, sj := gi.resolvedState(b), gj.resolvedState(b)
		if si.target != sj.target {
			return si.target.Less(sj.target)
		}
		return si.shader < sj.shader
	})

	b.cache = b.cache[:0]

	var (
		current *DrawCommand
		state   drawState
	)
	flush := func() {
		if current != nil {
			b.emit(current)
			current = nil
		}
	}

	for _, g := range live {
		st := g.resolvedState(b)

		if g.upload == UploadStatic {
			flush()
			b.emit(b.newCommand(g, st, CmdBufferRange))
			continue
		}

		if current != nil && st == state && st.primitive.mergeable() {
			b.merge(current, g)
			continue
		}

		flush()
		current = b.newCommand(g, st, CmdGeometry)
		state = st
	}
	flush()

	b.dirty = false

	for _, cmd := range b.cache {
		q.Push(cmd)
	}
}

// newCommand builds a command for a single geometry with its resolved state.
func (b *Batcher) newCommand(g *Geometry, st drawState, kind CommandKind) *DrawCommand {
	cmd := &DrawCommand{
		ID:         uint32(len(b.cache)),
		Kind:       kind,
		GeometryID: g.id,
		Generation: g.generation,
		Primitive:  st.primitive,
		Target:     st.target,
		Shader:     st.shader,
		Textures:   append([]string(nil), g.textures...),
		Samplers:   append([]SamplerState(nil), g.samplers...),
		Clip:       st.clip,
		Blend:      st.blend,
		Depth:      st.depth,
		Stencil:    st.stencil,
	}
	b.stampCamera(cmd)
	b.merge(cmd, g)
	return cmd
}

// stampCamera writes the camera's current matrices and viewport into
// cmd. Commands are stamped both at batch time and on cached replay;
// the camera is shared mutable state the dirty flag does not cover.
func (b *Batcher) stampCamera(cmd *DrawCommand) {
	if b.camera != nil {
		cmd.View = b.camera.View
		cmd.Proj = b.camera.Proj
		cmd.Viewport = b.camera.Viewport
	} else {
		cmd.View = math.Identity()
		cmd.Proj = math.Identity()
		cmd.Viewport = Rect{}
	}
}

// merge appends g's transformed vertices (and rebased indices) to cmd.
func (b *Batcher) merge(cmd *DrawCommand, g *Geometry) {
	world := g.transform.World()
	base := cmd.VertexCount

	for _, v := range g.verts {
		cmd.Verts = appendTransformed(cmd.Verts, v, &world)
	}
	cmd.VertexCount += int32(len(g.verts))

	for _, idx := range g.indices {
		cmd.Indices = append(cmd.Indices, idx+uint32(base))
	}
	cmd.IndexCount += int32(len(g.indices))
}

// emit finalizes a command into the cache in walk order.
func (b *Batcher) emit(cmd *DrawCommand) {
	cmd.ID = uint32(len(b.cache))
	b.cache = append(b.cache, cmd)
}
