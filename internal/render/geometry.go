package render

import "github.com/kiln-gfx/kiln/pkg/math"

var nextGeometryID uint64

// Geometry holds CPU-side vertex/index data plus the render state that
// decides which draw call it lands in. A geometry may belong to any
// number of batchers; every mutation that can affect batching order or
// binding marks the owning batchers dirty.
type Geometry struct {
	id         uint64
	generation uint32

	verts   []Vertex
	indices []uint32

	transform Transform
	primitive Primitive
	upload    UploadType

	depth    float32
	shader   string // override; empty means the batcher default
	target   *Target
	textures []string
	samplers []SamplerState

	blend      BlendState
	depthState DepthState
	stencil    StencilState
	clip       Rect

	owners  []ownerRef
	dropped bool
}

// ownerRef records membership in a batcher as a slot index so removal
// is an O(1) slot invalidation.
type ownerRef struct {
	batcher *Batcher
	slot    int
}

// NewGeometry creates a geometry with the given primitive and data.
// Indices may be nil for non-indexed drawing.
func NewGeometry(prim Primitive, verts []Vertex, indices []uint32) *Geometry {
	nextGeometryID++
	return &Geometry{
		id:         nextGeometryID,
		verts:      verts,
		indices:    indices,
		transform:  NewTransform(),
		primitive:  prim,
		depthState: DepthState{Func: CompareLess},
	}
}

// ID returns the geometry's stable identifier.
func (g *Geometry) ID() uint64 { return g.id }

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int { return len(g.verts) }

// IndexCount returns the number of indices.
func (g *Geometry) IndexCount() int { return len(g.indices) }

// Transform returns a copy of the current transform.
func (g *Geometry) Transform() Transform { return g.transform }

// Depth returns the depth sort key.
func (g *Geometry) Depth() float32 { return g.depth }

// Dropped reports whether Drop has been called.
func (g *Geometry) Dropped() bool { return g.dropped }

// SetVertices replaces the vertex data.
func (g *Geometry) SetVertices(verts []Vertex) {
	g.verts = verts
	g.touchContent()
}

// SetIndices replaces the index data.
func (g *Geometry) SetIndices(indices []uint32) {
	g.indices = indices
	g.touchContent()
}

// SetPosition moves the geometry.
func (g *Geometry) SetPosition(p math.Vec3) {
	g.transform.Position = p
	g.touchContent()
}

// SetRotation sets the geometry's rotation.
func (g *Geometry) SetRotation(q math.Quat) {
	g.transform.Rotation = q
	g.touchContent()
}

// SetScale sets the geometry's scale.
func (g *Geometry) SetScale(s math.Vec3) {
	g.transform.Scale = s
	g.touchContent()
}

// SetParentTransform chains the geometry's transform under parent.
func (g *Geometry) SetParentTransform(parent *Transform) {
	g.transform.SetParent(parent)
	g.touchContent()
}

// SetDepth sets the depth sort key.
func (g *Geometry) SetDepth(d float32) {
	g.depth = d
	g.markOwnersDirty()
}

// SetShader sets a shader override. Empty restores the batcher default.
func (g *Geometry) SetShader(id string) {
	g.shader = id
	g.markOwnersDirty()
}

// SetTarget overrides the render target. Nil restores the batcher target.
func (g *Geometry) SetTarget(t *Target) {
	g.target = t
	g.markOwnersDirty()
}

// SetTextures sets the bound texture resource ids in slot order.
func (g *Geometry) SetTextures(ids ...string) {
	g.textures = ids
	g.markOwnersDirty()
}

// SetSampler overrides the sampler for texture slot i.
func (g *Geometry) SetSampler(i int, s SamplerState) {
	for len(g.samplers) <= i {
		g.samplers = append(g.samplers, SamplerState{})
	}
	g.samplers[i] = s
	g.markOwnersDirty()
}

// SetBlend sets the blend state.
func (g *Geometry) SetBlend(b BlendState) {
	g.blend = b
	g.markOwnersDirty()
}

// SetDepthState sets depth test/write state.
func (g *Geometry) SetDepthState(d DepthState) {
	g.depthState = d
	g.markOwnersDirty()
}

// SetStencil sets stencil state.
func (g *Geometry) SetStencil(s StencilState) {
	g.stencil = s
	g.markOwnersDirty()
}

// SetClip sets the clip rectangle. A zero-area rect disables clipping.
func (g *Geometry) SetClip(r Rect) {
	g.clip = r
	g.markOwnersDirty()
}

// SetUpload sets the upload hint. Static geometry is uploaded once and
// referenced by byte range afterwards.
func (g *Geometry) SetUpload(u UploadType) {
	g.upload = u
	g.touchContent()
}

// Drop removes the geometry from every owning batcher. It is idempotent
// and leaves no stale references in either direction.
func (g *Geometry) Drop() {
	if g.dropped {
		return
	}
	g.dropped = true
	for _, ref := range g.owners {
		ref.batcher.invalidateSlot(ref.slot, g)
	}
	g.owners = nil
}

// touchContent bumps the generation (static re-upload) and dirties owners.
func (g *Geometry) touchContent() {
	g.generation++
	g.markOwnersDirty()
}

func (g *Geometry) markOwnersDirty() {
	for _, ref := range g.owners {
		ref.batcher.MarkDirty()
	}
}

func (g *Geometry) attach(b *Batcher, slot int) {
	g.owners = append(g.owners, ownerRef{batcher: b, slot: slot})
}

func (g *Geometry) detach(b *Batcher) {
	for i, ref := range g.owners {
		if ref.batcher == b {
			g.owners = append(g.owners[:i], g.owners[i+1:]...)
			return
		}
	}
}

// resolvedState computes the effective draw state of g inside batcher b.
func (g *Geometry) resolvedState(b *Batcher) drawState {
	st := drawState{
		primitive: g.primitive,
		indexed:   len(g.indices) > 0,
		clip:      g.clip,
		blend:     g.blend,
		depth:     g.depthState,
		stencil:   g.stencil,
		shader:    g.shader,
		target:    b.target,
		texCount:  len(g.textures),
	}
	if st.shader == "" {
		st.shader = b.shader
	}
	if g.target != nil {
		st.target = *g.target
	}
	for i, id := range g.textures {
		if i >= MaxTextureSlots {
			break
		}
		st.textures[i] = id
		if i < len(g.samplers) {
			st.samplers[i] = g.samplers[i]
		}
	}
	return st
}

// drawState is the resolved, comparable render state used for merge
// decisions. Two geometries merge only if their drawStates are equal.
type drawState struct {
	shader    string
	target    Target
	primitive Primitive
	indexed   bool
	clip      Rect
	blend     BlendState
	depth     DepthState
	stencil   StencilState
	textures  [MaxTextureSlots]string
	samplers  [MaxTextureSlots]SamplerState
	texCount  int
}
