// Package null provides a no-op renderer backend. It performs no GPU
// work but runs the same ring-buffer accounting, state diffing, and
// resource bookkeeping as the GL backends, recording what it was asked
// to do. Used for headless operation and tests.
package null

import (
	"github.com/kiln-gfx/kiln/internal/render"
	"github.com/kiln-gfx/kiln/internal/render/gpustate"
	"github.com/kiln-gfx/kiln/internal/resource"
)

// Options configures the null backend.
type Options struct {
	// Buffering is the number of simulated frames in flight. Default 3.
	Buffering int
	// RangeSize is the per-range vertex/index capacity in bytes.
	// Default 1 MiB.
	RangeSize int
	// SourceKey, when set, requires shaders to carry source for that
	// key, mirroring the GL backends' fatal "no shader source" check.
	SourceKey string
	// Width/Height of the simulated backbuffer.
	Width, Height int
}

type staticRange struct {
	generation   uint32
	vertexOffset int
	indexOffset  int
}

// Backend is the no-op render.Backend. Recorded fields are exported for
// test inspection.
type Backend struct {
	opts Options

	verts   *gpustate.RingCursor
	indices *gpustate.RingCursor
	statics *gpustate.StaticCursor
	state   gpustate.BindingState

	width, height int32
	frame         int

	textures map[string]*resource.Image
	shaders  map[string]*resource.Shader
	ranges   map[uint64]staticRange

	// Ops records the lifecycle calls in order ("predraw", "upload",
	// "buffers", "submit", "postdraw", ...).
	Ops []string
	// Submitted records command ids per SubmitCommands call.
	Submitted [][]uint32
	// Scissors records every scissor rect that would have been applied.
	Scissors []render.Rect
	// Viewports records every viewport rect that would have been applied.
	Viewports []render.Rect
	// TextureBinds counts per-slot texture bind calls actually issued.
	TextureBinds int
	// DrawCalls counts draw calls issued.
	DrawCalls int
}

// New creates a null backend.
func New(opts Options) *Backend {
	if opts.Buffering <= 0 {
		opts.Buffering = 3
	}
	if opts.RangeSize <= 0 {
		opts.RangeSize = 1 << 20
	}
	// Keep every range starting on a whole vertex so base vertices stay
	// absolute indices, same as the GL backends.
	if r := opts.RangeSize % render.VertexStride; r != 0 {
		opts.RangeSize += render.VertexStride - r
	}
	if opts.Width <= 0 {
		opts.Width = 1280
	}
	if opts.Height <= 0 {
		opts.Height = 720
	}
	return &Backend{
		opts:     opts,
		verts:    gpustate.NewRingCursor(opts.Buffering, opts.RangeSize),
		indices:  gpustate.NewRingCursor(opts.Buffering, opts.RangeSize),
		statics:  gpustate.NewStaticCursor(opts.RangeSize),
		width:    int32(opts.Width),
		height:   int32(opts.Height),
		textures: make(map[string]*resource.Image),
		shaders:  make(map[string]*resource.Shader),
		ranges:   make(map[uint64]staticRange),
	}
}

// Frame returns the number of presented frames.
func (b *Backend) Frame() int { return b.frame }

// ActiveRange returns the ring range currently being written.
func (b *Backend) ActiveRange() int { return b.verts.Active() }

// PreDraw implements render.Backend. The GPU is imaginary, so the fence
// for the reused range is always already signaled.
func (b *Backend) PreDraw() error {
	b.Ops = append(b.Ops, "predraw")
	b.verts.BeginFrame()
	b.indices.BeginFrame()
	return nil
}

// UploadGeometryCommands implements render.Backend.
func (b *Backend) UploadGeometryCommands(cmds []*render.DrawCommand) error {
	b.Ops = append(b.Ops, "upload")
	for _, cmd := range cmds {
		off, err := b.verts.Alloc(cmd.VertexBytes(), 4)
		if err != nil {
			return err
		}
		cmd.VertexOffset = off
		cmd.BaseVertex = int32(off / render.VertexStride)
		if cmd.IndexCount > 0 {
			ioff, err := b.indices.Alloc(cmd.IndexBytes(), 4)
			if err != nil {
				return err
			}
			cmd.IndexOffset = ioff
		}
	}
	return nil
}

// UploadBufferCommands implements render.Backend.
func (b *Backend) UploadBufferCommands(cmds []*render.DrawCommand) error {
	b.Ops = append(b.Ops, "buffers")
	for _, cmd := range cmds {
		rng, ok := b.ranges[cmd.GeometryID]
		if ok && rng.generation == cmd.Generation {
			cmd.VertexOffset = rng.vertexOffset
			cmd.IndexOffset = rng.indexOffset
			cmd.BaseVertex = int32(rng.vertexOffset / render.VertexStride)
			continue
		}
		off, err := b.statics.Alloc(cmd.VertexBytes(), 4)
		if err != nil {
			return err
		}
		ioff := 0
		if cmd.IndexCount > 0 {
			if ioff, err = b.statics.Alloc(cmd.IndexBytes(), 4); err != nil {
				return err
			}
		}
		b.ranges[cmd.GeometryID] = staticRange{
			generation:   cmd.Generation,
			vertexOffset: off,
			indexOffset:  ioff,
		}
		cmd.VertexOffset = off
		cmd.IndexOffset = ioff
		cmd.BaseVertex = int32(off / render.VertexStride)
	}
	return nil
}

// SubmitCommands implements render.Backend, running the full state diff
// without touching a driver.
func (b *Backend) SubmitCommands(cmds []*render.DrawCommand) error {
	b.Ops = append(b.Ops, "submit")
	ids := make([]uint32, 0, len(cmds))

	for _, cmd := range cmds {
		ids = append(ids, cmd.ID)

		tw, th := b.targetSize(cmd.Target)

		if vp := gpustate.ResolveViewport(cmd.Viewport, tw, th); b.state.SetViewport(vp) {
			b.Viewports = append(b.Viewports, vp)
		}
		if sc := gpustate.ResolveScissor(cmd.Clip, tw, th); b.state.SetScissor(sc) {
			b.Scissors = append(b.Scissors, sc)
		}
		b.state.SetTarget(cmd.Target)
		b.state.SetProgram(cmd.Shader)

		if sh, ok := b.shaders[cmd.Shader]; ok {
			if len(cmd.Textures) < len(sh.TextureSlots) {
				return &render.TextureCountError{
					Shader: cmd.Shader,
					Want:   len(sh.TextureSlots),
					Got:    len(cmd.Textures),
				}
			}
		}

		for i, tex := range cmd.Textures {
			var samp render.SamplerState
			if i < len(cmd.Samplers) {
				samp = cmd.Samplers[i]
			}
			if b.state.SetTexture(i, tex, samp) {
				b.TextureBinds++
			}
		}

		b.state.SetBlend(cmd.Blend)
		b.state.SetDepth(cmd.Depth)
		b.state.SetStencil(cmd.Stencil)

		b.DrawCalls++
	}

	b.Submitted = append(b.Submitted, ids)
	return nil
}

// PostDraw implements render.Backend: "presents" and rotates the ring.
func (b *Backend) PostDraw() error {
	b.Ops = append(b.Ops, "postdraw")
	b.verts.Advance()
	b.indices.Advance()
	b.frame++
	return nil
}

// Resize implements render.Backend.
func (b *Backend) Resize(width, height int) {
	b.width = int32(width)
	b.height = int32(height)
}

// Clear implements render.Backend.
func (b *Backend) Clear() {
	b.Ops = append(b.Ops, "clear")
}

// Cleanup implements render.Backend.
func (b *Backend) Cleanup() {
	b.Ops = append(b.Ops, "cleanup")
	b.textures = make(map[string]*resource.Image)
	b.shaders = make(map[string]*resource.Shader)
	b.ranges = make(map[uint64]staticRange)
}

func (b *Backend) targetSize(t render.Target) (int32, int32) {
	if t.Kind == render.TargetTexture {
		if img, ok := b.textures[t.Texture]; ok {
			return int32(img.Width), int32(img.Height)
		}
	}
	return b.width, b.height
}

// HasTexture reports whether a texture object exists for the image id.
func (b *Backend) HasTexture(id string) bool {
	_, ok := b.textures[id]
	return ok
}

// HasShader reports whether a program exists for the shader id.
func (b *Backend) HasShader(id string) bool {
	_, ok := b.shaders[id]
	return ok
}

// ResourceCreated implements resource.Listener.
func (b *Backend) ResourceCreated(ev resource.Event) error {
	switch ev.Kind {
	case resource.KindImage:
		if _, ok := b.textures[ev.Image.ID]; ok {
			return &resource.DuplicateResourceError{Kind: resource.KindImage, ID: ev.Image.ID}
		}
		b.textures[ev.Image.ID] = ev.Image
	case resource.KindShader:
		if _, ok := b.shaders[ev.Shader.ID]; ok {
			return &resource.DuplicateResourceError{Kind: resource.KindShader, ID: ev.Shader.ID}
		}
		if b.opts.SourceKey != "" {
			if _, err := ev.Shader.Source(b.opts.SourceKey); err != nil {
				return err
			}
		}
		b.shaders[ev.Shader.ID] = ev.Shader
	}
	return nil
}

// ResourceRemoved implements resource.Listener.
func (b *Backend) ResourceRemoved(ev resource.Event) error {
	switch ev.Kind {
	case resource.KindImage:
		if _, ok := b.textures[ev.Image.ID]; !ok {
			return &resource.UnknownResourceError{Kind: resource.KindImage, ID: ev.Image.ID}
		}
		delete(b.textures, ev.Image.ID)
		b.state.InvalidateTexture(ev.Image.ID)
	case resource.KindShader:
		if _, ok := b.shaders[ev.Shader.ID]; !ok {
			return &resource.UnknownResourceError{Kind: resource.KindShader, ID: ev.Shader.ID}
		}
		delete(b.shaders, ev.Shader.ID)
		b.state.InvalidateProgram(ev.Shader.ID)
	}
	return nil
}
