// Package gl33 implements the renderer backend on OpenGL 3.3 core
// profile, the fallback for drivers without 4.1. It shares the ring
// range and fence scheme with the gl41 backend but stages vertex data
// through BufferSubData instead of mapped ranges.
package gl33

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/kiln-gfx/kiln/internal/logger"
	"github.com/kiln-gfx/kiln/internal/render"
	"github.com/kiln-gfx/kiln/internal/render/gpustate"
)

// SourceKey is the shader source key this backend compiles.
const SourceKey = "glsl330"

const matrixBlockSize = 2 * 16 * 4

// Config configures the GL 3.3 backend.
type Config struct {
	Buffering    int
	RangeSize    int
	StaticSize   int
	FenceTimeout time.Duration
	Width        int
	Height       int
	// Present swaps the window's buffers.
	Present func()
}

type frameBuffers struct {
	vao uint32
	vbo uint32
	ibo uint32
}

// Backend is the OpenGL 3.3 renderer backend.
type Backend struct {
	cfg Config

	stream frameBuffers
	static frameBuffers
	ubo    uint32

	verts    *gpustate.RingCursor
	indices  *gpustate.RingCursor
	matrices *gpustate.RingCursor

	staticVerts   *gpustate.StaticCursor
	staticIndices *gpustate.StaticCursor
	ranges        map[uint64]staticRange

	fences []uintptr

	uboAlign int32

	state  gpustate.BindingState
	curVAO uint32
	width  int32
	height int32

	textures map[string]*texture
	programs map[string]*program
	fbos     map[string]uint32
	samplers map[render.SamplerState]uint32
}

type staticRange struct {
	generation   uint32
	vertexOffset int
	indexOffset  int
}

// New creates the backend. The OpenGL context must be current.
func New(cfg Config) (*Backend, error) {
	if cfg.Buffering <= 0 {
		cfg.Buffering = 3
	}
	if cfg.RangeSize <= 0 {
		cfg.RangeSize = 4 << 20
	}
	// Base vertices are absolute indices into the buffer, so every
	// range must start on a whole vertex.
	cfg.RangeSize = alignUp(cfg.RangeSize, render.VertexStride)
	if cfg.StaticSize <= 0 {
		cfg.StaticSize = 16 << 20
	}
	if cfg.FenceTimeout <= 0 {
		cfg.FenceTimeout = time.Second
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	b := &Backend{
		cfg:           cfg,
		verts:         gpustate.NewRingCursor(cfg.Buffering, cfg.RangeSize),
		indices:       gpustate.NewRingCursor(cfg.Buffering, cfg.RangeSize),
		staticVerts:   gpustate.NewStaticCursor(cfg.StaticSize),
		staticIndices: gpustate.NewStaticCursor(cfg.StaticSize),
		ranges:        make(map[uint64]staticRange),
		fences:        make([]uintptr, cfg.Buffering),
		width:         int32(cfg.Width),
		height:        int32(cfg.Height),
		textures:      make(map[string]*texture),
		programs:      make(map[string]*program),
		fbos:          make(map[string]uint32),
		samplers:      make(map[render.SamplerState]uint32),
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	logger.Info("OpenGL 3.3 backend initialized",
		zap.String("version", version),
		zap.Int("buffering", cfg.Buffering),
	)

	gl.GetIntegerv(gl.UNIFORM_BUFFER_OFFSET_ALIGNMENT, &b.uboAlign)
	if b.uboAlign < 1 {
		b.uboAlign = 256
	}
	b.matrices = gpustate.NewRingCursor(cfg.Buffering, 4096*int(b.uboAlign))

	b.createBuffers()

	gl.Enable(gl.SCISSOR_TEST)
	gl.ClearColor(0, 0, 0, 1)

	return b, nil
}

// PreDraw waits for this frame's ring range to be released by the GPU.
func (b *Backend) PreDraw() error {
	if err := b.waitFence(b.verts.Active()); err != nil {
		return err
	}

	b.verts.BeginFrame()
	b.indices.BeginFrame()
	b.matrices.BeginFrame()
	return nil
}

// UploadGeometryCommands stages each command's packed bytes into the
// active ring range with BufferSubData.
func (b *Backend) UploadGeometryCommands(cmds []*render.DrawCommand) error {
	// The element array binding is VAO state; stage through the VAO
	// that owns it.
	gl.BindVertexArray(b.stream.vao)
	b.curVAO = b.stream.vao

	gl.BindBuffer(gl.ARRAY_BUFFER, b.stream.vbo)
	for _, cmd := range cmds {
		off, err := b.verts.Alloc(cmd.VertexBytes(), 4)
		if err != nil {
			return err
		}
		gl.BufferSubData(gl.ARRAY_BUFFER, off, cmd.VertexBytes(), gl.Ptr(cmd.Verts))
		cmd.VertexOffset = off
		cmd.BaseVertex = int32(off / render.VertexStride)

		if cmd.IndexCount > 0 {
			ioff, err := b.indices.Alloc(cmd.IndexBytes(), 4)
			if err != nil {
				return err
			}
			gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.stream.ibo)
			gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, ioff, cmd.IndexBytes(), gl.Ptr(cmd.Indices))
			cmd.IndexOffset = ioff
		}
	}
	return nil
}

// UploadBufferCommands uploads static content once per generation and
// resolves commands to their cached byte ranges afterwards.
func (b *Backend) UploadBufferCommands(cmds []*render.DrawCommand) error {
	for _, cmd := range cmds {
		rng, ok := b.ranges[cmd.GeometryID]
		if !ok || rng.generation != cmd.Generation {
			var err error
			if rng, err = b.uploadStatic(cmd); err != nil {
				return err
			}
			b.ranges[cmd.GeometryID] = rng
		}
		cmd.VertexOffset = rng.vertexOffset
		cmd.IndexOffset = rng.indexOffset
		cmd.BaseVertex = int32(rng.vertexOffset / render.VertexStride)
	}
	return nil
}

// SubmitCommands diffs GPU state per command and issues the draw calls.
func (b *Backend) SubmitCommands(cmds []*render.DrawCommand) error {
	for _, cmd := range cmds {
		if err := b.submit(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) submit(cmd *render.DrawCommand) error {
	tw, th := b.targetSize(cmd.Target)

	if b.state.SetTarget(cmd.Target) {
		if err := b.bindTarget(cmd.Target); err != nil {
			return err
		}
	}

	if vp := gpustate.ResolveViewport(cmd.Viewport, tw, th); b.state.SetViewport(vp) {
		gl.Viewport(vp.X, th-vp.Y-vp.H, vp.W, vp.H)
	}
	if sc := gpustate.ResolveScissor(cmd.Clip, tw, th); b.state.SetScissor(sc) {
		gl.Scissor(sc.X, th-sc.Y-sc.H, sc.W, sc.H)
	}

	prog, err := b.useProgram(cmd.Shader)
	if err != nil {
		return err
	}

	if len(cmd.Textures) < len(prog.texLocations) {
		return &render.TextureCountError{
			Shader: cmd.Shader,
			Want:   len(prog.texLocations),
			Got:    len(cmd.Textures),
		}
	}

	if err := b.bindMatrices(cmd); err != nil {
		return err
	}

	for i, id := range cmd.Textures {
		var samp render.SamplerState
		if i < len(cmd.Samplers) {
			samp = cmd.Samplers[i]
		}
		if b.state.SetTexture(i, id, samp) {
			tex, ok := b.textures[id]
			if !ok {
				return fmt.Errorf("gl33: unknown texture %q", id)
			}
			gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
			gl.BindTexture(gl.TEXTURE_2D, tex.id)
			gl.BindSampler(uint32(i), b.samplerFor(samp))
		}
	}

	if b.state.SetBlend(cmd.Blend) {
		applyBlend(cmd.Blend)
	}
	if b.state.SetDepth(cmd.Depth) {
		applyDepth(cmd.Depth)
	}
	if b.state.SetStencil(cmd.Stencil) {
		applyStencil(cmd.Stencil)
	}

	b.draw(cmd)
	return nil
}

func (b *Backend) draw(cmd *render.DrawCommand) {
	vao := b.stream.vao
	if cmd.Kind == render.CmdBufferRange {
		vao = b.static.vao
	}
	if b.curVAO != vao {
		gl.BindVertexArray(vao)
		b.curVAO = vao
	}

	mode := primitiveMode(cmd.Primitive)
	if cmd.IndexCount > 0 {
		gl.DrawElementsBaseVertexWithOffset(mode, cmd.IndexCount, gl.UNSIGNED_INT,
			uintptr(cmd.IndexOffset), cmd.BaseVertex)
	} else {
		gl.DrawArrays(mode, cmd.BaseVertex, cmd.VertexCount)
	}
}

func (b *Backend) bindMatrices(cmd *render.DrawCommand) error {
	off, err := b.matrices.Alloc(matrixBlockSize, int(b.uboAlign))
	if err != nil {
		return err
	}

	var block [32]float32
	copy(block[:16], cmd.View[:])
	copy(block[16:], cmd.Proj[:])

	gl.BindBuffer(gl.UNIFORM_BUFFER, b.ubo)
	gl.BufferSubData(gl.UNIFORM_BUFFER, off, matrixBlockSize, gl.Ptr(&block[0]))
	gl.BindBufferRange(gl.UNIFORM_BUFFER, cameraBlockBinding, b.ubo, off, matrixBlockSize)
	return nil
}

// PostDraw installs the frame fence, presents, and advances the ring.
func (b *Backend) PostDraw() error {
	b.fences[b.verts.Active()] = gl.FenceSync(gl.SYNC_GPU_COMMANDS_COMPLETE, 0)

	if b.cfg.Present != nil {
		b.cfg.Present()
	}

	b.verts.Advance()
	b.indices.Advance()
	b.matrices.Advance()
	return nil
}

// Resize updates the backbuffer dimensions.
func (b *Backend) Resize(width, height int) {
	b.width = int32(width)
	b.height = int32(height)
	b.state.Reset()
	b.curVAO = 0
}

// Clear clears the currently bound target.
func (b *Backend) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT | gl.STENCIL_BUFFER_BIT)
}

// Cleanup releases every GPU object the backend owns.
func (b *Backend) Cleanup() {
	for i, f := range b.fences {
		if f != 0 {
			gl.DeleteSync(f)
			b.fences[i] = 0
		}
	}
	for id := range b.textures {
		b.destroyTexture(id)
	}
	for id := range b.programs {
		b.destroyProgram(id)
	}
	for _, s := range b.samplers {
		gl.DeleteSamplers(1, &s)
	}
	b.samplers = make(map[render.SamplerState]uint32)

	b.deleteBuffers()
	logger.Info("OpenGL 3.3 backend cleaned up")
}

func (b *Backend) targetSize(t render.Target) (int32, int32) {
	if t.Kind == render.TargetTexture {
		if tex, ok := b.textures[t.Texture]; ok {
			return tex.width, tex.height
		}
	}
	return b.width, b.height
}

func alignUp(v, align int) int {
	if r := v % align; r != 0 {
		v += align - r
	}
	return v
}
