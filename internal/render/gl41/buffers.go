package gl41

import (
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/kiln-gfx/kiln/internal/render"
)

const mapAccess = gl.MAP_WRITE_BIT | gl.MAP_UNSYNCHRONIZED_BIT | gl.MAP_FLUSH_EXPLICIT_BIT

func (b *Backend) createBuffers() {
	b.stream = b.createVertexSetup(b.verts.TotalSize(), b.indices.TotalSize(), gl.DYNAMIC_DRAW)
	b.static = b.createVertexSetup(b.staticVerts.Capacity(), b.staticIndices.Capacity(), gl.STATIC_DRAW)

	gl.GenBuffers(1, &b.ubo)
	gl.BindBuffer(gl.UNIFORM_BUFFER, b.ubo)
	gl.BufferData(gl.UNIFORM_BUFFER, b.matrices.TotalSize(), nil, gl.DYNAMIC_DRAW)
}

// createVertexSetup allocates a VBO/IBO pair and a VAO capturing the
// shared vertex layout: position vec3, color vec4, uv vec2.
func (b *Backend) createVertexSetup(vertBytes, idxBytes int, usage uint32) frameBuffers {
	var fb frameBuffers

	gl.GenVertexArrays(1, &fb.vao)
	gl.BindVertexArray(fb.vao)

	gl.GenBuffers(1, &fb.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, fb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, vertBytes, nil, usage)

	gl.GenBuffers(1, &fb.ibo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, fb.ibo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, idxBytes, nil, usage)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, render.VertexStride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 4, gl.FLOAT, false, render.VertexStride, 3*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, render.VertexStride, 7*4)

	gl.BindVertexArray(0)
	return fb
}

func (b *Backend) deleteBuffers() {
	for _, fb := range []frameBuffers{b.stream, b.static} {
		vao, vbo, ibo := fb.vao, fb.vbo, fb.ibo
		gl.DeleteVertexArrays(1, &vao)
		gl.DeleteBuffers(1, &vbo)
		gl.DeleteBuffers(1, &ibo)
	}
	gl.DeleteBuffers(1, &b.ubo)
}

// mapRanges maps the active vertex and index ranges for unsynchronized
// writes. The fence wait in PreDraw guarantees the GPU no longer reads
// them.
func (b *Backend) mapRanges() {
	// The element array binding is VAO state; map through the VAO that
	// owns it.
	gl.BindVertexArray(b.stream.vao)
	b.curVAO = b.stream.vao

	gl.BindBuffer(gl.ARRAY_BUFFER, b.stream.vbo)
	b.vertPtr = gl.MapBufferRange(gl.ARRAY_BUFFER,
		b.verts.RangeBase(), b.verts.RangeSize(), mapAccess)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.stream.ibo)
	b.idxPtr = gl.MapBufferRange(gl.ELEMENT_ARRAY_BUFFER,
		b.indices.RangeBase(), b.indices.RangeSize(), mapAccess)

	b.mapped = true
}

// unmapRanges flushes the written spans and releases the mappings.
func (b *Backend) unmapRanges() {
	if !b.mapped {
		return
	}

	gl.BindVertexArray(b.stream.vao)
	b.curVAO = b.stream.vao

	gl.BindBuffer(gl.ARRAY_BUFFER, b.stream.vbo)
	if used := b.verts.Used(); used > 0 {
		gl.FlushMappedBufferRange(gl.ARRAY_BUFFER, 0, used)
	}
	gl.UnmapBuffer(gl.ARRAY_BUFFER)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.stream.ibo)
	if used := b.indices.Used(); used > 0 {
		gl.FlushMappedBufferRange(gl.ELEMENT_ARRAY_BUFFER, 0, used)
	}
	gl.UnmapBuffer(gl.ELEMENT_ARRAY_BUFFER)

	b.vertPtr = nil
	b.idxPtr = nil
	b.mapped = false
}

// waitFence polls the fence guarding range idx until the GPU signals it
// or the configured timeout elapses.
func (b *Backend) waitFence(idx int) error {
	fence := b.fences[idx]
	if fence == 0 {
		return nil
	}

	const step = 2 * time.Millisecond
	deadline := time.Now().Add(b.cfg.FenceTimeout)
	flags := uint32(gl.SYNC_FLUSH_COMMANDS_BIT)
	for {
		status := gl.ClientWaitSync(fence, flags, uint64(step.Nanoseconds()))
		if status == gl.ALREADY_SIGNALED || status == gl.CONDITION_SATISFIED {
			break
		}
		if status == gl.WAIT_FAILED || time.Now().After(deadline) {
			return render.ErrFenceTimeout
		}
		// The commands were flushed on the first wait.
		flags = 0
	}

	gl.DeleteSync(fence)
	b.fences[idx] = 0
	return nil
}

// uploadStatic copies a geometry's packed content into the static
// region and remembers the byte range for later generations of the same
// command.
func (b *Backend) uploadStatic(cmd *render.DrawCommand) (staticRange, error) {
	gl.BindVertexArray(b.static.vao)
	b.curVAO = b.static.vao

	voff, err := b.staticVerts.Alloc(cmd.VertexBytes(), 4)
	if err != nil {
		return staticRange{}, err
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, b.static.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, voff, cmd.VertexBytes(), gl.Ptr(cmd.Verts))

	var ioff int
	if cmd.IndexCount > 0 {
		if ioff, err = b.staticIndices.Alloc(cmd.IndexBytes(), 4); err != nil {
			return staticRange{}, err
		}
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.static.ibo)
		gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, ioff, cmd.IndexBytes(), gl.Ptr(cmd.Indices))
	}

	return staticRange{
		generation:   cmd.Generation,
		vertexOffset: voff,
		indexOffset:  ioff,
	}, nil
}
