package render

import "github.com/kiln-gfx/kiln/pkg/math"

// CommandKind distinguishes stream uploads from static buffer reuse.
type CommandKind uint8

const (
	// CmdGeometry carries freshly transformed vertex data uploaded into
	// the frame's ring-buffer range.
	CmdGeometry CommandKind = iota
	// CmdBufferRange references a byte range uploaded once into the
	// static region, reused purely by offset.
	CmdBufferRange
)

// DrawCommand is a per-frame, read-only descriptor of one or more merged
// geometries rendered with one resolved state. It is constructed by a
// Batcher, consumed by the backend, and never persisted beyond the frame
// (static commands are rebuilt from the batcher cache).
type DrawCommand struct {
	ID   uint32
	Kind CommandKind

	// GeometryID/Generation identify static content so the backend can
	// upload it once and reuse the range until the content changes.
	GeometryID uint64
	Generation uint32

	Primitive Primitive
	Target    Target
	Shader    string
	Textures  []string
	Samplers  []SamplerState

	Clip     Rect
	Viewport Rect // camera viewport; empty means full target size

	Blend   BlendState
	Depth   DepthState
	Stencil StencilState

	View math.Mat4
	Proj math.Mat4

	// Packed vertex floats (pos3/color4/uv2) and rebased indices.
	Verts   []float32
	Indices []uint32

	VertexCount int32
	IndexCount  int32

	// Filled in by the backend during upload.
	VertexOffset int   // absolute byte offset of the vertex data
	IndexOffset  int   // absolute byte offset of the index data
	BaseVertex   int32 // first vertex index within the bound buffer
}

// VertexBytes returns the byte size of the packed vertex data.
func (c *DrawCommand) VertexBytes() int {
	return len(c.Verts) * 4
}

// IndexBytes returns the byte size of the index data.
func (c *DrawCommand) IndexBytes() int {
	return len(c.Indices) * 4
}

// CommandQueue collects the frame's draw commands in submission order.
type CommandQueue struct {
	Commands []*DrawCommand
}

// Push appends a command to the queue.
func (q *CommandQueue) Push(cmd *DrawCommand) {
	q.Commands = append(q.Commands, cmd)
}

// Reset clears the queue for the next frame.
func (q *CommandQueue) Reset() {
	q.Commands = q.Commands[:0]
}

// Split partitions the queue into stream-geometry and buffer-range
// commands, preserving order within each class.
func (q *CommandQueue) Split() (geometry, buffer []*DrawCommand) {
	for _, cmd := range q.Commands {
		if cmd.Kind == CmdBufferRange {
			buffer = append(buffer, cmd)
		} else {
			geometry = append(geometry, cmd)
		}
	}
	return geometry, buffer
}
