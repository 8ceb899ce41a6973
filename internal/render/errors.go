package render

import (
	"errors"
	"fmt"
)

// ErrFenceTimeout reports that the GPU never signaled the fence guarding
// a ring-buffer range within the polling bound. It indicates a driver or
// hardware problem, not a content problem, and is fatal for the session.
var ErrFenceTimeout = errors.New("render: timed out waiting for gpu fence")

// ErrRangeFull reports that a frame's cumulative uploads overflowed the
// active ring-buffer range.
var ErrRangeFull = errors.New("render: ring-buffer range full")

// GeometryTooLargeError reports a single geometry whose packed data
// exceeds the per-range buffer capacity. It is never silently truncated.
type GeometryTooLargeError struct {
	Size     int
	Capacity int
}

func (e *GeometryTooLargeError) Error() string {
	return fmt.Sprintf("render: geometry of %d bytes exceeds buffer range capacity %d", e.Size, e.Capacity)
}

// ShaderError reports a fatal shader configuration or compile/link
// failure for a named shader resource.
type ShaderError struct {
	ID     string
	Reason string
}

func (e *ShaderError) Error() string {
	return fmt.Sprintf("render: shader %q: %s", e.ID, e.Reason)
}

// UniformBlockError reports a uniform block declared by a shader that
// the linked program does not expose.
type UniformBlockError struct {
	Shader string
	Block  string
}

func (e *UniformBlockError) Error() string {
	return fmt.Sprintf("render: shader %q: uniform block %q not found", e.Shader, e.Block)
}

// TextureCountError reports a draw command supplying fewer textures than
// its shader declares sampler slots for.
type TextureCountError struct {
	Shader string
	Want   int
	Got    int
}

func (e *TextureCountError) Error() string {
	return fmt.Sprintf("render: shader %q declares %d texture slots, command provides %d", e.Shader, e.Want, e.Got)
}
