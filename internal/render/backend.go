package render

// Backend is the stateful engine behind the renderer. Implementations
// maintain multi-buffered GPU-visible storage, diff bound GPU state per
// command, and issue the minimal sequence of draw calls. Selection
// happens once at startup based on configuration.
//
// All methods must be called from the thread owning the graphics context.
type Backend interface {
	// PreDraw begins a frame: waits (bounded) for the ring-buffer range
	// owned by this frame index to be released by the GPU, then resets
	// transient counters.
	PreDraw() error

	// UploadGeometryCommands copies freshly transformed vertex/index
	// bytes into the active ring-buffer range.
	UploadGeometryCommands(cmds []*DrawCommand) error

	// UploadBufferCommands ensures static commands have their byte
	// ranges uploaded into the static region, once per generation.
	UploadBufferCommands(cmds []*DrawCommand) error

	// SubmitCommands diffs GPU state per command and issues draw calls
	// in queue order.
	SubmitCommands(cmds []*DrawCommand) error

	// PostDraw installs the frame fence, presents, and advances the
	// ring-buffer index.
	PostDraw() error

	// Resize recreates the backbuffer-equivalent state at the new size.
	Resize(width, height int)

	// Clear clears the current backbuffer.
	Clear()

	// Cleanup releases all GPU objects. The backend is unusable after.
	Cleanup()
}
