package render

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kiln-gfx/kiln/internal/logger"
)

// Renderer owns the batcher list and drives the per-frame lifecycle:
// pre-draw reset, batch collection, backend upload, backend submit,
// post-draw present.
type Renderer struct {
	backend  Backend
	batchers []*Batcher
	queue    CommandQueue
}

// New creates a renderer on top of the given backend.
func New(backend Backend) *Renderer {
	return &Renderer{backend: backend}
}

// CreateBatcher creates a batcher and registers it with the renderer.
func (r *Renderer) CreateBatcher(opts BatcherOptions) *Batcher {
	b := NewBatcher(opts)
	r.batchers = append(r.batchers, b)
	return b
}

// AddBatcher registers an existing batcher.
func (r *Renderer) AddBatcher(b *Batcher) {
	for _, existing := range r.batchers {
		if existing == b {
			return
		}
	}
	r.batchers = append(r.batchers, b)
}

// RemoveBatcher unregisters a batcher and releases its geometry list
// without mutating the geometries themselves.
func (r *Renderer) RemoveBatcher(b *Batcher) {
	for i, existing := range r.batchers {
		if existing == b {
			r.batchers = append(r.batchers[:i], r.batchers[i+1:]...)
			b.release()
			return
		}
	}
}

// Batchers returns the number of registered batchers.
func (r *Renderer) Batchers() int {
	return len(r.batchers)
}

// Frame runs one full frame: collect, upload, submit, present.
func (r *Renderer) Frame() error {
	if err := r.backend.PreDraw(); err != nil {
		return fmt.Errorf("pre-draw: %w", err)
	}

	r.orderBatchers()

	r.queue.Reset()
	for _, b := range r.batchers {
		b.Batch(&r.queue)
	}

	geometry, buffer := r.queue.Split()
	if err := r.backend.UploadGeometryCommands(geometry); err != nil {
		return fmt.Errorf("upload geometry: %w", err)
	}
	if err := r.backend.UploadBufferCommands(buffer); err != nil {
		return fmt.Errorf("upload buffers: %w", err)
	}

	if err := r.backend.SubmitCommands(r.queue.Commands); err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	if err := r.backend.PostDraw(); err != nil {
		return fmt.Errorf("post-draw: %w", err)
	}
	return nil
}

// orderBatchers sorts batchers by target (backbuffer first), then depth,
// then shader, matching the intra-batcher command order.
func (r *Renderer) orderBatchers() {
	sort.SliceStable(r.batchers, func(i, j int) bool {
		bi, bj := r.batchers[i], r.batchers[j]
		if bi.target != bj.target {
			return bi.target.Less(bj.target)
		}
		if bi.depth != bj.depth {
			return bi.depth < bj.depth
		}
		return bi.shader < bj.shader
	})
}

// Resize forwards a display size change to the backend.
func (r *Renderer) Resize(width, height int) {
	logger.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
	r.backend.Resize(width, height)
}

// Clear clears the backbuffer.
func (r *Renderer) Clear() {
	r.backend.Clear()
}

// Close releases all batchers and backend resources.
func (r *Renderer) Close() {
	for _, b := range r.batchers {
		b.release()
	}
	r.batchers = nil
	r.backend.Cleanup()
}
