// Package gpustate holds the pure bookkeeping behind the GL backends:
// the currently-bound GPU state used for per-command diffing, and the
// bounds-checked cursor over multi-buffered ring ranges. Nothing in this
// package touches the driver, so the diff logic is testable headless.
package gpustate

import "github.com/kiln-gfx/kiln/internal/render"

// BindingState tracks what is currently bound on the GPU. Backends
// consult it before every driver call and skip calls whose state is
// already in effect. Each Set method records the new value and reports
// whether the driver must actually be touched.
type BindingState struct {
	viewport      render.Rect
	viewportValid bool

	scissor      render.Rect
	scissorValid bool

	target      render.Target
	targetValid bool

	program      string
	programValid bool

	slots [render.MaxTextureSlots]slotBinding

	blend      render.BlendState
	blendValid bool

	depth      render.DepthState
	depthValid bool

	stencil      render.StencilState
	stencilValid bool
}

type slotBinding struct {
	texture string
	sampler render.SamplerState
	valid   bool
}

// Reset forgets all tracked bindings, forcing the next diff of every
// piece of state to touch the driver. Call after context loss or at
// frame boundaries if the context is shared.
func (s *BindingState) Reset() {
	*s = BindingState{}
}

// SetViewport records vp, reporting whether it changed.
func (s *BindingState) SetViewport(vp render.Rect) bool {
	if s.viewportValid && s.viewport == vp {
		return false
	}
	s.viewport = vp
	s.viewportValid = true
	return true
}

// SetScissor records sc, reporting whether it changed.
func (s *BindingState) SetScissor(sc render.Rect) bool {
	if s.scissorValid && s.scissor == sc {
		return false
	}
	s.scissor = sc
	s.scissorValid = true
	return true
}

// SetTarget records the render target, reporting whether it changed.
func (s *BindingState) SetTarget(t render.Target) bool {
	if s.targetValid && s.target == t {
		return false
	}
	s.target = t
	s.targetValid = true
	return true
}

// SetProgram records the bound shader, reporting whether it changed.
func (s *BindingState) SetProgram(id string) bool {
	if s.programValid && s.program == id {
		return false
	}
	s.program = id
	s.programValid = true
	return true
}

// SetTexture records a texture+sampler binding for slot, reporting
// whether the slot must be rebound. Per-slot dirty tracking keeps
// redundant driver calls out of the hot path.
func (s *BindingState) SetTexture(slot int, texture string, sampler render.SamplerState) bool {
	if slot < 0 || slot >= render.MaxTextureSlots {
		return false
	}
	b := &s.slots[slot]
	if b.valid && b.texture == texture && b.sampler == sampler {
		return false
	}
	b.texture = texture
	b.sampler = sampler
	b.valid = true
	return true
}

// InvalidateProgram forgets the program binding if it matches id, for
// use when the program object is destroyed. A later resource with the
// same id must rebind.
func (s *BindingState) InvalidateProgram(id string) {
	if s.programValid && s.program == id {
		s.programValid = false
	}
}

// InvalidateSlot forgets the binding tracked for one texture unit, for
// use when the backend bound a texture on that unit outside the diffed
// draw path (texture creation between frames).
func (s *BindingState) InvalidateSlot(slot int) {
	if slot >= 0 && slot < render.MaxTextureSlots {
		s.slots[slot].valid = false
	}
}

// InvalidateTexture forgets a texture binding everywhere it appears,
// for use when the underlying texture object is destroyed.
func (s *BindingState) InvalidateTexture(texture string) {
	for i := range s.slots {
		if s.slots[i].valid && s.slots[i].texture == texture {
			s.slots[i].valid = false
		}
	}
}

// SetBlend compares the full blend descriptor and records it, reporting
// whether any blend call (including the enable toggle) is needed.
func (s *BindingState) SetBlend(b render.BlendState) bool {
	if s.blendValid && s.blend == b {
		return false
	}
	s.blend = b
	s.blendValid = true
	return true
}

// SetDepth records depth state, reporting whether it changed.
func (s *BindingState) SetDepth(d render.DepthState) bool {
	if s.depthValid && s.depth == d {
		return false
	}
	s.depth = d
	s.depthValid = true
	return true
}

// SetStencil records stencil state, reporting whether it changed.
func (s *BindingState) SetStencil(st render.StencilState) bool {
	if s.stencilValid && s.stencil == st {
		return false
	}
	s.stencil = st
	s.stencilValid = true
	return true
}

// ResolveViewport derives the effective viewport: the camera viewport if
// set, otherwise the full target size.
func ResolveViewport(vp render.Rect, targetW, targetH int32) render.Rect {
	if vp.Empty() {
		return render.Rect{W: targetW, H: targetH}
	}
	return vp
}

// ResolveScissor derives the effective scissor rect from a command clip.
// A zero-area clip means "clipping disabled" and resolves to the full
// target size rather than a literal zero-size rect.
func ResolveScissor(clip render.Rect, targetW, targetH int32) render.Rect {
	if clip.Empty() {
		return render.Rect{W: targetW, H: targetH}
	}
	return clip
}
