package gpustate

import (
	"testing"

	"github.com/kiln-gfx/kiln/internal/render"
)

func TestBindingStateDiff(t *testing.T) {
	var s BindingState

	// First sight of any state always reports a change, repeats never do.
	if !s.SetProgram("sprite") {
		t.Error("first SetProgram reported no change")
	}
	if s.SetProgram("sprite") {
		t.Error("repeated SetProgram reported a change")
	}
	if !s.SetProgram("text") {
		t.Error("changed SetProgram reported no change")
	}

	vp := render.Rect{W: 800, H: 600}
	if !s.SetViewport(vp) || s.SetViewport(vp) {
		t.Error("viewport diff misbehaved")
	}

	if !s.SetTarget(render.TextureTarget("rt")) {
		t.Error("first SetTarget reported no change")
	}
	if s.SetTarget(render.TextureTarget("rt")) {
		t.Error("repeated SetTarget reported a change")
	}
}

func TestBindingStateTextureSlots(t *testing.T) {
	var s BindingState
	samp := render.SamplerState{MinFilter: render.FilterNearest}

	if !s.SetTexture(0, "atlas", samp) {
		t.Error("first bind reported no change")
	}
	if s.SetTexture(0, "atlas", samp) {
		t.Error("identical rebind reported a change")
	}
	// Same texture with a different sampler still needs a driver call.
	if !s.SetTexture(0, "atlas", render.SamplerState{}) {
		t.Error("sampler change reported no change")
	}
	// Other slots are independent.
	if !s.SetTexture(1, "atlas", samp) {
		t.Error("slot 1 first bind reported no change")
	}

	// Out-of-range slots never touch the driver.
	if s.SetTexture(-1, "x", samp) || s.SetTexture(render.MaxTextureSlots, "x", samp) {
		t.Error("out-of-range slot reported a change")
	}
}

func TestInvalidateTexture(t *testing.T) {
	var s BindingState
	s.SetTexture(0, "atlas", render.SamplerState{})
	s.SetTexture(2, "atlas", render.SamplerState{})
	s.SetTexture(1, "other", render.SamplerState{})

	s.InvalidateTexture("atlas")

	if !s.SetTexture(0, "atlas", render.SamplerState{}) {
		t.Error("slot 0 not invalidated")
	}
	if !s.SetTexture(2, "atlas", render.SamplerState{}) {
		t.Error("slot 2 not invalidated")
	}
	if s.SetTexture(1, "other", render.SamplerState{}) {
		t.Error("unrelated slot was invalidated")
	}
}

func TestInvalidateSlot(t *testing.T) {
	var s BindingState
	s.SetTexture(0, "atlas", render.SamplerState{})
	s.SetTexture(1, "other", render.SamplerState{})

	s.InvalidateSlot(0)

	if !s.SetTexture(0, "atlas", render.SamplerState{}) {
		t.Error("slot 0 not invalidated")
	}
	if s.SetTexture(1, "other", render.SamplerState{}) {
		t.Error("unrelated slot was invalidated")
	}
	// Out-of-range slots are ignored.
	s.InvalidateSlot(-1)
	s.InvalidateSlot(render.MaxTextureSlots)
}

func TestResetForcesRebind(t *testing.T) {
	var s BindingState
	s.SetProgram("sprite")
	s.SetBlend(render.AlphaBlend())

	s.Reset()

	if !s.SetProgram("sprite") {
		t.Error("program survived Reset")
	}
	if !s.SetBlend(render.AlphaBlend()) {
		t.Error("blend survived Reset")
	}
}

func TestResolveScissor(t *testing.T) {
	// A zero-area clip means clipping disabled: full target size, not a
	// zero-size scissor.
	got := ResolveScissor(render.Rect{}, 800, 600)
	want := render.Rect{W: 800, H: 600}
	if got != want {
		t.Errorf("empty clip resolved to %+v, want %+v", got, want)
	}

	clip := render.Rect{X: 10, Y: 20, W: 100, H: 50}
	if got := ResolveScissor(clip, 800, 600); got != clip {
		t.Errorf("non-empty clip resolved to %+v, want %+v", got, clip)
	}
}

func TestResolveViewport(t *testing.T) {
	got := ResolveViewport(render.Rect{}, 1024, 768)
	want := render.Rect{W: 1024, H: 768}
	if got != want {
		t.Errorf("empty viewport resolved to %+v, want %+v", got, want)
	}
}
