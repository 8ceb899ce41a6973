// Package render implements the batching and draw-command pipeline:
// geometry collection, draw-call merging, frame lifecycle, and the
// backend abstraction the GL and null backends implement.
package render

// MaxTextureSlots is the number of texture units a single draw command
// may bind. Matches the common GL minimum.
const MaxTextureSlots = 16

// Primitive is the rasterization primitive for a geometry.
type Primitive uint8

const (
	Points Primitive = iota
	Lines
	LineStrip
	Triangles
	TriangleStrip
)

// Strip primitives cannot be merged by concatenating vertex data;
// the shared-edge topology would bridge unrelated geometry.
func (p Primitive) mergeable() bool {
	return p == Points || p == Lines || p == Triangles
}

// UploadType hints how often a geometry's content changes.
type UploadType uint8

const (
	// UploadStream re-transforms and re-uploads vertices every frame.
	UploadStream UploadType = iota
	// UploadStatic uploads once into the static region and reuses the
	// byte range by offset on later frames.
	UploadStatic
)

// TargetKind distinguishes the backbuffer from texture render targets.
type TargetKind uint8

const (
	TargetBackbuffer TargetKind = iota
	TargetTexture
)

// Target identifies where a draw lands: the backbuffer or a texture
// resource used as a render target.
type Target struct {
	Kind    TargetKind
	Texture string // image resource id, only for TargetTexture
}

// Backbuffer returns the default presentation target.
func Backbuffer() Target {
	return Target{Kind: TargetBackbuffer}
}

// TextureTarget returns a render-to-texture target for the given image id.
func TextureTarget(id string) Target {
	return Target{Kind: TargetTexture, Texture: id}
}

// Less orders targets for batch sorting: backbuffer first, then texture
// targets by id. The ordering is stable across frames.
func (t Target) Less(o Target) bool {
	if t.Kind != o.Kind {
		return t.Kind == TargetBackbuffer
	}
	return t.Texture < o.Texture
}

// BlendFactor is a blend function factor.
type BlendFactor uint8

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendDstColor
	BlendOneMinusDstColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
)

// BlendOp is a blend equation operator.
type BlendOp uint8

const (
	BlendAdd BlendOp = iota
	BlendSubtract
	BlendReverseSubtract
	BlendMin
	BlendMax
)

// BlendState is the full blend descriptor compared as a unit during
// state diffing.
type BlendState struct {
	Enabled  bool
	SrcRGB   BlendFactor
	DstRGB   BlendFactor
	SrcAlpha BlendFactor
	DstAlpha BlendFactor
	OpRGB    BlendOp
	OpAlpha  BlendOp
}

// AlphaBlend returns standard premultiplied-style alpha blending.
func AlphaBlend() BlendState {
	return BlendState{
		Enabled:  true,
		SrcRGB:   BlendSrcAlpha,
		DstRGB:   BlendOneMinusSrcAlpha,
		SrcAlpha: BlendOne,
		DstAlpha: BlendOneMinusSrcAlpha,
	}
}

// CompareFunc is a depth/stencil comparison function.
type CompareFunc uint8

const (
	CompareNever CompareFunc = iota
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

// DepthState controls depth testing and writing.
type DepthState struct {
	Test  bool
	Write bool
	Func  CompareFunc
}

// StencilOp is a stencil update operation.
type StencilOp uint8

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncr
	StencilIncrWrap
	StencilDecr
	StencilDecrWrap
	StencilInvert
)

// StencilState controls stencil testing.
type StencilState struct {
	Enabled   bool
	Func      CompareFunc
	Ref       int32
	ReadMask  uint32
	WriteMask uint32
	Fail      StencilOp
	ZFail     StencilOp
	Pass      StencilOp
}

// Filter is a texture sampling filter.
type Filter uint8

const (
	FilterLinear Filter = iota
	FilterNearest
)

// Wrap is a texture coordinate wrap mode.
type Wrap uint8

const (
	WrapClampToEdge Wrap = iota
	WrapRepeat
	WrapMirroredRepeat
)

// SamplerState overrides how a bound texture is sampled.
type SamplerState struct {
	MinFilter Filter
	MagFilter Filter
	WrapU     Wrap
	WrapV     Wrap
}

// Rect is an integer rectangle in pixels (top-left origin).
type Rect struct {
	X, Y, W, H int32
}

// Empty reports whether the rect has zero area. An empty clip rect is
// treated as "clip disabled", not a literal zero-size scissor.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}
