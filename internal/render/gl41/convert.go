package gl41

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/kiln-gfx/kiln/internal/render"
)

func primitiveMode(p render.Primitive) uint32 {
	switch p {
	case render.Points:
		return gl.POINTS
	case render.Lines:
		return gl.LINES
	case render.LineStrip:
		return gl.LINE_STRIP
	case render.TriangleStrip:
		return gl.TRIANGLE_STRIP
	default:
		return gl.TRIANGLES
	}
}

func blendFactor(f render.BlendFactor) uint32 {
	switch f {
	case render.BlendZero:
		return gl.ZERO
	case render.BlendOne:
		return gl.ONE
	case render.BlendSrcColor:
		return gl.SRC_COLOR
	case render.BlendOneMinusSrcColor:
		return gl.ONE_MINUS_SRC_COLOR
	case render.BlendDstColor:
		return gl.DST_COLOR
	case render.BlendOneMinusDstColor:
		return gl.ONE_MINUS_DST_COLOR
	case render.BlendSrcAlpha:
		return gl.SRC_ALPHA
	case render.BlendOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case render.BlendDstAlpha:
		return gl.DST_ALPHA
	case render.BlendOneMinusDstAlpha:
		return gl.ONE_MINUS_DST_ALPHA
	default:
		return gl.ONE
	}
}

func blendOp(op render.BlendOp) uint32 {
	switch op {
	case render.BlendSubtract:
		return gl.FUNC_SUBTRACT
	case render.BlendReverseSubtract:
		return gl.FUNC_REVERSE_SUBTRACT
	case render.BlendMin:
		return gl.MIN
	case render.BlendMax:
		return gl.MAX
	default:
		return gl.FUNC_ADD
	}
}

func compareFunc(f render.CompareFunc) uint32 {
	switch f {
	case render.CompareNever:
		return gl.NEVER
	case render.CompareLess:
		return gl.LESS
	case render.CompareEqual:
		return gl.EQUAL
	case render.CompareLessEqual:
		return gl.LEQUAL
	case render.CompareGreater:
		return gl.GREATER
	case render.CompareNotEqual:
		return gl.NOTEQUAL
	case render.CompareGreaterEqual:
		return gl.GEQUAL
	default:
		return gl.ALWAYS
	}
}

func stencilOp(op render.StencilOp) uint32 {
	switch op {
	case render.StencilZero:
		return gl.ZERO
	case render.StencilReplace:
		return gl.REPLACE
	case render.StencilIncr:
		return gl.INCR
	case render.StencilIncrWrap:
		return gl.INCR_WRAP
	case render.StencilDecr:
		return gl.DECR
	case render.StencilDecrWrap:
		return gl.DECR_WRAP
	case render.StencilInvert:
		return gl.INVERT
	default:
		return gl.KEEP
	}
}

func filterMode(f render.Filter) int32 {
	if f == render.FilterNearest {
		return gl.NEAREST
	}
	return gl.LINEAR
}

func wrapMode(w render.Wrap) int32 {
	switch w {
	case render.WrapRepeat:
		return gl.REPEAT
	case render.WrapMirroredRepeat:
		return gl.MIRRORED_REPEAT
	default:
		return gl.CLAMP_TO_EDGE
	}
}

func applyBlend(s render.BlendState) {
	if !s.Enabled {
		gl.Disable(gl.BLEND)
		return
	}
	gl.Enable(gl.BLEND)
	gl.BlendFuncSeparate(blendFactor(s.SrcRGB), blendFactor(s.DstRGB),
		blendFactor(s.SrcAlpha), blendFactor(s.DstAlpha))
	gl.BlendEquationSeparate(blendOp(s.OpRGB), blendOp(s.OpAlpha))
}

func applyDepth(s render.DepthState) {
	if s.Test {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(compareFunc(s.Func))
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthMask(s.Write)
}

func applyStencil(s render.StencilState) {
	if !s.Enabled {
		gl.Disable(gl.STENCIL_TEST)
		return
	}
	gl.Enable(gl.STENCIL_TEST)
	gl.StencilFunc(compareFunc(s.Func), s.Ref, s.ReadMask)
	gl.StencilOp(stencilOp(s.Fail), stencilOp(s.ZFail), stencilOp(s.Pass))
	gl.StencilMask(s.WriteMask)
}
