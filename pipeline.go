package gsdirect

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gsdirect/gs"
)

// PipelineConfig is the modern pipeline state for one draw call. It is
// built fresh for every draw and never mutated afterwards, and it is
// comparable so backends can use it as a pipeline cache key.
//
// Alpha values are in GS units scaled so that 0x80 maps to 1.0.
type PipelineConfig struct {
	// BlendEnabled selects whether Blend is applied.
	BlendEnabled bool
	// Blend is the color/alpha blend equation.
	Blend gputypes.BlendState
	// BlendConstant is the FIX value as a fraction of 0x80, used by
	// equations with BlendFactorConstant.
	BlendConstant float32
	// WriteMask selects the framebuffer channels written.
	WriteMask gputypes.ColorWriteMask

	// DepthCompare is the depth test. Larger depth values are closer.
	DepthCompare gputypes.CompareFunction
	// DepthWrite enables depth buffer writes.
	DepthWrite bool

	// AlphaTest enables discarding fragments with alpha outside
	// [AlphaMin, AlphaMax].
	AlphaTest bool
	AlphaMin  float32
	AlphaMax  float32

	// Fog enables blending towards FogColor by the vertex fog factor.
	Fog      bool
	FogColor [3]uint8
}

// alphaTestPassAll is an upper bound above any reachable alpha.
const alphaTestPassAll = 10

// NewPipelineConfig maps a GS draw mode to pipeline state.
func NewPipelineConfig(mode gs.DrawMode, fix uint8, fogColor [3]uint8) PipelineConfig {
	cfg := PipelineConfig{
		WriteMask:     gputypes.ColorWriteMaskAll,
		DepthCompare:  gputypes.CompareFunctionAlways,
		DepthWrite:    mode.DepthWrite(),
		BlendConstant: float32(fix) / 128,
		Fog:           mode.Fog(),
		FogColor:      fogColor,
	}

	if mode.DepthTestEnable() {
		cfg.DepthCompare = depthCompare(mode.DepthTest())
	}

	if mode.AlphaBlendEnable() {
		cfg.BlendEnabled = true
		cfg.Blend = blendState(mode.AlphaBlend())
	}

	if mode.AlphaTestEnable() {
		switch mode.AlphaTest() {
		case gs.AlphaAlways:
			cfg.AlphaTest = true
			cfg.AlphaMin, cfg.AlphaMax = 0, alphaTestPassAll
		case gs.AlphaGEqual:
			cfg.AlphaTest = true
			cfg.AlphaMin, cfg.AlphaMax = float32(mode.ARef())/128, alphaTestPassAll
		case gs.AlphaNever:
			// Every fragment fails; AFAIL decides what survives.
			switch mode.AlphaFail() {
			case gs.AlphaFailFBOnly:
				cfg.DepthWrite = false
			case gs.AlphaFailKeep:
				cfg.AlphaTest = true
				cfg.AlphaMin, cfg.AlphaMax = alphaTestPassAll, 0
			}
		}
	}
	return cfg
}

func depthCompare(z gs.ZTest) gputypes.CompareFunction {
	switch z {
	case gs.ZTestNever:
		return gputypes.CompareFunctionNever
	case gs.ZTestGEqual:
		return gputypes.CompareFunctionGreaterEqual
	case gs.ZTestGreater:
		return gputypes.CompareFunctionGreater
	}
	return gputypes.CompareFunctionAlways
}

// writeSourceAlpha stores the fragment alpha in the framebuffer, which is
// what the GS does when FBA is off.
var writeSourceAlpha = gputypes.BlendComponent{
	SrcFactor: gputypes.BlendFactorOne,
	DstFactor: gputypes.BlendFactorZero,
	Operation: gputypes.BlendOperationAdd,
}

func colorBlend(src, dst gputypes.BlendFactor, op gputypes.BlendOperation) gputypes.BlendState {
	return gputypes.BlendState{
		Color: gputypes.BlendComponent{SrcFactor: src, DstFactor: dst, Operation: op},
		Alpha: writeSourceAlpha,
	}
}

func blendState(b gs.AlphaBlend) gputypes.BlendState {
	switch b {
	case gs.BlendSrc0SrcDst:
		return colorBlend(gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOne, gputypes.BlendOperationAdd)
	case gs.BlendSrc0FixDst:
		return colorBlend(gputypes.BlendFactorConstant, gputypes.BlendFactorOne, gputypes.BlendOperationAdd)
	case gs.BlendSrcDstFixDst:
		return colorBlend(gputypes.BlendFactorConstant, gputypes.BlendFactorOneMinusConstant, gputypes.BlendOperationAdd)
	case gs.BlendZeroSrcSrcDst:
		return colorBlend(gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOne, gputypes.BlendOperationReverseSubtract)
	case gs.BlendSrcSrcSrcSrc:
		return colorBlend(gputypes.BlendFactorOne, gputypes.BlendFactorZero, gputypes.BlendOperationAdd)
	case gs.BlendSrc0DstDst:
		return colorBlend(gputypes.BlendFactorDstAlpha, gputypes.BlendFactorOne, gputypes.BlendOperationAdd)
	}
	return colorBlend(gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha, gputypes.BlendOperationAdd)
}

// UsesConstant reports whether the blend equation reads BlendConstant.
func (c PipelineConfig) UsesConstant() bool {
	return c.BlendEnabled && (c.Blend.Color.UsesConstant() || c.Blend.Alpha.UsesConstant())
}
