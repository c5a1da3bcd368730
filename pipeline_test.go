package gsdirect

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gsdirect/gs"
)

func TestPipelineBlend(t *testing.T) {
	tests := []struct {
		blend    gs.AlphaBlend
		src, dst gputypes.BlendFactor
		op       gputypes.BlendOperation
		constant bool
	}{
		{gs.BlendSrcDstSrcDst, gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha, gputypes.BlendOperationAdd, false},
		{gs.BlendSrc0SrcDst, gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOne, gputypes.BlendOperationAdd, false},
		{gs.BlendSrc0FixDst, gputypes.BlendFactorConstant, gputypes.BlendFactorOne, gputypes.BlendOperationAdd, true},
		{gs.BlendSrcDstFixDst, gputypes.BlendFactorConstant, gputypes.BlendFactorOneMinusConstant, gputypes.BlendOperationAdd, true},
		{gs.BlendZeroSrcSrcDst, gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOne, gputypes.BlendOperationReverseSubtract, false},
		{gs.BlendSrcSrcSrcSrc, gputypes.BlendFactorOne, gputypes.BlendFactorZero, gputypes.BlendOperationAdd, false},
		{gs.BlendSrc0DstDst, gputypes.BlendFactorDstAlpha, gputypes.BlendFactorOne, gputypes.BlendOperationAdd, false},
	}
	for _, tt := range tests {
		t.Run(tt.blend.String(), func(t *testing.T) {
			m := gs.DefaultDrawMode()
			m.SetAlphaBlend(tt.blend)
			cfg := NewPipelineConfig(m, 0x40, [3]uint8{})
			c := cfg.Blend.Color
			if !cfg.BlendEnabled || c.SrcFactor != tt.src || c.DstFactor != tt.dst || c.Operation != tt.op {
				t.Errorf("color blend = %+v", c)
			}
			if cfg.Blend.Alpha != writeSourceAlpha {
				t.Errorf("alpha blend = %+v", cfg.Blend.Alpha)
			}
			if cfg.UsesConstant() != tt.constant {
				t.Errorf("UsesConstant() = %t, want %t", cfg.UsesConstant(), tt.constant)
			}
			if cfg.BlendConstant != 0.5 {
				t.Errorf("BlendConstant = %v, want 0.5", cfg.BlendConstant)
			}
		})
	}
}

func TestPipelineBlendDisabled(t *testing.T) {
	m := gs.DefaultDrawMode()
	m.SetAlphaBlendEnable(false)
	if cfg := NewPipelineConfig(m, 0, [3]uint8{}); cfg.BlendEnabled || cfg.UsesConstant() {
		t.Errorf("blend enabled: %+v", cfg)
	}
}

func TestPipelineDepth(t *testing.T) {
	tests := []struct {
		enable bool
		test   gs.ZTest
		want   gputypes.CompareFunction
	}{
		{true, gs.ZTestNever, gputypes.CompareFunctionNever},
		{true, gs.ZTestAlways, gputypes.CompareFunctionAlways},
		{true, gs.ZTestGEqual, gputypes.CompareFunctionGreaterEqual},
		{true, gs.ZTestGreater, gputypes.CompareFunctionGreater},
		{false, gs.ZTestGreater, gputypes.CompareFunctionAlways},
	}
	for _, tt := range tests {
		m := gs.DefaultDrawMode()
		m.SetDepthTestEnable(tt.enable)
		m.SetDepthTest(tt.test)
		if got := NewPipelineConfig(m, 0, [3]uint8{}).DepthCompare; got != tt.want {
			t.Errorf("enable=%t test=%v: DepthCompare = %v, want %v", tt.enable, tt.test, got, tt.want)
		}
	}
}

func TestPipelineAlphaTest(t *testing.T) {
	tests := []struct {
		name       string
		test       gs.AlphaTest
		fail       gs.AlphaFail
		ref        uint8
		wantTest   bool
		min, max   float32
		depthWrite bool
	}{
		{"always", gs.AlphaAlways, gs.AlphaFailKeep, 0, true, 0, alphaTestPassAll, true},
		{"gequal", gs.AlphaGEqual, gs.AlphaFailKeep, 0x40, true, 0.5, alphaTestPassAll, true},
		{"never keep", gs.AlphaNever, gs.AlphaFailKeep, 0, true, alphaTestPassAll, 0, true},
		{"never fb only", gs.AlphaNever, gs.AlphaFailFBOnly, 0, false, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := gs.DefaultDrawMode()
			m.SetAlphaTestEnable(true)
			m.SetAlphaTest(tt.test)
			m.SetAlphaFail(tt.fail)
			m.SetARef(tt.ref)
			cfg := NewPipelineConfig(m, 0, [3]uint8{})
			if cfg.AlphaTest != tt.wantTest || cfg.AlphaMin != tt.min || cfg.AlphaMax != tt.max {
				t.Errorf("alpha test = %t [%v, %v], want %t [%v, %v]",
					cfg.AlphaTest, cfg.AlphaMin, cfg.AlphaMax, tt.wantTest, tt.min, tt.max)
			}
			if cfg.DepthWrite != tt.depthWrite {
				t.Errorf("DepthWrite = %t, want %t", cfg.DepthWrite, tt.depthWrite)
			}
		})
	}
}

func TestPipelineConfigComparable(t *testing.T) {
	m := gs.DefaultDrawMode()
	a := NewPipelineConfig(m, 0x10, [3]uint8{1, 2, 3})
	b := NewPipelineConfig(m, 0x10, [3]uint8{1, 2, 3})
	if a != b {
		t.Error("configs from equal inputs differ")
	}
	seen := map[PipelineConfig]bool{a: true}
	if !seen[b] {
		t.Error("config not usable as a map key")
	}
}
