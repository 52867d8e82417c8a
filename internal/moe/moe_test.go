package moe

import (
	"testing"

	"github.com/Pavelevich/llm-checker/internal/models"
)

func TestResolveParameterProfile_Dense(t *testing.T) {
	m := &models.ModelVariant{ParamsB: 7}
	p := ResolveParameterProfile(m)
	if p.IsMoE || p.EffectiveParamsB != 7 || p.AssumptionSource != SourceDenseParams {
		t.Fatalf("got %#v", p)
	}
}

func TestResolveParameterProfile_ActiveMetadata(t *testing.T) {
	m := &models.ModelVariant{IsMoE: true, TotalParamsB: 46.7, ActiveParamsB: 12.9, HasActiveParamsB: true}
	p := ResolveParameterProfile(m)
	if p.EffectiveParamsB != 12.9 || p.AssumptionSource != SourceMoEActiveMetadata {
		t.Fatalf("got %#v", p)
	}
}

func TestResolveParameterProfile_DerivedExpertRatio(t *testing.T) {
	m := &models.ModelVariant{IsMoE: true, TotalParamsB: 47, ExpertCount: 8, ExpertsActivePerToken: 2}
	p := ResolveParameterProfile(m)
	want := 47.0 * 2 / 8
	if p.EffectiveParamsB != want || p.AssumptionSource != SourceMoEDerivedExpertRatio {
		t.Fatalf("got %#v, want %v", p, want)
	}
}

func TestResolveParameterProfile_FallbackTotal(t *testing.T) {
	m := &models.ModelVariant{IsMoE: true, TotalParamsB: 47}
	p := ResolveParameterProfile(m)
	if p.EffectiveParamsB != 47 || p.AssumptionSource != SourceMoEFallbackTotal {
		t.Fatalf("got %#v", p)
	}
}

func TestResolveParameterProfile_FallbackDefault(t *testing.T) {
	m := &models.ModelVariant{IsMoE: true}
	p := ResolveParameterProfile(m)
	if p.EffectiveParamsB != 1.0 || p.AssumptionSource != SourceMoEFallbackDefault {
		t.Fatalf("got %#v", p)
	}
}

func TestSpeedMultiplier_DenseIsOne(t *testing.T) {
	p := ParameterProfile{IsMoE: false}
	if got := SpeedMultiplier(p, 7, "ollama"); got != 1.0 {
		t.Errorf("got %v, want 1.0", got)
	}
}

func TestSpeedMultiplier_VLLMFasterThanOllama(t *testing.T) {
	p := ParameterProfile{IsMoE: true, EffectiveParamsB: 12.9}
	vllm := SpeedMultiplier(p, 46.7, "vllm")
	ollama := SpeedMultiplier(p, 46.7, "ollama")
	if vllm <= ollama {
		t.Errorf("vllm multiplier %v should exceed ollama %v", vllm, ollama)
	}
}

func TestResolveRuntime_Aliases(t *testing.T) {
	if ResolveRuntime("llamacpp") != "llama.cpp" {
		t.Errorf("alias not resolved")
	}
	if ResolveRuntime("unknown-thing") != "ollama" {
		t.Errorf("expected default fallback to ollama")
	}
}
