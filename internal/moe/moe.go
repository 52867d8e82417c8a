// Package moe resolves the effective parameter count used in memory and
// speed math for both dense and mixture-of-experts models, and holds the
// per-runtime overhead tables that convert a theoretical MoE speedup
// into a realistic one.
package moe

import (
	"strings"

	"github.com/Pavelevich/llm-checker/internal/models"
)

// AssumptionSource names which rule in the priority chain produced
// EffectiveParamsB, kept on the result for output traceability.
type AssumptionSource string

const (
	SourceDenseParams           AssumptionSource = "dense_params"
	SourceMoEActiveMetadata     AssumptionSource = "moe_active_metadata"
	SourceMoEDerivedExpertRatio AssumptionSource = "moe_derived_expert_ratio"
	SourceMoEFallbackTotal      AssumptionSource = "moe_fallback_total_params"
	SourceMoEFallbackModel      AssumptionSource = "moe_fallback_model_params"
	SourceMoEFallbackDefault    AssumptionSource = "moe_fallback_default"
)

// ParameterProfile is the result of resolving a model's effective
// parameter count.
type ParameterProfile struct {
	IsMoE            bool
	EffectiveParamsB float64
	AssumptionSource AssumptionSource
}

// ResolveParameterProfile resolves a model's effective parameter count:
// dense models use paramsB directly; MoE models prefer declared active
// params, then an expert-ratio derivation, then total params, then
// paramsB, then a 1B default.
func ResolveParameterProfile(m *models.ModelVariant) ParameterProfile {
	if !m.IsMoE {
		return ParameterProfile{IsMoE: false, EffectiveParamsB: m.ParamsB, AssumptionSource: SourceDenseParams}
	}
	if m.HasActiveParamsB && m.ActiveParamsB <= m.TotalParamsB {
		return ParameterProfile{IsMoE: true, EffectiveParamsB: m.ActiveParamsB, AssumptionSource: SourceMoEActiveMetadata}
	}
	if m.TotalParamsB > 0 && m.ExpertCount > 0 && m.ExpertsActivePerToken > 0 {
		ratio := float64(m.ExpertsActivePerToken) / float64(m.ExpertCount)
		if ratio > 1 {
			ratio = 1
		}
		return ParameterProfile{
			IsMoE:            true,
			EffectiveParamsB: m.TotalParamsB * ratio,
			AssumptionSource: SourceMoEDerivedExpertRatio,
		}
	}
	if m.TotalParamsB > 0 {
		return ParameterProfile{IsMoE: true, EffectiveParamsB: m.TotalParamsB, AssumptionSource: SourceMoEFallbackTotal}
	}
	if m.ParamsB > 0 {
		return ParameterProfile{IsMoE: true, EffectiveParamsB: m.ParamsB, AssumptionSource: SourceMoEFallbackModel}
	}
	return ParameterProfile{IsMoE: true, EffectiveParamsB: 1.0, AssumptionSource: SourceMoEFallbackDefault}
}

// RuntimeOverhead is the {routing, communication, offload} overhead
// triple for a runtime, plus the hard cap on the final speed multiplier.
type RuntimeOverhead struct {
	Routing       float64
	Communication float64
	Offload       float64
	Cap           float64
}

// Multiplier returns (1-routing)*(1-communication)*(1-offload).
func (r RuntimeOverhead) Multiplier() float64 {
	return (1 - r.Routing) * (1 - r.Communication) * (1 - r.Offload)
}

var runtimeOverheads = map[string]RuntimeOverhead{
	"ollama":    {Routing: 0.18, Communication: 0.13, Offload: 0.08, Cap: 2.35},
	"vllm":      {Routing: 0.12, Communication: 0.08, Offload: 0.04, Cap: 2.65},
	"mlx":       {Routing: 0.16, Communication: 0.10, Offload: 0.05, Cap: 2.45},
	"llama.cpp": {Routing: 0.20, Communication: 0.14, Offload: 0.09, Cap: 2.30},
}

var runtimeAliases = map[string]string{
	"ollama":    "ollama",
	"vllm":      "vllm",
	"mlx":       "mlx",
	"llama.cpp": "llama.cpp",
	"llamacpp":  "llama.cpp",
	"llama-cpp": "llama.cpp",
	"gguf":      "llama.cpp",
}

// ResolveRuntime canonicalizes a runtime name via the alias table,
// defaulting to "ollama" when unrecognized.
func ResolveRuntime(runtime string) string {
	canon, ok := runtimeAliases[strings.ToLower(strings.TrimSpace(runtime))]
	if !ok {
		return "ollama"
	}
	return canon
}

// Overhead returns the overhead table entry for a (possibly aliased)
// runtime name.
func Overhead(runtime string) RuntimeOverhead {
	return runtimeOverheads[ResolveRuntime(runtime)]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SpeedMultiplier returns the MoE speed multiplier for a model on a
// given runtime: 1.0 for dense models, else
// clamp(theoretical*overhead, 1, runtime cap) where
// theoretical = clamp(totalParamsB/active, 1, 4). totalParamsB is the
// model's total (sparse) parameter count, the same value
// ResolveParameterProfile read ActiveParamsB/ExpertCount against.
func SpeedMultiplier(profile ParameterProfile, totalParamsB float64, runtime string) float64 {
	if !profile.IsMoE || profile.EffectiveParamsB <= 0 {
		return 1.0
	}
	if totalParamsB <= 0 {
		totalParamsB = profile.EffectiveParamsB
	}
	theoretical := clamp(totalParamsB/profile.EffectiveParamsB, 1, 4)
	overhead := Overhead(runtime)
	final := theoretical * overhead.Multiplier()
	return clamp(final, 1, overhead.Cap)
}
