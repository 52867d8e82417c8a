// Package speed predicts tokens/sec for a (model, quantization,
// hardware) combination and normalizes it to a 0-100 score against a
// per-category target.
package speed

import (
	"math"

	"github.com/Pavelevich/llm-checker/internal/hardware"
	"github.com/Pavelevich/llm-checker/internal/models"
	"github.com/Pavelevich/llm-checker/internal/moe"
)

// Backend is the resolved accelerator path used to pick K.
type Backend string

const (
	BackendMetal Backend = "metal"
	BackendCUDA  Backend = "cuda"
	BackendARM   Backend = "cpu_arm"
	BackendX86   Backend = "cpu_x86"
)

// backendCoefficient is K in the speed formula.
var backendCoefficient = map[Backend]float64{
	BackendMetal: 160,
	BackendCUDA:  220,
	BackendARM:   90,
	BackendX86:   70,
}

// CategoryTarget is the tokens/sec target used to normalize S, keyed by
// task category.
var CategoryTarget = map[string]float64{
	"general":        40,
	"coding":         40,
	"reasoning":      25,
	"summarization":  60,
	"reading":        60,
	"multimodal":     40,
	"embeddings":     200,
}

// ResolveBackend picks the accelerator path per the priority
// metal > cuda > cpu_arm > cpu_x86.
func ResolveBackend(p *hardware.Profile) Backend {
	switch {
	case p.Acceleration.SupportsMetal:
		return BackendMetal
	case p.Acceleration.SupportsCUDA:
		return BackendCUDA
	case p.CPU.Architecture == hardware.ArchARM64 || p.CPU.Architecture == hardware.ArchAppleSilicon:
		return BackendARM
	default:
		return BackendX86
	}
}

// EstimateTPS predicts tokens/sec from the backend coefficient,
// effective parameter count, quant multiplier, threading and
// accelerator bonuses, and MoE speedup. quant is the quantization
// actually selected for this candidate (SelectQuant's choice), which can
// differ from m.Quant whenever the budget forces a smaller quant or a
// halved context; the quant multiplier must track that choice, not the
// model's catalog default.
func EstimateTPS(m *models.ModelVariant, p *hardware.Profile, quant, runtime string) float64 {
	profile := moe.ResolveParameterProfile(m)
	effectiveParams := profile.EffectiveParamsB
	if effectiveParams <= 0 {
		effectiveParams = m.ParamsB
	}

	backend := ResolveBackend(p)
	k := backendCoefficient[backend]

	base := k / effectiveParams
	base *= models.QuantSpeedMultiplier(quant)

	if p.CPU.PhysicalCores >= 8 {
		base *= 1.1
	}
	if backend == BackendMetal || backend == BackendCUDA {
		base *= 1.2
	}
	if profile.IsMoE {
		base *= moe.SpeedMultiplier(profile, m.TotalParamsB, runtime)
	}
	return base
}

// Score normalizes tps against the category target, capped at 100.
func Score(tps float64, category string) float64 {
	target, ok := CategoryTarget[category]
	if !ok {
		target = CategoryTarget["general"]
	}
	s := 100 * tps / target
	if s > 100 {
		s = 100
	}
	return math.Round(s*10) / 10
}
