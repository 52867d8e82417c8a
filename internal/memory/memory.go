// Package memory predicts the GB required to run a (model, quantization,
// context) combination, honoring the MoE sparse-inference override and
// preferring observed artifact sizes over the bytes-per-param heuristic.
package memory

import (
	"github.com/Pavelevich/llm-checker/internal/models"
	"github.com/Pavelevich/llm-checker/internal/moe"
)

// RequiredGB predicts the memory needed for a (model, quant, context)
// combination: model weights (sparse active-expert path, observed
// artifact size, or bytes-per-param heuristic, in that order), KV
// cache, and a flat runtime overhead.
func RequiredGB(m *models.ModelVariant, quant string, ctxTokens int) float64 {
	profile := moe.ResolveParameterProfile(m)

	var modelMem float64
	usedObserved := false

	switch {
	case profile.IsMoE && m.HasActiveParamsB:
		modelMem = profile.EffectiveParamsB * models.QuantBPP(quant)
	case m.SizeByQuant != nil && m.SizeByQuant[quant] > 0:
		modelMem = m.SizeByQuant[quant]
		usedObserved = true
	case m.HasObservedSize && m.Quant == quant:
		modelMem = m.SizeGB
		usedObserved = true
	default:
		modelMem = m.ParamsB * models.QuantBPP(quant)
	}

	kvCache := 8e-6 * m.ParamsB * float64(ctxTokens)
	runtimeOverhead := 0.5
	if usedObserved {
		runtimeOverhead = 0.35
	}
	return modelMem + kvCache + runtimeOverhead
}
