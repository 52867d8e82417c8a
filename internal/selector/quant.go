package selector

import (
	"github.com/Pavelevich/llm-checker/internal/memory"
	"github.com/Pavelevich/llm-checker/internal/models"
)

const minContextFloor = 1024

// SelectQuant iterates a variant's availableQuantizations high-to-low
// quality and returns the first whose requiredGB fits budget at
// targetCtx. If none fit, the context is halved once (floored to
// minContextFloor) and the search retried. If still nothing fits, ok is
// false and the variant must be rejected for this query.
func SelectQuant(v *models.ModelVariant, budget float64, targetCtx int) (quant string, requiredGB float64, usedCtx int, ok bool) {
	quants := v.AvailableQuantizations
	if len(quants) == 0 {
		quants = []string{v.Quant}
	}

	if q, gb, found := tryQuants(v, quants, budget, targetCtx); found {
		return q, gb, targetCtx, true
	}

	halved := targetCtx / 2
	if halved < minContextFloor {
		halved = minContextFloor
	}
	if q, gb, found := tryQuants(v, quants, budget, halved); found {
		return q, gb, halved, true
	}
	return "", 0, 0, false
}

func tryQuants(v *models.ModelVariant, quants []string, budget float64, ctx int) (string, float64, bool) {
	for _, q := range quants {
		gb := memory.RequiredGB(v, q, ctx)
		if gb <= budget {
			return q, gb, true
		}
	}
	return "", 0, false
}
