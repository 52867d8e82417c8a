// Package selector implements the candidate pipeline: model-pool
// filtering, per-candidate evaluation, mid-tier coverage enforcement,
// and ranking. It is the orchestration layer over memory, speed,
// scoring, and moe.
package selector

import (
	"github.com/Pavelevich/llm-checker/internal/models"
	"github.com/Pavelevich/llm-checker/internal/scoring"
)

// Candidate is one evaluated (model, quantization) pairing.
type Candidate struct {
	Variant     *models.ModelVariant
	Quant       string
	RequiredGB  float64
	EstTPS      float64
	MeasuredTPS *float64
	Components  scoring.Components
	Score       float64
	FinalScore  *float64
	Rationale   []string
}

// EffectiveScore returns FinalScore if a probe has recomputed it,
// otherwise the estimated Score.
func (c *Candidate) EffectiveScore() float64 {
	if c.FinalScore != nil {
		return *c.FinalScore
	}
	return c.Score
}
