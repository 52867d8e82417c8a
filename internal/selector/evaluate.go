package selector

import (
	"fmt"

	"github.com/Pavelevich/llm-checker/internal/hardware"
	"github.com/Pavelevich/llm-checker/internal/models"
	"github.com/Pavelevich/llm-checker/internal/scoring"
	"github.com/Pavelevich/llm-checker/internal/speed"
)

// EvaluateCandidate runs quant selection and the full Q/S/F/C scoring
// for one model against one hardware profile. Returns nil, false when
// the variant cannot be made to fit or its context falls below the
// category's half-target floor.
func EvaluateCandidate(v *models.ModelVariant, profile *hardware.Profile, category, optimizeFor, runtime string, targetCtx int) (*Candidate, bool) {
	budget := profile.Budget()
	quant, requiredGB, _, ok := SelectQuant(v, budget, targetCtx)
	if !ok {
		return nil, false
	}

	fitScore, ok := scoring.FitComponent(requiredGB, budget)
	if !ok {
		return nil, false
	}
	ctxScore, ok := scoring.ContextComponent(v.CtxMax, category)
	if !ok {
		return nil, false
	}

	backend := speed.ResolveBackend(profile)
	estTPS := speed.EstimateTPS(v, profile, quant, runtime)
	speedScore := speed.Score(estTPS, category)
	qualityScore := scoring.QualityScore(v, quant, category)

	components := scoring.Components{Quality: qualityScore, Speed: speedScore, Fit: fitScore, Context: ctxScore}
	score := scoring.FinalScore(components, category, optimizeFor)

	return &Candidate{
		Variant:    v,
		Quant:      quant,
		RequiredGB: requiredGB,
		EstTPS:     estTPS,
		Components: components,
		Score:      score,
		Rationale:  buildRationale(v, quant, requiredGB, budget, string(backend)),
	}, true
}

func buildRationale(v *models.ModelVariant, quant string, requiredGB, budget float64, backend string) []string {
	var notes []string
	notes = append(notes, fmt.Sprintf("fits in %.1f/%.1f GB", requiredGB, budget))
	notes = append(notes, quant)
	if IsCoderCandidate(v) {
		notes = append(notes, "coder-tuned")
	}
	if v.HasModality("vision") || v.HasTag("vision") {
		notes = append(notes, "vision-capable")
	}
	switch {
	case v.IsDeprecated:
		notes = append(notes, "deprecated penalized")
	case v.IsStale:
		notes = append(notes, "stale penalized")
	case v.FreshnessScore >= 90:
		notes = append(notes, "fresh release")
	}
	if v.ParamsB >= 7 && v.ParamsB <= 13 {
		notes = append(notes, fmt.Sprintf("%gB is sweet spot", v.ParamsB))
	}
	notes = append(notes, backend)
	return notes
}
