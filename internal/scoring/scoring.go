// Package scoring combines the Quality/Speed/Fit/Context components into
// a single blended score per category and optimization profile.
package scoring

import (
	"math"
	"strings"

	"github.com/Pavelevich/llm-checker/internal/models"
)

// Components holds the four [0,100] scores that make up a candidate's
// final score.
type Components struct {
	Quality float64
	Speed   float64
	Fit     float64
	Context float64
}

// contextTarget is the per-category context-length target used by the
// Context component. Long-document categories want a larger window;
// embeddings barely need one.
var contextTarget = map[string]int{
	"general":       4096,
	"talking":       4096,
	"creative":      4096,
	"coding":        4096,
	"reasoning":     8192,
	"summarization": 8192,
	"reading":       8192,
	"multimodal":    4096,
	"embeddings":    512,
}

// ContextTargetFor returns the context-length target for a category,
// defaulting to "general"'s target for unrecognized categories.
func ContextTargetFor(category string) int {
	if t, ok := contextTarget[category]; ok {
		return t
	}
	return contextTarget["general"]
}

// QualityScore is the quality prior: a parameter-count base adjusted by
// family reputation, quantization penalty, freshness, and task
// alignment.
func QualityScore(m *models.ModelVariant, quant, category string) float64 {
	base := qualityBaseFromParams(m.ParamsB)
	base += models.FamilyQualityBump(m.Family)
	base += models.QuantQualityPenalty(quant)
	base += models.FreshnessQualityAdjustment(m)

	lower := strings.ToLower(m.Name)
	isCoder := m.HasTag("coder") || strings.Contains(lower, "code")
	switch category {
	case "coding":
		if isCoder {
			base += 6
		} else {
			base -= 15
		}
	case "general":
		if m.HasTag("chat") || m.HasTag("instruct") {
			base += 4
		}
	case "multimodal":
		if m.HasTag("vision") || m.HasModality("vision") {
			base += 6
		}
	}
	if category == "reasoning" && m.ParamsB >= 13 {
		base += 5
	}
	return clamp(base, 0, 100)
}

func qualityBaseFromParams(paramsB float64) float64 {
	switch {
	case paramsB <= 1.5:
		return 45
	case paramsB <= 4:
		return 60
	case paramsB <= 9:
		return 75
	case paramsB <= 15:
		return 82
	case paramsB <= 34:
		return 89
	default:
		return 95
	}
}

// FitComponent scores how comfortably requiredGB sits inside budget.
// ok is false when the candidate must be excluded (ratio > 1.0).
func FitComponent(requiredGB, budget float64) (score float64, ok bool) {
	if budget <= 0 {
		return 0, false
	}
	ratio := requiredGB / budget
	switch {
	case ratio <= 0.9:
		return 100, true
	case ratio <= 1.0:
		return 70, true
	default:
		return 0, false
	}
}

// ContextComponent scores ctxMax against the category's target window.
// ok is false when the candidate must be excluded outright (below half
// the target).
func ContextComponent(ctxMax int, category string) (score float64, ok bool) {
	target := ContextTargetFor(category)
	switch {
	case ctxMax >= target:
		return 100, true
	case ctxMax >= target/2:
		return 70, true
	default:
		return 0, false
	}
}

// categoryWeight is the base {Q, S, F, C} weight vector per category.
var categoryWeight = map[string][4]float64{
	"general":       {0.45, 0.35, 0.15, 0.05},
	"talking":       {0.45, 0.35, 0.15, 0.05},
	"creative":      {0.45, 0.35, 0.15, 0.05},
	"coding":        {0.55, 0.20, 0.15, 0.10},
	"reasoning":     {0.60, 0.10, 0.20, 0.10},
	"multimodal":    {0.50, 0.15, 0.20, 0.15},
	"summarization": {0.40, 0.35, 0.15, 0.10},
	"reading":       {0.40, 0.35, 0.15, 0.10},
	"embeddings":    {0.30, 0.50, 0.20, 0.00},
}

// profileWeight is the override {Q, S, F, C} for each optimization
// profile, plus the blend factor p. "balanced" has no override (p=0).
var profileWeight = map[string]struct {
	weights [4]float64
	p       float64
}{
	"speed":    {[4]float64{0.25, 0.55, 0.15, 0.05}, 0.80},
	"quality":  {[4]float64{0.65, 0.10, 0.15, 0.10}, 0.95},
	"context":  {[4]float64{0.30, 0.10, 0.20, 0.40}, 0.85},
	"coding":   {[4]float64{0.55, 0.25, 0.10, 0.10}, 0.80},
	"balanced": {[4]float64{0, 0, 0, 0}, 0},
}

// BlendedWeights returns the final {Q,S,F,C} weight vector for a
// category under an optimization profile: base*(1-p) + profile*p.
func BlendedWeights(category, optimizeFor string) [4]float64 {
	base, ok := categoryWeight[category]
	if !ok {
		base = categoryWeight["general"]
	}
	prof, ok := profileWeight[optimizeFor]
	if !ok {
		prof = profileWeight["balanced"]
	}
	if prof.p == 0 {
		return base
	}
	var out [4]float64
	for i := range out {
		out[i] = base[i]*(1-prof.p) + prof.weights[i]*prof.p
	}
	return out
}

// FinalScore combines components with the blended weight vector,
// rounded to one decimal place.
func FinalScore(c Components, category, optimizeFor string) float64 {
	w := BlendedWeights(category, optimizeFor)
	raw := c.Quality*w[0] + c.Speed*w[1] + c.Fit*w[2] + c.Context*w[3]
	return math.Round(raw*10) / 10
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
