package selector

import (
	"fmt"
	"time"

	"github.com/Pavelevich/llm-checker/internal/hardware"
	"github.com/Pavelevich/llm-checker/internal/models"
	"github.com/Pavelevich/llm-checker/internal/scoring"
)

const defaultTopN = 5

// Options configures a selectModels/recommendPerCategory call.
type Options struct {
	TargetCtx   int
	TopN        int
	EnableProbe bool
	OptimizeFor string
	Runtime     string
}

func (o Options) withDefaults(category string) Options {
	out := o
	if out.TopN <= 0 {
		out.TopN = defaultTopN
	}
	if out.OptimizeFor == "" {
		out.OptimizeFor = "balanced"
	}
	if out.Runtime == "" {
		out.Runtime = "ollama"
	}
	if out.TargetCtx <= 0 {
		out.TargetCtx = scoring.ContextTargetFor(category)
	}
	return out
}

// Result is selectModels' return shape.
type Result struct {
	Category      string
	OptimizeFor   string
	Hardware      *hardware.Profile
	Candidates    []*Candidate
	TotalEvaluated int
	Timestamp     time.Time
}

// SelectModels implements the public selectModels operation: filter by
// category, evaluate every matching variant, rank, truncate to TopN, and
// then enforce mid-tier coverage. EnableProbe is not read here: callers
// run the probe package's re-scoring pass on the result themselves, and
// this package never dials out (that suspension point belongs to
// internal/probe).
func SelectModels(category string, pool []*models.ModelVariant, profile *hardware.Profile, opts Options, now time.Time) Result {
	opts = opts.withDefaults(category)

	var evaluated []*Candidate
	for _, v := range pool {
		if !CategoryMatches(v, category) {
			continue
		}
		if c, ok := EvaluateCandidate(v, profile, category, opts.OptimizeFor, opts.Runtime, opts.TargetCtx); ok {
			evaluated = append(evaluated, c)
		}
	}

	Rank(evaluated)
	selected := evaluated
	if len(selected) > opts.TopN {
		selected = append([]*Candidate{}, selected[:opts.TopN]...)
	}
	selected = ApplyMidTierCoverage(selected, evaluated, category, opts.OptimizeFor, profile.Budget(), profile.GPU.Unified)

	return Result{
		Category:       category,
		OptimizeFor:    opts.OptimizeFor,
		Hardware:       profile,
		Candidates:     selected,
		TotalEvaluated: len(evaluated),
		Timestamp:      now,
	}
}

// CategoryRecommendation is one entry of recommendPerCategory's result map.
type CategoryRecommendation struct {
	Tier           hardware.Tier
	BestModels     []*Candidate
	TotalEvaluated int
	CategoryInfo   map[string]string
}

// RecommendPerCategory runs selectModels for each category in the fixed
// set the public operation covers.
func RecommendPerCategory(pool []*models.ModelVariant, profile *hardware.Profile, opts Options, now time.Time) map[string]CategoryRecommendation {
	out := make(map[string]CategoryRecommendation, len(Categories))
	for _, category := range Categories {
		res := SelectModels(category, pool, profile, opts, now)
		out[category] = CategoryRecommendation{
			Tier:           profile.Tier(),
			BestModels:     res.Candidates,
			TotalEvaluated: res.TotalEvaluated,
			CategoryInfo: map[string]string{
				"optimizeFor": res.OptimizeFor,
			},
		}
	}
	return out
}

// Summary is summarize's return shape.
type Summary struct {
	HardwareTier hardware.Tier
	BestOverall  *Candidate
	ByCategory   map[string]CategoryRecommendation
	QuickCommands []string
}

// Summarize folds a recommendPerCategory result into a single overview:
// the overall best candidate across categories and a set of ready-to-run
// commands for the top pick in each category.
func Summarize(recommendations map[string]CategoryRecommendation, profile *hardware.Profile) Summary {
	var best *Candidate
	var commands []string
	for _, category := range Categories {
		rec, ok := recommendations[category]
		if !ok || len(rec.BestModels) == 0 {
			continue
		}
		top := rec.BestModels[0]
		if best == nil || top.EffectiveScore() > best.EffectiveScore() {
			best = top
		}
		commands = append(commands, fmt.Sprintf("ollama run %s", top.Variant.ModelIdentifier))
	}
	return Summary{
		HardwareTier:  profile.Tier(),
		BestOverall:   best,
		ByCategory:    recommendations,
		QuickCommands: commands,
	}
}
