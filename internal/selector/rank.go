package selector

import "sort"

// Rank sorts candidates by score descending; ties are broken by higher
// paramsB, then installed-first, then lexicographic identifier, so the
// output order is stable for identical inputs.
func Rank(candidates []*Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.EffectiveScore() != b.EffectiveScore() {
			return a.EffectiveScore() > b.EffectiveScore()
		}
		if a.Variant.ParamsB != b.Variant.ParamsB {
			return a.Variant.ParamsB > b.Variant.ParamsB
		}
		if a.Variant.Installed != b.Variant.Installed {
			return a.Variant.Installed
		}
		return a.Variant.ModelIdentifier < b.Variant.ModelIdentifier
	})
}

var midTierEligibleCategories = map[string]bool{
	"general": true, "talking": true, "reading": true, "coding": true, "reasoning": true, "multimodal": true,
}

// ApplyMidTierCoverage is a safeguard against ranking only
// small/fast models on large machines: when nothing in the selected
// slate reaches the mid-tier parameter floor, the last slot is swapped
// for the best-scoring candidate (from the full evaluated set) that
// does, and the slate is re-sorted.
func ApplyMidTierCoverage(selected []*Candidate, all []*Candidate, category, optimizeFor string, budget float64, unified bool) []*Candidate {
	if !midTierEligibleCategories[category] || optimizeFor == "speed" || budget < 16 {
		return selected
	}
	minMidTier := 6.0
	if budget >= 24 {
		minMidTier = 7.0
	}
	for _, c := range selected {
		if c.Variant.ParamsB >= minMidTier {
			return selected
		}
	}

	speedFloor := 20.0
	if unified {
		speedFloor = 25.0
	}

	var best *Candidate
	for _, c := range all {
		if c.Variant.ParamsB < minMidTier {
			continue
		}
		if c.Components.Speed < speedFloor {
			continue
		}
		if best == nil || c.EffectiveScore() > best.EffectiveScore() {
			best = c
		}
	}
	if best == nil || len(selected) == 0 {
		return selected
	}

	out := append([]*Candidate{}, selected[:len(selected)-1]...)
	out = append(out, best)
	Rank(out)
	return out
}
