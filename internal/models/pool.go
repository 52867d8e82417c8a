package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultCtxMax = 4096

var visionCueRe = func() func(string) bool {
	cues := []string{"vision", "vl", "llava", "multimodal", "-v-", "image"}
	return func(s string) bool {
		l := strings.ToLower(s)
		for _, c := range cues {
			if strings.Contains(l, c) {
				return true
			}
		}
		return false
	}
}()

// LoadPool expands installed inventory and an external catalog into one
// normalized pool of ModelVariant records, deduplicated by
// modelIdentifier with installed copies preferred over catalog copies.
// Malformed entries are skipped with a recoverable log warning rather
// than aborting the whole pool build.
func LoadPool(installed []InstalledModelDescriptor, catalog []CatalogModelDescriptor, now time.Time) []*ModelVariant {
	var variants []*ModelVariant
	seen := make(map[string]bool)

	for _, d := range installed {
		v, err := fromInstalled(d, now)
		if err != nil {
			logrus.Warnf("models: skipping installed entry %q: %v", d.Identifier, err)
			continue
		}
		v.Installed = true
		variants = append(variants, v)
		seen[v.ModelIdentifier] = true
	}
	for _, d := range catalog {
		if seen[d.Identifier] {
			continue
		}
		v, err := fromCatalog(d, now)
		if err != nil {
			logrus.Warnf("models: skipping catalog entry %q: %v", d.Identifier, err)
			continue
		}
		variants = append(variants, v)
		seen[v.ModelIdentifier] = true
	}

	applySiblingQuantData(variants)
	return variants
}

func fromInstalled(d InstalledModelDescriptor, now time.Time) (*ModelVariant, error) {
	if strings.TrimSpace(d.Identifier) == "" {
		return nil, fmt.Errorf("empty identifier")
	}
	paramsB, ok := resolveParamsB(d.ParamsB, d.Identifier)
	if !ok {
		return nil, fmt.Errorf("could not determine parameter count for %q", d.Identifier)
	}
	quant := d.Quant
	if quant == "" {
		quant = inferQuantFromText(d.Identifier)
	}
	ctxMax := defaultCtxMax
	if d.ContextLength != nil && *d.ContextLength > 0 {
		ctxMax = *d.ContextLength
	}

	v := &ModelVariant{
		ModelIdentifier: d.Identifier,
		Name:            d.Identifier,
		Family:          InferFamily(d.Identifier),
		ParamsB:         paramsB,
		CtxMax:          ctxMax,
		Quant:           quant,
		SourceKind:      SourceOllamaLocal,
		Digest:          d.Digest,
		License:         d.License,
		Modalities:      map[string]bool{"text": true},
		Tags:            map[string]bool{},
	}
	if d.SizeGB != nil && *d.SizeGB > 0 {
		v.SizeGB = *d.SizeGB
		v.HasObservedSize = true
	}
	for _, t := range d.Tags {
		v.Tags[strings.ToLower(t)] = true
	}
	applyInferredTagsAndModalities(v, d.Identifier, "")
	ApplyFreshness(v, time.Time{}, false, "", now)
	return v, nil
}

func fromCatalog(d CatalogModelDescriptor, now time.Time) (*ModelVariant, error) {
	if strings.TrimSpace(d.Identifier) == "" {
		return nil, fmt.Errorf("empty identifier")
	}
	paramsB, ok := resolveParamsB(d.ParamsB, d.Identifier)
	if !ok {
		return nil, fmt.Errorf("could not determine parameter count for %q", d.Identifier)
	}
	quant := d.Quant
	if quant == "" {
		quant = inferQuantFromText(d.Identifier)
	}
	ctxMax := defaultCtxMax
	if d.ContextLength != nil && *d.ContextLength > 0 {
		ctxMax = *d.ContextLength
	}
	source := d.Source
	if source == "" {
		source = SourceStaticCatalog
	}

	v := &ModelVariant{
		ModelIdentifier: d.Identifier,
		Name:            d.Identifier,
		Family:          InferFamily(d.Identifier),
		ParamsB:         paramsB,
		CtxMax:          ctxMax,
		Quant:           quant,
		SourceKind:      source,
		Registry:        d.Registry,
		License:         canonicalizeLicense(d.License),
		Digest:          d.Digest,
		Pulls:           d.Pulls,
		Modalities:      map[string]bool{},
		Tags:            map[string]bool{},
	}
	if d.SizeGB != nil && *d.SizeGB > 0 {
		v.SizeGB = *d.SizeGB
		v.HasObservedSize = true
	}
	for _, t := range d.Tags {
		v.Tags[strings.ToLower(t)] = true
	}
	for _, m := range d.Modalities {
		v.Modalities[strings.ToLower(m)] = true
	}
	if len(v.Modalities) == 0 {
		v.Modalities["text"] = true
	}
	applyInferredTagsAndModalities(v, d.Identifier, d.Description)

	if d.MoE != nil {
		v.IsMoE = true
		v.TotalParamsB = d.MoE.TotalParamsB
		v.ExpertCount = d.MoE.ExpertCount
		v.ExpertsActivePerToken = d.MoE.ExpertsActivePerToken
		if d.MoE.ActiveParamsB != nil {
			v.ActiveParamsB = *d.MoE.ActiveParamsB
			v.HasActiveParamsB = true
		}
	}

	if d.LastUpdated != nil {
		ApplyFreshness(v, *d.LastUpdated, true, d.Description, now)
	} else {
		ApplyFreshness(v, time.Time{}, false, d.Description, now)
	}
	return v, nil
}

func resolveParamsB(explicit *float64, identifier string) (float64, bool) {
	if explicit != nil && *explicit > 0 {
		return *explicit, true
	}
	if p, ok := ParseParamsB(identifier); ok && p > 0 {
		return p, true
	}
	return 0, false
}

func inferQuantFromText(text string) string {
	upper := strings.ToUpper(text)
	for _, q := range QuantHierarchy {
		if strings.Contains(upper, q) {
			return q
		}
	}
	return "Q4_K_M"
}

func canonicalizeLicense(license string) string {
	l := strings.TrimSpace(license)
	if l == "" {
		return "unknown"
	}
	switch strings.ToLower(l) {
	case "apache-2.0", "apache 2.0", "apache2":
		return "apache-2.0"
	case "mit":
		return "mit"
	case "llama3", "llama 3", "llama3.1", "llama3.2":
		return "llama-community"
	default:
		return l
	}
}

func applyInferredTagsAndModalities(v *ModelVariant, identifier, description string) {
	lower := strings.ToLower(identifier + " " + description)
	if strings.Contains(lower, "code") || strings.Contains(v.Family, "starcoder") {
		v.Tags["coder"] = true
	}
	if strings.Contains(lower, "instruct") {
		v.Tags["instruct"] = true
	}
	if strings.Contains(lower, "chat") {
		v.Tags["chat"] = true
	}
	if strings.Contains(lower, "embed") || strings.Contains(lower, "bge-") || strings.Contains(lower, "nomic-embed") || strings.Contains(lower, "all-minilm") {
		v.Tags["embedding"] = true
	}
	if strings.Contains(lower, "reason") || strings.Contains(lower, "r1") {
		v.Tags["reasoning"] = true
	}
	if strings.Contains(lower, "creative") || strings.Contains(lower, "story") {
		v.Tags["creative"] = true
	}
	if visionCueRe(lower) {
		v.Tags["vision"] = true
		if v.Modalities == nil {
			v.Modalities = map[string]bool{}
		}
		v.Modalities["text"] = true
		v.Modalities["vision"] = true
	}
}

// applySiblingQuantData builds sizeByQuant and availableQuantizations for
// every variant from its siblings: other variants of the same family
// within ±0.25 B of paramsB, so a 7B never inherits a 70B's artifact
// sizes.
func applySiblingQuantData(variants []*ModelVariant) {
	for _, v := range variants {
		sizeByQuant := map[string]float64{}
		quantSet := map[string]bool{v.Quant: true}
		if v.HasObservedSize {
			sizeByQuant[v.Quant] = v.SizeGB
		}
		for _, other := range variants {
			if other == v || other.Family != v.Family {
				continue
			}
			if absFloat(other.ParamsB-v.ParamsB) > 0.25 {
				continue
			}
			quantSet[other.Quant] = true
			if other.HasObservedSize {
				if _, exists := sizeByQuant[other.Quant]; !exists {
					sizeByQuant[other.Quant] = other.SizeGB
				}
			}
		}
		v.SizeByQuant = sizeByQuant
		v.AvailableQuantizations = expandQuantizations(quantSet)
	}
}

// expandQuantizations sorts the observed quant set best-to-worst and
// expands downward: once the best known quant is found, every lower
// rung of the fixed hierarchy is assumed available as a feasibility
// extrapolation.
func expandQuantizations(observed map[string]bool) []string {
	bestRank := len(QuantHierarchy)
	for q := range observed {
		if r, ok := quantRank[q]; ok && r < bestRank {
			bestRank = r
		}
	}
	if bestRank == len(QuantHierarchy) {
		// nothing recognized; fall back to whatever was observed, sorted lexicographically.
		var out []string
		for q := range observed {
			out = append(out, q)
		}
		sort.Strings(out)
		return out
	}
	return append([]string{}, QuantHierarchy[bestRank:]...)
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
