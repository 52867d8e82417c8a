// Package models normalizes installed-inventory and catalog descriptors
// into the single ModelVariant shape the selector core consumes, and
// carries the quantization/family/freshness tables used to reason about
// them.
package models

import (
	"strings"
	"time"
)

// Source is the provenance of a ModelVariant record.
type Source string

const (
	SourceOllamaLocal         Source = "ollama_local"
	SourceOllamaDatabase      Source = "ollama_database"
	SourceStaticCatalog       Source = "static_catalog"
	SourceEnhancedWithOllama  Source = "enhanced_with_ollama"
	SourceUnknown             Source = "unknown"
)

// ModelVariant is the canonical per-(model, variant tag, quantization)
// record every scoring/selector function consumes.
type ModelVariant struct {
	// Identity
	ModelIdentifier string
	Name            string
	Family          string
	Version         string

	// Shape
	ParamsB                float64
	CtxMax                 int
	Quant                  string
	SizeGB                 float64
	HasObservedSize        bool
	SizeByQuant            map[string]float64
	AvailableQuantizations []string

	// Nature
	Modalities map[string]bool
	Tags       map[string]bool

	// MoE
	IsMoE                 bool
	TotalParamsB          float64
	ActiveParamsB         float64
	HasActiveParamsB      bool
	ExpertCount           int
	ExpertsActivePerToken int

	// Freshness
	LastUpdatedAt  time.Time
	HasLastUpdated bool
	ModelAgeDays   int
	FreshnessScore float64
	IsStale        bool
	IsDeprecated   bool
	IndexAgeDays   int
	IndexStale     bool

	// Provenance
	SourceKind Source
	Registry   string
	License    string
	Digest     string
	Pulls      int64

	// State
	Installed bool
}

// HasTag reports whether tag is present in the variant's tag set.
func (m *ModelVariant) HasTag(tag string) bool {
	return m.Tags != nil && m.Tags[tag]
}

// HasModality reports whether modality is present.
func (m *ModelVariant) HasModality(modality string) bool {
	return m.Modalities != nil && m.Modalities[modality]
}

// NameContains reports whether the model name contains sub, case-insensitive.
func (m *ModelVariant) NameContains(sub string) bool {
	return strings.Contains(strings.ToLower(m.Name), strings.ToLower(sub))
}
