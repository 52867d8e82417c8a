package models

import "time"

// InstalledModelDescriptor is what a local-inventory provider (e.g. an
// `ollama list` adapter) returns for one installed model.
type InstalledModelDescriptor struct {
	Identifier    string
	ParamsB       *float64
	Quant         string
	ContextLength *int
	SizeGB        *float64
	Tags          []string
	Digest        string
	License       string
}

// MoEDescriptor carries optional mixture-of-experts metadata a catalog
// entry may supply.
type MoEDescriptor struct {
	TotalParamsB          float64
	ActiveParamsB         *float64
	ExpertCount           int
	ExpertsActivePerToken int
}

// CatalogModelDescriptor is what a (possibly remote) catalog provider
// returns for one variant-tagged entry.
type CatalogModelDescriptor struct {
	Identifier    string
	ParamsB       *float64
	Quant         string
	ContextLength *int
	SizeGB        *float64
	Modalities    []string
	Tags          []string
	Description   string

	MoE *MoEDescriptor

	LastUpdated    *time.Time
	Source         Source
	Registry       string
	License        string
	Digest         string
	Pulls          int64
}
