package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Pavelevich/llm-checker/data"
)

// seedMoE mirrors MoEDescriptor's shape for JSON decode.
type seedMoE struct {
	TotalParamsB          float64  `json:"totalParamsB"`
	ActiveParamsB         *float64 `json:"activeParamsB"`
	ExpertCount           int      `json:"expertCount"`
	ExpertsActivePerToken int      `json:"expertsActivePerToken"`
}

// seedEntry is the on-disk shape of data/models.json, the static catalog
// seed shipped with the binary.
type seedEntry struct {
	Identifier    string   `json:"identifier"`
	ParamsB       *float64 `json:"paramsB"`
	Quant         string   `json:"quant"`
	ContextLength *int     `json:"contextLength"`
	SizeGB        *float64 `json:"sizeGB"`
	Modalities    []string `json:"modalities"`
	Tags          []string `json:"tags"`
	Description   string   `json:"description"`
	MoE           *seedMoE `json:"moe"`
	LastUpdated   *string  `json:"lastUpdated"`
	Source        string   `json:"source"`
	Registry      string   `json:"registry"`
	License       string   `json:"license"`
	Digest        string   `json:"digest"`
	Pulls         int64    `json:"pulls"`
}

// LoadSeedCatalog decodes the embedded static catalog into
// CatalogModelDescriptors ready for LoadPool.
func LoadSeedCatalog() ([]CatalogModelDescriptor, error) {
	var entries []seedEntry
	if err := json.Unmarshal(data.SeedCatalogJSON, &entries); err != nil {
		return nil, fmt.Errorf("models: decode seed catalog: %w", err)
	}

	out := make([]CatalogModelDescriptor, 0, len(entries))
	for _, e := range entries {
		d := CatalogModelDescriptor{
			Identifier:    e.Identifier,
			ParamsB:       e.ParamsB,
			Quant:         e.Quant,
			ContextLength: e.ContextLength,
			SizeGB:        e.SizeGB,
			Modalities:    e.Modalities,
			Tags:          e.Tags,
			Description:   e.Description,
			Source:        Source(orDefault(e.Source, string(SourceStaticCatalog))),
			Registry:      e.Registry,
			License:       e.License,
			Digest:        e.Digest,
			Pulls:         e.Pulls,
		}
		if e.MoE != nil {
			d.MoE = &MoEDescriptor{
				TotalParamsB:          e.MoE.TotalParamsB,
				ActiveParamsB:         e.MoE.ActiveParamsB,
				ExpertCount:           e.MoE.ExpertCount,
				ExpertsActivePerToken: e.MoE.ExpertsActivePerToken,
			}
		}
		if e.LastUpdated != nil {
			if t, err := time.Parse(time.RFC3339, *e.LastUpdated); err == nil {
				d.LastUpdated = &t
			}
		}
		out = append(out, d)
	}
	return out, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
