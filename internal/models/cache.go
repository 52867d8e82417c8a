package models

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// CachePath returns the user cache file path for on-demand catalog
// enrichment entries (XDG-style: config dir/llm-checker/catalog_cache.json).
func CachePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "llm-checker", "catalog_cache.json"), nil
}

// cachedEntry is the on-disk shape for one enriched catalog descriptor.
type cachedEntry struct {
	Identifier  string         `json:"identifier"`
	ParamsB     *float64       `json:"params_b,omitempty"`
	Quant       string         `json:"quant,omitempty"`
	ContextLen  *int           `json:"context_length,omitempty"`
	SizeGB      *float64       `json:"size_gb,omitempty"`
	Modalities  []string       `json:"modalities,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Description string         `json:"description,omitempty"`
	MoE         *MoEDescriptor `json:"moe,omitempty"`
	LastUpdated *time.Time     `json:"last_updated,omitempty"`
	Source      Source         `json:"source,omitempty"`
	Registry    string         `json:"registry,omitempty"`
	License     string         `json:"license,omitempty"`
	Digest      string         `json:"digest,omitempty"`
	Pulls       int64          `json:"pulls,omitempty"`
}

func toCachedEntry(d CatalogModelDescriptor) cachedEntry {
	return cachedEntry{
		Identifier: d.Identifier, ParamsB: d.ParamsB, Quant: d.Quant, ContextLen: d.ContextLength,
		SizeGB: d.SizeGB, Modalities: d.Modalities, Tags: d.Tags, Description: d.Description,
		MoE: d.MoE, LastUpdated: d.LastUpdated, Source: d.Source, Registry: d.Registry,
		License: d.License, Digest: d.Digest, Pulls: d.Pulls,
	}
}

func (c cachedEntry) toDescriptor() CatalogModelDescriptor {
	return CatalogModelDescriptor{
		Identifier: c.Identifier, ParamsB: c.ParamsB, Quant: c.Quant, ContextLength: c.ContextLen,
		SizeGB: c.SizeGB, Modalities: c.Modalities, Tags: c.Tags, Description: c.Description,
		MoE: c.MoE, LastUpdated: c.LastUpdated, Source: c.Source, Registry: c.Registry,
		License: c.License, Digest: c.Digest, Pulls: c.Pulls,
	}
}

// LoadCachedCatalog reads the on-demand enrichment cache, returning an
// empty slice (not an error) if the file has never been written.
func LoadCachedCatalog() ([]CatalogModelDescriptor, error) {
	path, err := CachePath()
	if err != nil {
		return nil, err
	}
	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []cachedEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, err
	}
	out := make([]CatalogModelDescriptor, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.toDescriptor())
	}
	return out, nil
}

// AppendToCache folds a fetched descriptor into the on-disk enrichment
// cache, replacing any existing entry with the same identifier. This is
// the concrete shape of "a model absent from the pool can be fetched on
// demand and folded in" described in the catalog-enrichment feature.
func AppendToCache(d CatalogModelDescriptor) error {
	path, err := CachePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var entries []cachedEntry
	if body, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(body, &entries)
	}
	replaced := false
	entry := toCachedEntry(d)
	for i, e := range entries {
		if e.Identifier == d.Identifier {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}
	body, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o644)
}
