package models

import "strings"

// familyPriority is the ordered substring-match table used to infer a
// model's family from its identifier. Order matters: more specific
// matches (qwen2.5 before qwen3, llama3.2 before llama3.1) must be
// checked before looser ones so a single identifier cannot fall through
// to the wrong family.
var familyPriority = []struct {
	match  string
	family string
}{
	{"qwen2.5", "qwen2.5"},
	{"qwen3", "qwen3"},
	{"deepseek", "deepseek"},
	{"llama3.2", "llama3.2"},
	{"llama3.1", "llama3.1"},
	{"mistral", "mistral"},
	{"gemma2", "gemma2"},
	{"phi-3", "phi-3"},
	{"llava", "llava"},
	{"granite", "granite"},
	{"solar", "solar"},
	{"starcoder", "starcoder"},
	{"minicpm", "minicpm"},
}

// InferFamily matches identifier against the fixed priority table,
// falling back to the leading alpha run of the identifier when nothing
// matches (e.g. "customnet:13b" -> "customnet").
func InferFamily(identifier string) string {
	lower := strings.ToLower(identifier)
	for _, f := range familyPriority {
		if strings.Contains(lower, f.match) {
			return f.family
		}
	}
	base := lower
	if i := strings.IndexAny(base, ":/"); i >= 0 {
		base = base[:i]
	}
	end := len(base)
	for i, r := range base {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' && r != '_' {
			end = i
			break
		}
	}
	if end == 0 {
		return base
	}
	return base[:end]
}

// familyQualityBump is a small per-family quality adjustment applied in
// the scoring engine's Q component, reflecting observed instruction-
// tuning and benchmark quality differences within a parameter class.
var familyQualityBump = map[string]float64{
	"qwen2.5":   2,
	"qwen3":     2,
	"deepseek":  3,
	"llama3.2":  2,
	"llama3.1":  2,
	"mistral":   1,
	"gemma2":    1,
	"starcoder": 1,
}

// FamilyQualityBump returns the quality bump for family, or 0 if unknown.
func FamilyQualityBump(family string) float64 {
	return familyQualityBump[family]
}
