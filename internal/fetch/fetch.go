// Package fetch retrieves a single model's metadata from HuggingFace's
// public API for on-demand catalog enrichment: a model absent from both
// the installed inventory and the static catalog can be looked up here
// and folded into the pool via models.AppendToCache.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Pavelevich/llm-checker/internal/models"
)

const (
	userAgent      = "llm-checker/1.0"
	defaultCtxLen  = 4096
	quantBPPQ4     = 0.5
)

var apiBaseOverride string

func apiBase() string {
	if apiBaseOverride != "" {
		return apiBaseOverride
	}
	return "https://huggingface.co"
}

type hfAPIResponse struct {
	Config      map[string]interface{} `json:"config"`
	PipelineTag string                  `json:"pipeline_tag"`
	Safetensors *struct {
		Total      *uint64           `json:"total"`
		Parameters map[string]uint64 `json:"parameters"`
	} `json:"safetensors"`
}

var moeExpertCounts = map[string]struct{ Count, Active int }{
	"mixtral":     {8, 2},
	"deepseek_v2": {64, 6},
	"deepseek_v3": {256, 8},
	"qwen3_moe":   {128, 8},
	"llama4":      {16, 1},
	"grok":        {8, 2},
}

// FetchModel retrieves repoID's metadata from HuggingFace and shapes it
// as a CatalogModelDescriptor ready for models.AppendToCache.
func FetchModel(ctx context.Context, repoID string) (models.CatalogModelDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var info hfAPIResponse
	if err := getJSON(ctx, apiBase()+"/api/models/"+repoID, &info); err != nil {
		return models.CatalogModelDescriptor{}, fmt.Errorf("fetch: %w", err)
	}

	totalParams := extractTotalParams(info)
	if totalParams == 0 {
		return models.CatalogModelDescriptor{}, fmt.Errorf("fetch: no parameter count in API response for %s (gated or private repo?)", repoID)
	}

	arch := ""
	if info.Config != nil {
		arch, _ = info.Config["model_type"].(string)
	}

	ctxLen := inferContextLength(info.Config)
	if ctxLen == 0 {
		ctxLen = defaultCtxLen
	}

	paramsB := float64(totalParams) / 1e9
	sizeGB := (float64(totalParams) * quantBPPQ4) / (1024 * 1024 * 1024)

	d := models.CatalogModelDescriptor{
		Identifier:    repoID,
		ParamsB:       &paramsB,
		Quant:         "Q4_K_M",
		ContextLength: &ctxLen,
		SizeGB:        &sizeGB,
		Modalities:    []string{"text"},
		Tags:          inferTags(repoID, info.PipelineTag),
		Description:   fmt.Sprintf("Fetched from HuggingFace: %s", repoID),
		Source:        models.SourceUnknown,
		Registry:      "huggingface",
	}
	if moe, ok := detectMoE(info.Config, arch); ok {
		active := paramsB * (float64(moe.Active) / float64(moe.Count)) * 2.5
		d.MoE = &models.MoEDescriptor{
			TotalParamsB:          paramsB,
			ActiveParamsB:         &active,
			ExpertCount:           moe.Count,
			ExpertsActivePerToken: moe.Active,
		}
	}
	return d, nil
}

func getJSON(ctx context.Context, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("network: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func extractTotalParams(info hfAPIResponse) uint64 {
	if info.Safetensors == nil {
		return 0
	}
	if info.Safetensors.Total != nil {
		return *info.Safetensors.Total
	}
	var max uint64
	for _, v := range info.Safetensors.Parameters {
		if v > max {
			max = v
		}
	}
	return max
}

func inferContextLength(c map[string]interface{}) int {
	if c == nil {
		return 0
	}
	for _, key := range []string{"max_position_embeddings", "max_sequence_length", "seq_length", "n_positions", "sliding_window"} {
		if v, ok := c[key]; ok {
			if n, ok := v.(float64); ok && n > 0 {
				return int(n)
			}
		}
	}
	return 0
}

func inferTags(repoID, pipelineTag string) []string {
	rid := strings.ToLower(repoID)
	switch {
	case strings.Contains(rid, "embed") || strings.Contains(rid, "bge"):
		return []string{"embedding"}
	case strings.Contains(rid, "coder") || strings.Contains(rid, "starcoder"):
		return []string{"coder", "instruct"}
	case strings.Contains(rid, "r1") || strings.Contains(rid, "reason"):
		return []string{"reasoning", "instruct"}
	case strings.Contains(rid, "instruct") || strings.Contains(rid, "chat"):
		return []string{"instruct", "chat"}
	case pipelineTag == "text-generation":
		return []string{"chat"}
	default:
		return nil
	}
}

func detectMoE(c map[string]interface{}, arch string) (struct{ Count, Active int }, bool) {
	if c != nil {
		numExp, hasNum := toInt(c["num_local_experts"])
		activeExp, hasActive := toInt(c["num_experts_per_tok"])
		if hasNum && hasActive && numExp > 0 && activeExp > 0 {
			return struct{ Count, Active int }{numExp, activeExp}, true
		}
	}
	if moe, ok := moeExpertCounts[arch]; ok {
		return struct{ Count, Active int }{moe.Count, moe.Active}, true
	}
	return struct{ Count, Active int }{}, false
}

func toInt(v interface{}) (int, bool) {
	n, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int(n), true
}
