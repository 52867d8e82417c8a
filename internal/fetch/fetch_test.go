package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchModel_Success(t *testing.T) {
	apiResp := map[string]interface{}{
		"safetensors": map[string]interface{}{
			"total": float64(7_000_000_000),
		},
		"config": map[string]interface{}{
			"model_type":              "llama",
			"max_position_embeddings": float64(4096),
		},
		"pipeline_tag": "text-generation",
	}
	body, _ := json.Marshal(apiResp)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/models/org/repo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	defer server.Close()

	apiBaseOverride = server.URL
	defer func() { apiBaseOverride = "" }()

	d, err := FetchModel(context.Background(), "org/repo")
	if err != nil {
		t.Fatalf("FetchModel: %v", err)
	}
	if d.Identifier != "org/repo" {
		t.Errorf("Identifier = %q", d.Identifier)
	}
	if d.ParamsB == nil || *d.ParamsB != 7 {
		t.Errorf("ParamsB = %v, want 7", d.ParamsB)
	}
	if d.ContextLength == nil || *d.ContextLength != 4096 {
		t.Errorf("ContextLength = %v, want 4096", d.ContextLength)
	}
	if len(d.Tags) == 0 || d.Tags[0] != "chat" {
		t.Errorf("Tags = %v, want [chat]", d.Tags)
	}
}

func TestFetchModel_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()
	apiBaseOverride = server.URL
	defer func() { apiBaseOverride = "" }()

	_, err := FetchModel(context.Background(), "org/repo")
	if err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestFetchModel_NoParams(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{"safetensors": map[string]interface{}{}})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	defer server.Close()
	apiBaseOverride = server.URL
	defer func() { apiBaseOverride = "" }()

	_, err := FetchModel(context.Background(), "org/repo")
	if err == nil {
		t.Fatal("expected error when safetensors has no total/parameters")
	}
}

func TestDetectMoE_FromConfig(t *testing.T) {
	cfg := map[string]interface{}{
		"num_local_experts":   float64(8),
		"num_experts_per_tok": float64(2),
	}
	moe, ok := detectMoE(cfg, "unknown")
	if !ok || moe.Count != 8 || moe.Active != 2 {
		t.Errorf("detectMoE from config = %+v, %v", moe, ok)
	}
}

func TestDetectMoE_FromArch(t *testing.T) {
	moe, ok := detectMoE(nil, "mixtral")
	if !ok || moe.Count != 8 || moe.Active != 2 {
		t.Errorf("detectMoE from arch = %+v, %v", moe, ok)
	}
}

func TestDetectMoE_NoSignal(t *testing.T) {
	_, ok := detectMoE(nil, "llama")
	if ok {
		t.Error("detectMoE should report false with no expert signal")
	}
}

func TestInferContextLength(t *testing.T) {
	if inferContextLength(nil) != 0 {
		t.Error("inferContextLength(nil) should be 0")
	}
	if got := inferContextLength(map[string]interface{}{"max_position_embeddings": float64(8192)}); got != 8192 {
		t.Errorf("inferContextLength = %d, want 8192", got)
	}
}

func TestInferTags(t *testing.T) {
	tests := []struct {
		repoID string
		want   string
	}{
		{"org/embed-x", "embedding"},
		{"org/coder-7b", "coder"},
		{"org/r1-model", "reasoning"},
		{"org/instruct-7b", "instruct"},
	}
	for _, tt := range tests {
		got := inferTags(tt.repoID, "")
		if len(got) == 0 || got[0] != tt.want {
			t.Errorf("inferTags(%q) = %v, want starting with %q", tt.repoID, got, tt.want)
		}
	}
}
