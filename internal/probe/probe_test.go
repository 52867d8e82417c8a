package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Pavelevich/llm-checker/internal/hardware"
	"github.com/Pavelevich/llm-checker/internal/models"
	"github.com/Pavelevich/llm-checker/internal/runtime"
	"github.com/Pavelevich/llm-checker/internal/scoring"
	"github.com/Pavelevich/llm-checker/internal/selector"
)

type fakeGenerator struct {
	result runtime.GenerateResult
	err    error
}

func (f fakeGenerator) Generate(ctx context.Context, model, prompt string, opts runtime.GenerateOptions) (runtime.GenerateResult, error) {
	return f.result, f.err
}

func newCandidate(id string) *selector.Candidate {
	return &selector.Candidate{
		Variant:    &models.ModelVariant{ModelIdentifier: id, ParamsB: 7},
		Quant:      "Q4_K_M",
		Components: scoring.Components{Quality: 70, Speed: 50, Fit: 100, Context: 100},
		Score:      70,
	}
}

func TestEntry_ValidWithinTTL(t *testing.T) {
	now := time.Now()
	e := Entry{TPS: 10, Timestamp: now.Add(-24 * time.Hour).UnixMilli()}
	if !e.Valid(now) {
		t.Errorf("expected entry within 7 days to be valid")
	}
	stale := Entry{TPS: 10, Timestamp: now.Add(-8 * 24 * time.Hour).UnixMilli()}
	if stale.Valid(now) {
		t.Errorf("expected entry older than 7 days to be invalid")
	}
}

func TestCache_UpsertAndPersist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.json")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := c.Upsert("fp_model@Q4_K_M", Entry{TPS: 42, Timestamp: time.Now().UnixMilli()}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected persisted file: %v", err)
	}
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	entry, ok := reloaded.Get("fp_model@Q4_K_M")
	if !ok || entry.TPS != 42 {
		t.Fatalf("got %#v, %v", entry, ok)
	}
}

func TestApplyProbes_FailurePreservesEstimate(t *testing.T) {
	c := newCandidate("m:7b")
	gen := fakeGenerator{err: errors.New("connection refused")}
	cache, _ := Load(filepath.Join(t.TempDir(), "bench.json"))
	profile := &hardware.Profile{}
	ApplyProbes([]*selector.Candidate{c}, profile, "general", "balanced", gen, cache, time.Now())
	if c.MeasuredTPS != nil {
		t.Errorf("expected MeasuredTPS to remain nil after probe failure")
	}
	if c.FinalScore != nil {
		t.Errorf("expected FinalScore to remain nil after probe failure")
	}
}

func TestApplyProbes_SuccessRescores(t *testing.T) {
	c := newCandidate("m:7b")
	gen := fakeGenerator{result: runtime.GenerateResult{Output: "a b c d e f g h i j", LatencyMs: 1000}}
	cache, _ := Load(filepath.Join(t.TempDir(), "bench.json"))
	profile := &hardware.Profile{}
	ApplyProbes([]*selector.Candidate{c}, profile, "general", "balanced", gen, cache, time.Now())
	if c.MeasuredTPS == nil {
		t.Fatalf("expected MeasuredTPS to be set")
	}
	if c.FinalScore == nil {
		t.Fatalf("expected FinalScore to be set")
	}
}
