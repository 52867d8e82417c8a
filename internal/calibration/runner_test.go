package calibration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Pavelevich/llm-checker/internal/runtime"
)

// scriptedExecutor returns one scripted result per (model, call index),
// in call order, and errors out once its script is exhausted or at the
// call index set for the model in failAt.
type scriptedExecutor struct {
	scripts map[string][]runtime.GenerateResult
	calls   map[string]int
	failAt  map[string]int // model -> 0-based call index that errors
}

func newScriptedExecutor() *scriptedExecutor {
	return &scriptedExecutor{
		scripts: map[string][]runtime.GenerateResult{},
		calls:   map[string]int{},
		failAt:  map[string]int{},
	}
}

func (s *scriptedExecutor) Generate(ctx context.Context, model, prompt string, opts runtime.GenerateOptions) (runtime.GenerateResult, error) {
	idx := s.calls[model]
	s.calls[model] = idx + 1
	if fa, ok := s.failAt[model]; ok && idx == fa {
		return runtime.GenerateResult{}, errors.New("request timeout exceeded")
	}
	script := s.scripts[model]
	if idx >= len(script) {
		return runtime.GenerateResult{}, errors.New("script exhausted")
	}
	return script[idx], nil
}

func TestRun_DryRunEmitsAllPending(t *testing.T) {
	opts := RunOptions{
		Suite:  []PromptCase{{ID: "p1", Task: "general", Prompt: "hi"}},
		Models: []string{"model-a", "model-b"},
		Mode:   ModeDryRun,
	}
	res, err := Run(context.Background(), opts, newScriptedExecutor(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Summary.Pending != 2 || res.Summary.Total != 2 {
		t.Errorf("expected 2 pending, got %#v", res.Summary)
	}
	for _, m := range res.Models {
		if m.Status != StatusPending {
			t.Errorf("expected pending status, got %v", m.Status)
		}
	}
}

func TestRun_ContractOnlyNeverDispatches(t *testing.T) {
	exec := newScriptedExecutor()
	opts := RunOptions{
		Suite:  []PromptCase{{ID: "p1", Task: "general", Prompt: "hi"}},
		Models: []string{"model-a"},
		Mode:   ModeContractOnly,
	}
	_, err := Run(context.Background(), opts, exec, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.calls["model-a"] != 0 {
		t.Errorf("expected no dispatch in contract-only mode")
	}
}

func TestRun_InvalidModeIsFatal(t *testing.T) {
	opts := RunOptions{Mode: "bogus"}
	_, err := Run(context.Background(), opts, newScriptedExecutor(), time.Now())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
}

func TestRun_FullModeRejectsUnsupportedRuntime(t *testing.T) {
	opts := RunOptions{
		Mode:    ModeFull,
		Runtime: "vllm",
		Models:  []string{"model-a"},
	}
	_, err := Run(context.Background(), opts, newScriptedExecutor(), time.Now())
	if err == nil {
		t.Fatalf("expected rejection for unsupported full-mode runtime")
	}
}

// TestRun_S5_FullModeAggregation mirrors the scenario: two models, two
// prompts, warmup=1, measured=2; model-alpha succeeds with scripted
// latencies 120/180 (prompt 1) and 160/200 (prompt 2) ms, all checks
// passing and true eval counters so tokens_per_second is exact.
func TestRun_S5_FullModeAggregation(t *testing.T) {
	exec := newScriptedExecutor()
	// warmup call (discarded) then two measured calls per prompt = 3 per prompt, 6 total.
	exec.scripts["model-alpha"] = []runtime.GenerateResult{
		{Output: "Paris", LatencyMs: 0, HasEvalCounters: true, EvalCount: 1, EvalDurationMs: 1}, // warmup p1 (discarded)
		{Output: "Paris", LatencyMs: 120, HasEvalCounters: true, EvalCount: 4, EvalDurationMs: 120},
		{Output: "Paris", LatencyMs: 180, HasEvalCounters: true, EvalCount: 4, EvalDurationMs: 180},
		{Output: "Paris", LatencyMs: 0, HasEvalCounters: true, EvalCount: 1, EvalDurationMs: 1}, // warmup p2 (discarded)
		{Output: "Paris", LatencyMs: 160, HasEvalCounters: true, EvalCount: 3, EvalDurationMs: 160},
		{Output: "Paris", LatencyMs: 200, HasEvalCounters: true, EvalCount: 4, EvalDurationMs: 200},
	}

	opts := RunOptions{
		Suite: []PromptCase{
			{ID: "p1", Task: "general", Prompt: "capital of France?", Checks: []Check{{Type: CheckContains, Expected: "Paris", Weight: 1}}},
			{ID: "p2", Task: "general", Prompt: "capital of France again?", Checks: []Check{{Type: CheckContains, Expected: "Paris", Weight: 1}}},
		},
		Models:             []string{"model-alpha"},
		Runtime:            "ollama",
		Mode:               ModeFull,
		WarmupRuns:         1,
		MeasuredIterations: 2,
	}

	res, err := Run(context.Background(), opts, exec, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := res.Models[0]
	if m.Status != StatusSuccess {
		t.Fatalf("expected success, got %v (%s)", m.Status, m.Error)
	}
	if m.Metrics.LatencyMsP50 != 160 {
		t.Errorf("p50 = %v, want 160", m.Metrics.LatencyMsP50)
	}
	if m.Metrics.LatencyMsP95 != 200 {
		t.Errorf("p95 = %v, want 200", m.Metrics.LatencyMsP95)
	}
	if m.Metrics.TokensPerSecond <= 20 || m.Metrics.TokensPerSecond >= 25 {
		t.Errorf("tokensPerSecond = %v, want in (20,25)", m.Metrics.TokensPerSecond)
	}
	if m.Quality.OverallScore != 100 {
		t.Errorf("overallScore = %v, want 100", m.Quality.OverallScore)
	}
	if m.Quality.CheckPassRate != 1 {
		t.Errorf("checkPassRate = %v, want 1", m.Quality.CheckPassRate)
	}
}

// TestRun_S6_OneTimeoutOneHealthy mirrors the scenario: one model times
// out, one succeeds; summary must report successful=1, failed=1 and the
// failed model must carry an ETIMEDOUT error code.
func TestRun_S6_OneTimeoutOneHealthy(t *testing.T) {
	exec := newScriptedExecutor()
	exec.failAt["model-timeout"] = 1 // fails on first measured call (index 1, after warmup at 0)
	exec.scripts["model-timeout"] = []runtime.GenerateResult{{LatencyMs: 10}}
	exec.scripts["model-healthy"] = []runtime.GenerateResult{
		{Output: "ok", LatencyMs: 10, HasEvalCounters: true, EvalCount: 2, EvalDurationMs: 10},
		{Output: "ok", LatencyMs: 10, HasEvalCounters: true, EvalCount: 2, EvalDurationMs: 10},
	}

	opts := RunOptions{
		Suite:              []PromptCase{{ID: "p1", Task: "general", Prompt: "hi"}},
		Models:             []string{"model-timeout", "model-healthy"},
		Runtime:            "ollama",
		Mode:               ModeFull,
		WarmupRuns:         1,
		MeasuredIterations: 1,
	}

	res, err := Run(context.Background(), opts, exec, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Summary.Successful != 1 || res.Summary.Failed != 1 {
		t.Fatalf("summary = %#v, want successful=1 failed=1", res.Summary)
	}
	for _, m := range res.Models {
		if m.ModelIdentifier == "model-timeout" {
			if m.Status != StatusFailed || m.Traces.ErrorCode != "ETIMEDOUT" {
				t.Errorf("expected failed/ETIMEDOUT, got %v/%s", m.Status, m.Traces.ErrorCode)
			}
		}
	}
}

func TestRun_CancellationSkipsRemainingModels(t *testing.T) {
	exec := newScriptedExecutor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := RunOptions{
		Suite:              []PromptCase{{ID: "p1", Task: "general", Prompt: "hi"}},
		Models:             []string{"model-a", "model-b"},
		Runtime:            "ollama",
		Mode:               ModeFull,
		WarmupRuns:         1,
		MeasuredIterations: 1,
	}
	res, err := Run(ctx, opts, exec, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Summary.Skipped != 2 {
		t.Errorf("summary = %#v, want both models skipped after cancellation", res.Summary)
	}
	if exec.calls["model-a"] != 0 || exec.calls["model-b"] != 0 {
		t.Errorf("expected no dispatch after cancellation")
	}
}

func TestNearestRankPercentile_SingleValue(t *testing.T) {
	if got := nearestRankPercentile([]float64{42}, 95); got != 42 {
		t.Errorf("got %v, want 42", got)
	}
}
