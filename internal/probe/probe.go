package probe

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Pavelevich/llm-checker/internal/hardware"
	"github.com/Pavelevich/llm-checker/internal/runtime"
	"github.com/Pavelevich/llm-checker/internal/scoring"
	"github.com/Pavelevich/llm-checker/internal/selector"
	"github.com/Pavelevich/llm-checker/internal/speed"
)

const probeTimeout = 30 * time.Second

// Generator is the minimal interface the probe executor dials out to;
// runtime.Client satisfies it directly.
type Generator interface {
	Generate(ctx context.Context, model, prompt string, opts runtime.GenerateOptions) (runtime.GenerateResult, error)
}

// categoryPrompt gives each category a short (<=128 token) probe prompt.
var categoryPrompt = map[string]string{
	"coding":        "Write a function that reverses a linked list.",
	"reasoning":     "If a train leaves at 3pm going 60mph and another at 4pm going 80mph, when do they meet?",
	"multimodal":    "Describe what a typical sunset photo looks like.",
	"embeddings":    "Paris",
	"summarization": "Summarize: the quick brown fox jumps over the lazy dog.",
	"reading":       "Summarize: the quick brown fox jumps over the lazy dog.",
}

func promptFor(category string) string {
	if p, ok := categoryPrompt[category]; ok {
		return p
	}
	return "Tell me a short fact about the ocean."
}

// ApplyProbes re-scores each candidate's Speed component with a measured
// TPS: a cache hit within TTL is used directly; otherwise one
// non-streaming generation request is issued. Probe failures are logged
// and skipped per candidate — the candidate keeps its estimated Speed
// and the pipeline never fails because of a probe error.
func ApplyProbes(candidates []*selector.Candidate, profile *hardware.Profile, category, optimizeFor string, gen Generator, cache *Cache, now time.Time) {
	fp := profile.Fingerprint()
	prompt := promptFor(category)

	for _, c := range candidates {
		key := Key(fp, c.Variant.ModelIdentifier, c.Quant)

		var tps float64
		if entry, ok := cache.Get(key); ok && entry.Valid(now) {
			tps = entry.TPS
		} else {
			measured, err := runProbe(gen, c.Variant.ModelIdentifier, prompt)
			if err != nil {
				logrus.Warnf("probe: %s@%s failed, keeping estimate: %v", c.Variant.ModelIdentifier, c.Quant, err)
				continue
			}
			tps = measured
			if err := cache.Upsert(key, Entry{TPS: tps, Timestamp: now.UnixMilli(), Category: category}); err != nil {
				logrus.Warnf("probe: cache persist failed for %s: %v", key, err)
			}
		}

		rescoreCandidate(c, tps, category, optimizeFor)
	}

	selector.Rank(candidates)
}

func runProbe(gen Generator, model, prompt string) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	result, err := gen.Generate(ctx, model, prompt, runtime.GenerateOptions{NumPredict: 128})
	if err != nil {
		return 0, err
	}
	return tokensPerSecond(result), nil
}

// tokensPerSecond prefers the runtime's true token counters; the
// words*1.3 heuristic is only a fallback per the open-question decision
// that the runtime's own eval_count/eval_duration should win when present.
func tokensPerSecond(result runtime.GenerateResult) float64 {
	if result.HasEvalCounters && result.EvalDurationMs > 0 {
		return float64(result.EvalCount) / (result.EvalDurationMs / 1000)
	}
	words := float64(len(strings.Fields(result.Output)))
	tokens := words * 1.3
	seconds := result.LatencyMs / 1000
	if seconds <= 0 {
		return 0
	}
	return tokens / seconds
}

func rescoreCandidate(c *selector.Candidate, tps float64, category, optimizeFor string) {
	measured := tps
	c.MeasuredTPS = &measured
	c.Components.Speed = speed.Score(tps, category)
	finalScore := scoring.FinalScore(c.Components, category, optimizeFor)
	c.FinalScore = &finalScore
}
