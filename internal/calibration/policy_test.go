package calibration

import (
	"testing"
	"time"
)

func successModel(id string, quality, tps float64, task string) ModelResult {
	return ModelResult{
		ModelIdentifier: id,
		Status:          StatusSuccess,
		Metrics:         Metrics{TokensPerSecond: tps},
		Quality: Quality{
			OverallScore: quality,
			TaskScores:   map[string]float64{task: quality},
		},
	}
}

// TestSynthesizePolicy_S7 mirrors the scenario: four successful models
// where model-fast-low has quality 45 (excluded by minQuality=50) and
// model-a/b/c have 85/85/92 at speeds 90/90/70 t/s, objective=speed.
func TestSynthesizePolicy_S7(t *testing.T) {
	result := &Result{
		CalibrationVersion: "1.0",
		Objective:          "speed",
		Models: []ModelResult{
			successModel("model-fast-low", 45, 120, "general"),
			successModel("model-a", 85, 90, "general"),
			successModel("model-b", 85, 90, "general"),
			successModel("model-c", 92, 70, "general"),
		},
	}

	now := time.Now()
	p1 := SynthesizePolicy(result, "speed", 50, now, "")
	p2 := SynthesizePolicy(result, "speed", 50, now, "")

	route, ok := p1.Routing["general"]
	if !ok {
		t.Fatalf("expected a route for task general")
	}
	if route.Primary != "model-a" {
		t.Errorf("primary = %q, want model-a", route.Primary)
	}
	if len(route.Fallbacks) != 2 || route.Fallbacks[0] != "model-b" || route.Fallbacks[1] != "model-c" {
		t.Errorf("fallbacks = %v, want [model-b model-c]", route.Fallbacks)
	}

	route2 := p2.Routing["general"]
	if route2.Primary != route.Primary || len(route2.Fallbacks) != len(route.Fallbacks) {
		t.Errorf("repeated synthesis not idempotent: %#v vs %#v", route, route2)
	}
	for i := range route.Fallbacks {
		if route.Fallbacks[i] != route2.Fallbacks[i] {
			t.Errorf("repeated synthesis not idempotent at fallback %d", i)
		}
	}
}

func TestSynthesizePolicy_ExcludesBelowMinQuality(t *testing.T) {
	result := &Result{
		Models: []ModelResult{
			successModel("model-fast-low", 45, 120, "general"),
			successModel("model-a", 85, 90, "general"),
		},
	}
	p := SynthesizePolicy(result, "speed", 50, time.Now(), "")
	route := p.Routing["general"]
	if route.Primary == "model-fast-low" {
		t.Errorf("expected low-quality model excluded from routing")
	}
	for _, fb := range route.Fallbacks {
		if fb == "model-fast-low" {
			t.Errorf("expected low-quality model excluded from fallbacks")
		}
	}
}

func TestSynthesizePolicy_QualityObjectiveSortsByScore(t *testing.T) {
	result := &Result{
		Models: []ModelResult{
			successModel("model-x", 70, 10, "coding"),
			successModel("model-y", 95, 5, "coding"),
		},
	}
	p := SynthesizePolicy(result, "quality", 50, time.Now(), "")
	if p.Routing["coding"].Primary != "model-y" {
		t.Errorf("expected higher-quality model to win under quality objective")
	}
}

func TestSynthesizePolicy_NoEligibleModelsOmitsTask(t *testing.T) {
	result := &Result{
		Models: []ModelResult{
			successModel("model-low", 10, 10, "general"),
		},
	}
	p := SynthesizePolicy(result, "speed", 50, time.Now(), "")
	if _, ok := p.Routing["general"]; ok {
		t.Errorf("expected task with no eligible models to be omitted")
	}
}
