package calibration

import (
	"sort"
	"time"
)

const defaultMinQuality = 50

// Route is one task's routing decision.
type Route struct {
	Primary   string   `yaml:"primary" json:"primary"`
	Fallbacks []string `yaml:"fallbacks,omitempty" json:"fallbacks,omitempty"`
	MinQuality *float64 `yaml:"min_quality,omitempty" json:"minQuality,omitempty"`
	Rationale string   `yaml:"rationale,omitempty" json:"rationale,omitempty"`
}

// PolicySource records where a policy's routing was derived from.
type PolicySource struct {
	CalibrationVersion   string `yaml:"calibration_version" json:"calibrationVersion"`
	CalibrationResultPath string `yaml:"calibration_result_path,omitempty" json:"calibrationResultPath,omitempty"`
}

// PolicyMetadata carries optional provenance hints consumers may use.
type PolicyMetadata struct {
	Runtime             string `yaml:"runtime,omitempty" json:"runtime,omitempty"`
	HardwareFingerprint string `yaml:"hardware_fingerprint,omitempty" json:"hardwareFingerprint,omitempty"`
}

// Policy is the full schema-versioned CalibrationPolicy artifact.
type Policy struct {
	SchemaVersion string             `yaml:"schema_version" json:"schemaVersion"`
	GeneratedAt   string             `yaml:"generated_at" json:"generatedAt"`
	Objective     string             `yaml:"objective" json:"objective"`
	Source        PolicySource       `yaml:"source" json:"source"`
	Routing       map[string]Route   `yaml:"routing" json:"routing"`
	Metadata      PolicyMetadata     `yaml:"metadata" json:"metadata"`
}

type scoredModel struct {
	id      string
	overall float64
	tps     float64
}

// SynthesizePolicy derives a deterministic routing policy from a
// calibration result: successful models are filtered by minQuality per
// task, sorted by objective, and collapsed to a primary plus up to two
// fallbacks. Identical inputs always produce an identical policy.
func SynthesizePolicy(result *Result, objective string, minQuality float64, now time.Time, resultPath string) *Policy {
	if objective == "" {
		objective = result.Objective
	}
	if minQuality <= 0 {
		minQuality = defaultMinQuality
	}

	maxTPS := 0.0
	for _, m := range result.Models {
		if m.Status == StatusSuccess && m.Metrics.TokensPerSecond > maxTPS {
			maxTPS = m.Metrics.TokensPerSecond
		}
	}

	tasks := map[string]bool{}
	for _, m := range result.Models {
		for task := range m.Quality.TaskScores {
			tasks[task] = true
		}
	}

	routing := map[string]Route{}
	for task := range tasks {
		candidates := make([]scoredModel, 0, len(result.Models))
		for _, m := range result.Models {
			if m.Status != StatusSuccess {
				continue
			}
			score, ok := m.Quality.TaskScores[task]
			if !ok || score < minQuality {
				continue
			}
			candidates = append(candidates, scoredModel{
				id:      m.ModelIdentifier,
				overall: m.Quality.OverallScore,
				tps:     m.Metrics.TokensPerSecond,
			})
		}
		if len(candidates) == 0 {
			continue
		}

		sortCandidates(candidates, objective, maxTPS)

		route := Route{Primary: candidates[0].id}
		for i := 1; i < len(candidates) && i <= 2; i++ {
			route.Fallbacks = append(route.Fallbacks, candidates[i].id)
		}
		mq := minQuality
		route.MinQuality = &mq
		routing[task] = route
	}

	return &Policy{
		SchemaVersion: schemaVersion,
		GeneratedAt:   now.UTC().Format(time.RFC3339),
		Objective:     objective,
		Source: PolicySource{
			CalibrationVersion:    result.CalibrationVersion,
			CalibrationResultPath: resultPath,
		},
		Routing: routing,
		Metadata: PolicyMetadata{
			Runtime:             result.Runtime,
			HardwareFingerprint: result.Hardware.Fingerprint,
		},
	}
}

func sortCandidates(candidates []scoredModel, objective string, maxTPS float64) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		var sa, sb float64
		switch objective {
		case "speed":
			sa, sb = a.tps, b.tps
		case "quality":
			sa, sb = a.overall, b.overall
		default: // balanced
			sa = 0.5*a.overall + 0.5*speedNormalized(a.tps, maxTPS)
			sb = 0.5*b.overall + 0.5*speedNormalized(b.tps, maxTPS)
		}
		if sa != sb {
			return sa > sb
		}
		return a.id < b.id
	})
}

func speedNormalized(tps, maxTPS float64) float64 {
	if maxTPS <= 0 {
		return 0
	}
	return (tps / maxTPS) * 100
}
