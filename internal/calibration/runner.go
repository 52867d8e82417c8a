package calibration

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Pavelevich/llm-checker/internal/runtime"
)

// ExecutionMode is one of the three calibration run modes.
type ExecutionMode string

const (
	ModeDryRun       ExecutionMode = "dry-run"
	ModeContractOnly ExecutionMode = "contract-only"
	ModeFull         ExecutionMode = "full"
)

// fullModeRuntimes lists the runtimes whose client satisfies the probe
// executor's Generate interface; full calibration is restricted to them.
var fullModeRuntimes = map[string]bool{"ollama": true}

// Executor is the minimal interface the calibration runner dials out to;
// runtime.Client satisfies it directly.
type Executor interface {
	Generate(ctx context.Context, model, prompt string, opts runtime.GenerateOptions) (runtime.GenerateResult, error)
}

// RunOptions configures one calibration invocation.
type RunOptions struct {
	Suite              []PromptCase
	SuitePath          string
	Models             []string
	Runtime            string
	Objective          string
	Mode               ExecutionMode
	WarmupRuns         int
	MeasuredIterations int
	Timeout            time.Duration
	HardwareFingerprint string
	HardwareDescription string
	CalibrationVersion  string
}

func (o RunOptions) withDefaults() RunOptions {
	if o.WarmupRuns <= 0 {
		o.WarmupRuns = 1
	}
	if o.MeasuredIterations <= 0 {
		o.MeasuredIterations = 1
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Objective == "" {
		o.Objective = "balanced"
	}
	if o.Runtime == "" {
		o.Runtime = "ollama"
	}
	if o.CalibrationVersion == "" {
		o.CalibrationVersion = schemaVersion
	}
	return o
}

// ValidationError is a fatal, actionable InputValidation failure.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Run executes a calibration invocation end to end. dry-run and
// contract-only never dial the executor; full mode runs every model
// sequentially so a single model's failure never aborts the batch.
func Run(ctx context.Context, opts RunOptions, exec Executor, now time.Time) (*Result, error) {
	opts = opts.withDefaults()

	switch opts.Mode {
	case ModeDryRun, ModeContractOnly, ModeFull:
	default:
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid calibration mode %q", opts.Mode)}
	}

	result := &Result{
		GeneratedAt:        now.UTC().Format(time.RFC3339),
		CalibrationVersion: opts.CalibrationVersion,
		ExecutionMode:      string(opts.Mode),
		Runtime:            opts.Runtime,
		Objective:          opts.Objective,
		Hardware:           HardwareInfo{Fingerprint: opts.HardwareFingerprint, Description: opts.HardwareDescription},
		Suite: SuiteInfo{
			Path:          opts.SuitePath,
			TotalPrompts:  len(opts.Suite),
			TaskBreakdown: TaskBreakdown(opts.Suite),
		},
	}

	if opts.Mode != ModeFull {
		models := make([]ModelResult, 0, len(opts.Models))
		for _, id := range opts.Models {
			models = append(models, ModelResult{ModelIdentifier: id, Status: StatusPending})
		}
		result.Models = models
		result.Summary = buildSummary(models)
		return result, nil
	}

	if !fullModeRuntimes[strings.ToLower(opts.Runtime)] {
		return nil, &ValidationError{Msg: fmt.Sprintf("Full calibration mode currently supports %s", joinSupported())}
	}

	models := make([]ModelResult, 0, len(opts.Models))
	for _, id := range opts.Models {
		// Caller cancellation stops further iterations but still emits a
		// best-effort partial result with the remaining models skipped.
		if ctx.Err() != nil {
			models = append(models, ModelResult{ModelIdentifier: id, Status: StatusSkipped, Error: "canceled before execution"})
			continue
		}
		mr := runModel(ctx, id, opts, exec)
		models = append(models, mr)
	}
	result.Models = models
	result.Summary = buildSummary(models)
	return result, nil
}

func joinSupported() string {
	names := make([]string, 0, len(fullModeRuntimes))
	for k := range fullModeRuntimes {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func runModel(ctx context.Context, modelID string, opts RunOptions, exec Executor) ModelResult {
	mr := ModelResult{
		ModelIdentifier: modelID,
		Traces: Traces{
			WarmupRuns:         opts.WarmupRuns,
			MeasuredIterations: opts.MeasuredIterations,
		},
	}

	var latencies []float64
	var ttfts []float64
	var totalTokens float64
	var totalLatencySec float64
	taskPassSums := map[string][]float64{}

	for _, pc := range opts.Suite {
		for w := 0; w < opts.WarmupRuns; w++ {
			reqCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
			_, err := exec.Generate(reqCtx, modelID, pc.Prompt, runtime.GenerateOptions{})
			cancel()
			if err != nil {
				logrus.Debugf("calibration: warmup failed for %s: %v", modelID, err)
			}
		}

		for it := 0; it < opts.MeasuredIterations; it++ {
			reqCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
			res, err := exec.Generate(reqCtx, modelID, pc.Prompt, runtime.GenerateOptions{})
			cancel()
			if err != nil {
				mr.Status = StatusFailed
				mr.Error = err.Error()
				mr.Traces.ErrorCode = errorCode(err)
				return mr
			}

			latencies = append(latencies, res.LatencyMs)
			ttfts = append(ttfts, res.TTFTMs)
			totalLatencySec += res.LatencyMs / 1000

			if res.HasEvalCounters {
				totalTokens += float64(res.EvalCount)
			} else {
				totalTokens += float64(len(strings.Fields(res.Output))) * 1.3
			}

			passed := make([]bool, len(pc.Checks))
			for i, c := range pc.Checks {
				ok, _ := EvaluateCheck(c, res.Output)
				passed[i] = ok
			}
			rate := PassRate(pc.Checks, passed)
			taskPassSums[pc.Task] = append(taskPassSums[pc.Task], rate)

			mr.Traces.PromptRuns = append(mr.Traces.PromptRuns, PromptRun{
				PromptID:  pc.ID,
				Iteration: it + 1,
				LatencyMs: res.LatencyMs,
				TTFTMs:    res.TTFTMs,
				PassRate:  rate,
			})
		}
	}

	mr.Status = StatusSuccess
	mr.Metrics = Metrics{
		TTFTMs:          median(ttfts),
		LatencyMsP50:    nearestRankPercentile(latencies, 50),
		LatencyMsP95:    nearestRankPercentile(latencies, 95),
		TokensPerSecond: safeDiv(totalTokens, totalLatencySec),
	}
	mr.Quality = Quality{
		TaskScores:    averageByTask(taskPassSums),
		OverallScore:  overallScore(taskPassSums),
		CheckPassRate: meanOfMeans(taskPassSums),
	}
	return mr
}

func errorCode(err error) string {
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "deadline exceeded") || strings.Contains(strings.ToLower(err.Error()), "timeout") {
		return "ETIMEDOUT"
	}
	return ""
}

func safeDiv(a, b float64) float64 {
	if b <= 0 {
		return 0
	}
	return a / b
}

// nearestRankPercentile is the nearest-rank method:
// rank = ceil(p/100 * n), clamped to [1, n].
func nearestRankPercentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	rank := int(math.Ceil(p / 100 * float64(n)))
	if rank < 1 {
		rank = 1
	}
	if rank > n {
		rank = n
	}
	return sorted[rank-1]
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// averageByTask returns each task's mean pass rate scaled to [0,100],
// matching the Quality.TaskScores schema (overallScore's own scale).
func averageByTask(taskPassSums map[string][]float64) map[string]float64 {
	out := make(map[string]float64, len(taskPassSums))
	for task, rates := range taskPassSums {
		out[task] = mean(rates) * 100
	}
	return out
}

// meanOfMeans is the overall check pass rate in [0,1], independent of
// the per-task [0,100] scale used for taskScores/overallScore.
func meanOfMeans(taskPassSums map[string][]float64) float64 {
	var all []float64
	for _, rates := range taskPassSums {
		all = append(all, rates...)
	}
	return mean(all)
}

// overallScore is the mean across tasks (not across prompts), in [0,100].
func overallScore(taskPassSums map[string][]float64) float64 {
	byTask := averageByTask(taskPassSums)
	if len(byTask) == 0 {
		return 0
	}
	var sum float64
	for _, v := range byTask {
		sum += v
	}
	return sum / float64(len(byTask))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
