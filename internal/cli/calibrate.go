package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Pavelevich/llm-checker/internal/calibration"
	"github.com/Pavelevich/llm-checker/internal/display"
	"github.com/Pavelevich/llm-checker/internal/runtime"
)

var (
	calibrateSuitePath   string
	calibrateModels      string
	calibrateMode        string
	calibrateWarmup      int
	calibrateIterations  int
	calibrateTimeout     time.Duration
	calibrateOutput      string
	calibratePolicyOut   string
	calibrateMinQuality  float64
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Measure model latency/throughput/quality against a live inference daemon",
	RunE:  runCalibrate,
}

func init() {
	calibrateCmd.Flags().StringVar(&calibrateSuitePath, "suite", "", "Path to a line-delimited JSON prompt suite (required)")
	calibrateCmd.Flags().StringVar(&calibrateModels, "models", "", "Comma-separated model identifiers (required)")
	calibrateCmd.Flags().StringVar(&calibrateMode, "mode", "dry-run", "Execution mode: dry-run, contract-only, or full")
	calibrateCmd.Flags().IntVar(&calibrateWarmup, "warmup-runs", 1, "Warmup generations per prompt, discarded from measurement")
	calibrateCmd.Flags().IntVar(&calibrateIterations, "measured-iterations", 1, "Measured generations per prompt")
	calibrateCmd.Flags().DurationVar(&calibrateTimeout, "timeout", 30*time.Second, "Per-generation timeout")
	calibrateCmd.Flags().StringVar(&calibrateOutput, "output", "", "Write the CalibrationResult JSON artifact to this path")
	calibrateCmd.Flags().StringVar(&calibratePolicyOut, "policy-out", "", "Synthesize and write a CalibrationPolicy YAML artifact to this path")
	calibrateCmd.Flags().Float64Var(&calibrateMinQuality, "min-quality", 0, "Minimum per-task quality for policy synthesis (0 = schema default)")
	_ = calibrateCmd.MarkFlagRequired("suite")
	_ = calibrateCmd.MarkFlagRequired("models")
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	f, err := os.Open(calibrateSuitePath)
	if err != nil {
		return fmt.Errorf("calibrate: open suite: %w", err)
	}
	defer f.Close()

	suite, err := calibration.ParsePromptSuite(f)
	if err != nil {
		return fmt.Errorf("calibrate: %w", err)
	}

	modelIDs := splitNonEmpty(calibrateModels, ",")
	if len(modelIDs) == 0 {
		return fmt.Errorf("calibrate: --models must name at least one model")
	}

	profile, err := detectProfile()
	if err != nil {
		return err
	}

	opts := calibration.RunOptions{
		Suite:               suite,
		SuitePath:           calibrateSuitePath,
		Models:              modelIDs,
		Runtime:             globalRuntime,
		Objective:           globalOptimizeFor,
		Mode:                calibration.ExecutionMode(calibrateMode),
		WarmupRuns:          calibrateWarmup,
		MeasuredIterations:  calibrateIterations,
		Timeout:             calibrateTimeout,
		HardwareFingerprint: profile.Fingerprint(),
		HardwareDescription: string(profile.Tier()),
	}

	client := runtime.NewClient(globalOllamaURL)
	ctx, cancel := context.WithTimeout(context.Background(), calibrateTimeout*time.Duration(len(modelIDs)*len(suite)*(calibrateWarmup+calibrateIterations)+1))
	defer cancel()

	result, err := calibration.Run(ctx, opts, client, time.Now())
	if err != nil {
		return fmt.Errorf("calibrate: %w", err)
	}

	if calibrateOutput != "" {
		body, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("calibrate: encode result: %w", err)
		}
		if err := os.WriteFile(calibrateOutput, body, 0o644); err != nil {
			return fmt.Errorf("calibrate: write result: %w", err)
		}
	}

	display.Calibration(os.Stdout, result, globalJSON)

	if calibratePolicyOut != "" {
		policy := calibration.SynthesizePolicy(result, globalOptimizeFor, calibrateMinQuality, time.Now(), calibrateOutput)
		if err := writePolicyYAML(calibratePolicyOut, policy); err != nil {
			return fmt.Errorf("calibrate: write policy: %w", err)
		}
	}
	return nil
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
