package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Pavelevich/llm-checker/internal/display"
	"github.com/Pavelevich/llm-checker/internal/runtime"
	"github.com/Pavelevich/llm-checker/internal/selector"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Recommend a top model for every category on this hardware",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	profile, err := detectProfile()
	if err != nil {
		return err
	}
	client := runtime.NewClient(globalOllamaURL)
	now := time.Now()
	pool, err := buildPool(client, now)
	if err != nil {
		return err
	}

	opts := selector.Options{OptimizeFor: globalOptimizeFor, Runtime: globalRuntime}
	recommendations := selector.RecommendPerCategory(pool, profile, opts, now)
	summary := selector.Summarize(recommendations, profile)

	display.Summary(os.Stdout, summary, globalJSON)
	return nil
}
