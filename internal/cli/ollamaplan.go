package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Pavelevich/llm-checker/internal/runtime"
	"github.com/Pavelevich/llm-checker/internal/selector"
)

var ollamaPlanCmd = &cobra.Command{
	Use:   "ollama-plan",
	Short: "Print ready-to-run `ollama run` commands for the best model per category",
	RunE:  runOllamaPlan,
}

func runOllamaPlan(cmd *cobra.Command, args []string) error {
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

	if globalJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{"commands": summary.QuickCommands})
	}
	for _, c := range summary.QuickCommands {
		fmt.Println(c)
	}
	return nil
}
