package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Pavelevich/llm-checker/internal/fetch"
	"github.com/Pavelevich/llm-checker/internal/models"
)

var fetchNoCache bool

var fetchCmd = &cobra.Command{
	Use:   "fetch [repo-id]",
	Short: "Look up a model on HuggingFace and fold it into the local catalog",
	Long: "Fetches parameter count, context length, and MoE metadata for a model " +
		"absent from both the installed inventory and the static catalog, and " +
		"folds it into the enrichment cache so check/recommend can score it.",
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchNoCache, "no-cache", false, "Print the descriptor without writing the enrichment cache")
}

func runFetch(cmd *cobra.Command, args []string) error {
	d, err := fetch.FetchModel(context.Background(), args[0])
	if err != nil {
		return err
	}

	if !fetchNoCache {
		if err := models.AppendToCache(d); err != nil {
			return fmt.Errorf("fetch: cache write: %w", err)
		}
	}

	if globalJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}
	paramsB := 0.0
	if d.ParamsB != nil {
		paramsB = *d.ParamsB
	}
	ctxLen := 0
	if d.ContextLength != nil {
		ctxLen = *d.ContextLength
	}
	fmt.Printf("%s: %.1fB params, ctx %d, tags %v", d.Identifier, paramsB, ctxLen, d.Tags)
	if d.MoE != nil {
		fmt.Printf(", MoE %d experts (%d active)", d.MoE.ExpertCount, d.MoE.ExpertsActivePerToken)
	}
	fmt.Println()
	if !fetchNoCache {
		fmt.Println("Added to the local catalog cache.")
	}
	return nil
}
