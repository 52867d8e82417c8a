package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Pavelevich/llm-checker/internal/display"
	"github.com/Pavelevich/llm-checker/internal/probe"
	"github.com/Pavelevich/llm-checker/internal/runtime"
	"github.com/Pavelevich/llm-checker/internal/selector"
)

var (
	recommendCategory string
	recommendProbe    bool
	recommendTargetCtx int
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank candidate models for one category",
	RunE:  runRecommend,
}

func init() {
	recommendCmd.Flags().StringVar(&recommendCategory, "category", "general", "Category: coding, reasoning, multimodal, creative, talking, reading, general, summarization, embeddings")
	recommendCmd.Flags().BoolVar(&recommendProbe, "probe", false, "Validate estimated speed with a short live generation per candidate")
	recommendCmd.Flags().IntVar(&recommendTargetCtx, "target-ctx", 0, "Target context length (0 = category default)")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	if !validCategory(recommendCategory) {
		return fmt.Errorf("recommend: unknown category %q (want one of %v)", recommendCategory, selector.SelectableCategories)
	}
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

	opts := selector.Options{
		OptimizeFor: globalOptimizeFor,
		Runtime:     globalRuntime,
		TargetCtx:   recommendTargetCtx,
		EnableProbe: recommendProbe,
	}
	if globalLimit > 0 {
		opts.TopN = int(globalLimit)
	}

	result := selector.SelectModels(recommendCategory, pool, profile, opts, now)

	if recommendProbe && len(result.Candidates) > 0 {
		cachePath, err := probe.DefaultCachePath()
		if err != nil {
			return err
		}
		cache, err := probe.Load(cachePath)
		if err != nil {
			return err
		}
		probe.ApplyProbes(result.Candidates, profile, recommendCategory, opts.OptimizeFor, client, cache, now)
	}

	display.Candidates(os.Stdout, result, globalJSON)
	return nil
}
