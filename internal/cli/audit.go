package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Pavelevich/llm-checker/internal/hardware"
	"github.com/Pavelevich/llm-checker/internal/models"
	"github.com/Pavelevich/llm-checker/internal/runtime"
	"github.com/Pavelevich/llm-checker/internal/scoring"
	"github.com/Pavelevich/llm-checker/internal/selector"
)

var (
	auditCategory string
	auditOutput   string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Offline debugging views of a fit decision",
}

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump the hardware profile and the full evaluated candidate set, including exclusions",
	RunE:  runAuditExport,
}

func init() {
	auditExportCmd.Flags().StringVar(&auditCategory, "category", "", "Restrict to one category (default: all)")
	auditExportCmd.Flags().StringVar(&auditOutput, "output", "", "Write JSON to this path instead of stdout")
	auditCmd.AddCommand(auditExportCmd)
}

type auditExclusion struct {
	ModelIdentifier string `json:"modelIdentifier"`
	Reason          string `json:"reason"`
}

type auditCategoryReport struct {
	Category  string            `json:"category"`
	Included  []*selector.Candidate `json:"included"`
	Excluded  []auditExclusion  `json:"excluded"`
}

func runAuditExport(cmd *cobra.Command, args []string) error {
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

	categories := selector.Categories
	if auditCategory != "" {
		categories = []string{auditCategory}
	}

	opts := selector.Options{OptimizeFor: globalOptimizeFor, Runtime: globalRuntime}
	reports := make([]auditCategoryReport, 0, len(categories))
	for _, category := range categories {
		targetCtx := scoring.ContextTargetFor(category)
		report := auditCategoryReport{Category: category}
		for _, v := range pool {
			if !selector.CategoryMatches(v, category) {
				continue
			}
			if c, ok := selector.EvaluateCandidate(v, profile, category, opts.OptimizeFor, opts.Runtime, targetCtx); ok {
				report.Included = append(report.Included, c)
			} else {
				report.Excluded = append(report.Excluded, auditExclusion{
					ModelIdentifier: v.ModelIdentifier,
					Reason:          classifyExclusion(v, profile, category, targetCtx),
				})
			}
		}
		reports = append(reports, report)
	}

	out := map[string]interface{}{
		"hardware":   profile,
		"categories": reports,
	}

	body, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if auditOutput != "" {
		return os.WriteFile(auditOutput, body, 0o644)
	}
	_, err = os.Stdout.Write(append(body, '\n'))
	return err
}

// classifyExclusion re-derives why EvaluateCandidate rejected v, for
// human-readable audit output (EvaluateCandidate itself only returns
// ok). It re-runs the same SelectQuant/FitComponent/ContextComponent
// checks EvaluateCandidate does, in the same order, to report which one
// failed.
func classifyExclusion(v *models.ModelVariant, profile *hardware.Profile, category string, targetCtx int) string {
	budget := profile.Budget()
	quant, requiredGB, usedCtx, ok := selector.SelectQuant(v, budget, targetCtx)
	if !ok {
		return fmt.Sprintf("no quantization fits within %.1f GB budget, even at halved context", budget)
	}
	if _, ok := scoring.FitComponent(requiredGB, budget); !ok {
		return fmt.Sprintf("%s requires %.1f GB, exceeds %.1f GB budget", quant, requiredGB, budget)
	}
	if _, ok := scoring.ContextComponent(v.CtxMax, category); !ok {
		return fmt.Sprintf("context %d below half of %d-token target for %s", v.CtxMax, scoring.ContextTargetFor(category), category)
	}
	if usedCtx < targetCtx {
		return fmt.Sprintf("fits only at halved context (%d), but passed scoring", usedCtx)
	}
	return "excluded for an undetermined reason"
}
