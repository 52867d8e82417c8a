// Package display handles CLI table and JSON rendering for hardware
// profiles, candidate lists, per-category recommendations, and
// calibration results.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"text/template"

	"github.com/olekukonko/tablewriter"

	"github.com/Pavelevich/llm-checker/internal/calibration"
	"github.com/Pavelevich/llm-checker/internal/hardware"
	"github.com/Pavelevich/llm-checker/internal/selector"
)

var hardwareTpl = template.Must(template.New("hardware").Parse(
	`
=== Hardware Profile ===
CPU: {{.CPUBrand}} ({{.Cores}} cores, {{.Arch}})
Memory: {{.MemTotal}} total, {{.MemUsable}} usable
GPU: {{.GPUDesc}}
Tier: {{.Tier}}
Fingerprint: {{.Fingerprint}}

`))

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Hardware prints a normalized hardware profile to out.
func Hardware(out io.Writer, p *hardware.Profile, useJSON bool) {
	if useJSON {
		writeJSON(out, map[string]interface{}{
			"cpu": map[string]interface{}{
				"brand":         p.CPU.Brand,
				"architecture":  p.CPU.Architecture,
				"physicalCores": p.CPU.PhysicalCores,
				"threads":       p.CPU.Threads,
			},
			"memoryTotalGB":  round2(p.MemoryTotalGB),
			"usableMemGB":    round2(p.UsableMemGB),
			"gpu": map[string]interface{}{
				"type":        p.GPU.Type,
				"model":       p.GPU.Model,
				"totalVRAMGB": round2(p.GPU.TotalVRAMGB),
				"unified":     p.GPU.Unified,
				"count":       p.GPU.GPUCount,
			},
			"tier":        p.Tier(),
			"fingerprint": p.Fingerprint(),
			"budgetGB":    round2(p.Budget()),
		})
		return
	}

	gpuDesc := "none detected"
	if p.GPU.Type != hardware.GPUCPUOnly {
		gpuDesc = fmt.Sprintf("%s %s (%.1f GB%s)", p.GPU.Vendor, p.GPU.Model, p.GPU.TotalVRAMGB, unifiedSuffix(p.GPU.Unified))
	}

	data := struct {
		CPUBrand, Arch, MemTotal, MemUsable, GPUDesc, Tier, Fingerprint string
		Cores                                                          int
	}{
		CPUBrand:    p.CPU.Brand,
		Arch:        string(p.CPU.Architecture),
		Cores:       p.CPU.PhysicalCores,
		MemTotal:    fmt.Sprintf("%.1f GB", p.MemoryTotalGB),
		MemUsable:   fmt.Sprintf("%.1f GB", p.UsableMemGB),
		GPUDesc:     gpuDesc,
		Tier:        string(p.Tier()),
		Fingerprint: p.Fingerprint(),
	}
	_ = hardwareTpl.Execute(out, data)
}

func unifiedSuffix(unified bool) string {
	if unified {
		return ", unified"
	}
	return ""
}

// Candidates prints a selectModels result to out as a ranked table or
// JSON document.
func Candidates(out io.Writer, res selector.Result, useJSON bool) {
	if useJSON {
		writeJSON(out, candidatesJSON(res))
		return
	}

	fmt.Fprintf(out, "\n=== %s (%s) ===\n", res.Category, res.OptimizeFor)
	fmt.Fprintf(out, "Evaluated %d candidate(s)\n\n", res.TotalEvaluated)
	if len(res.Candidates) == 0 {
		fmt.Fprintln(out, "No compatible models found for your system.")
		return
	}

	tbl := tablewriter.NewWriter(out)
	tbl.Header("Model", "Quant", "Params(B)", "Score", "Q", "S", "F", "C", "tok/s", "Mem(GB)", "Rationale")
	for _, c := range res.Candidates {
		tbl.Append([]string{
			c.Variant.ModelIdentifier,
			c.Quant,
			fmt.Sprintf("%.1f", c.Variant.ParamsB),
			fmt.Sprintf("%.1f", c.EffectiveScore()),
			fmt.Sprintf("%.0f", c.Components.Quality),
			fmt.Sprintf("%.0f", c.Components.Speed),
			fmt.Sprintf("%.0f", c.Components.Fit),
			fmt.Sprintf("%.0f", c.Components.Context),
			tpsLabel(c),
			fmt.Sprintf("%.1f", c.RequiredGB),
			joinRationale(c.Rationale),
		})
	}
	_ = tbl.Render()
}

func tpsLabel(c *selector.Candidate) string {
	if c.MeasuredTPS != nil {
		return fmt.Sprintf("%.1f*", *c.MeasuredTPS)
	}
	return fmt.Sprintf("%.1f", c.EstTPS)
}

func joinRationale(notes []string) string {
	out := ""
	for i, n := range notes {
		if i > 0 {
			out += "; "
		}
		out += n
	}
	return out
}

func candidatesJSON(res selector.Result) map[string]interface{} {
	candidates := make([]map[string]interface{}, 0, len(res.Candidates))
	for _, c := range res.Candidates {
		candidates = append(candidates, map[string]interface{}{
			"modelIdentifier": c.Variant.ModelIdentifier,
			"quant":           c.Quant,
			"paramsB":         c.Variant.ParamsB,
			"requiredGB":      round2(c.RequiredGB),
			"estTPS":          round2(c.EstTPS),
			"measuredTPS":     c.MeasuredTPS,
			"components": map[string]float64{
				"quality": c.Components.Quality,
				"speed":   c.Components.Speed,
				"fit":     c.Components.Fit,
				"context": c.Components.Context,
			},
			"score":      c.Score,
			"finalScore": c.FinalScore,
			"rationale":  c.Rationale,
		})
	}
	return map[string]interface{}{
		"category":       res.Category,
		"optimizeFor":    res.OptimizeFor,
		"totalEvaluated": res.TotalEvaluated,
		"timestamp":      res.Timestamp,
		"candidates":     candidates,
	}
}

// Summary prints a recommendPerCategory+summarize result to out.
func Summary(out io.Writer, s selector.Summary, useJSON bool) {
	if useJSON {
		byCategory := make(map[string]interface{}, len(s.ByCategory))
		for cat, rec := range s.ByCategory {
			best := ""
			if len(rec.BestModels) > 0 {
				best = rec.BestModels[0].Variant.ModelIdentifier
			}
			byCategory[cat] = map[string]interface{}{
				"tier":           rec.Tier,
				"bestModel":      best,
				"totalEvaluated": rec.TotalEvaluated,
			}
		}
		bestOverall := ""
		if s.BestOverall != nil {
			bestOverall = s.BestOverall.Variant.ModelIdentifier
		}
		writeJSON(out, map[string]interface{}{
			"hardwareTier":  s.HardwareTier,
			"bestOverall":   bestOverall,
			"byCategory":    byCategory,
			"quickCommands": s.QuickCommands,
		})
		return
	}

	fmt.Fprintf(out, "\n=== Recommendations (%s tier) ===\n\n", s.HardwareTier)
	tbl := tablewriter.NewWriter(out)
	tbl.Header("Category", "Best Model", "Evaluated")
	for _, cat := range selector.Categories {
		rec, ok := s.ByCategory[cat]
		if !ok {
			continue
		}
		best := "-"
		if len(rec.BestModels) > 0 {
			best = rec.BestModels[0].Variant.ModelIdentifier
		}
		tbl.Append([]string{cat, best, fmt.Sprintf("%d", rec.TotalEvaluated)})
	}
	_ = tbl.Render()

	if len(s.QuickCommands) > 0 {
		fmt.Fprintln(out, "\nQuick commands:")
		for _, cmd := range s.QuickCommands {
			fmt.Fprintf(out, "  %s\n", cmd)
		}
	}
}

// Calibration prints a calibration result to out.
func Calibration(out io.Writer, res *calibration.Result, useJSON bool) {
	if useJSON {
		writeJSON(out, res)
		return
	}

	fmt.Fprintf(out, "\n=== Calibration (%s, %s) ===\n", res.ExecutionMode, res.Runtime)
	fmt.Fprintf(out, "Suite: %s (%d prompts)\n\n", res.Suite.Path, res.Suite.TotalPrompts)
	tbl := tablewriter.NewWriter(out)
	tbl.Header("Model", "Status", "p50(ms)", "p95(ms)", "tok/s", "Quality", "Pass Rate")
	for _, m := range res.Models {
		tbl.Append([]string{
			m.ModelIdentifier,
			string(m.Status),
			fmt.Sprintf("%.0f", m.Metrics.LatencyMsP50),
			fmt.Sprintf("%.0f", m.Metrics.LatencyMsP95),
			fmt.Sprintf("%.1f", m.Metrics.TokensPerSecond),
			fmt.Sprintf("%.0f", m.Quality.OverallScore),
			fmt.Sprintf("%.2f", m.Quality.CheckPassRate),
		})
	}
	_ = tbl.Render()
	fmt.Fprintf(out, "\nTotal: %d  Successful: %d  Failed: %d  Skipped: %d  Pending: %d\n",
		res.Summary.Total, res.Summary.Successful, res.Summary.Failed, res.Summary.Skipped, res.Summary.Pending)
}

func writeJSON(out io.Writer, v interface{}) {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
