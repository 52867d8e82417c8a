package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/Pavelevich/llm-checker/internal/calibration"
	"github.com/Pavelevich/llm-checker/internal/hardware"
	"github.com/Pavelevich/llm-checker/internal/hwdetect"
	"github.com/Pavelevich/llm-checker/internal/models"
	"github.com/Pavelevich/llm-checker/internal/probe"
	"github.com/Pavelevich/llm-checker/internal/selector"
)

// calibrateTimeout is a floor; handleCalibrate widens it per request
// based on model/prompt/iteration counts the same way the CLI does.
const calibrateTimeout = 30 * time.Second

func (s *Server) detectProfile() (*hardware.Profile, error) {
	reading, err := hwdetect.Detect()
	if err != nil {
		return nil, err
	}
	return hardware.Normalize(reading.Raw()), nil
}

func (s *Server) buildPool(now time.Time) ([]*models.ModelVariant, error) {
	seed, err := models.LoadSeedCatalog()
	if err != nil {
		return nil, err
	}
	cached, err := models.LoadCachedCatalog()
	if err != nil {
		logrus.Warnf("mcpserver: catalog cache unreadable, continuing without it: %v", err)
	}
	catalog := append(seed, cached...)

	var installed []models.InstalledModelDescriptor
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	daemonModels, err := s.client.ListInstalled(ctx)
	if err != nil {
		logrus.Warnf("mcpserver: local inventory unavailable, continuing with catalog only: %v", err)
	} else {
		installed = make([]models.InstalledModelDescriptor, 0, len(daemonModels))
		for _, im := range daemonModels {
			d := models.InstalledModelDescriptor{Identifier: im.Identifier, Quant: im.Quant, Digest: im.Digest}
			if im.SizeGB > 0 {
				sizeGB := im.SizeGB
				d.SizeGB = &sizeGB
			}
			if b, ok := models.ParseParamsB(im.ParameterSize); ok {
				d.ParamsB = &b
			} else if b, ok := models.ParseParamsB(im.Identifier); ok {
				d.ParamsB = &b
			}
			installed = append(installed, d)
		}
	}
	return models.LoadPool(installed, catalog, now), nil
}

func (s *Server) handleSelectModels(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)
	category := stringArg(args, "category", "")
	if !validCategory(category) {
		return errResult(fmt.Sprintf("select_models: unknown category %q (want one of %v)", category, selector.SelectableCategories)), nil
	}

	profile, err := s.detectProfile()
	if err != nil {
		return errResult(fmt.Sprintf("hardware detection failed: %v", err)), nil
	}
	now := s.now()
	pool, err := s.buildPool(now)
	if err != nil {
		return errResult(fmt.Sprintf("model pool load failed: %v", err)), nil
	}

	opts := selector.Options{
		OptimizeFor: stringArg(args, "optimize_for", "balanced"),
		Runtime:     stringArg(args, "runtime", "ollama"),
		TopN:        int(numberArg(args, "top_n", 0)),
		EnableProbe: boolArg(args, "probe", false),
	}

	result := selector.SelectModels(category, pool, profile, opts, now)

	if opts.EnableProbe && len(result.Candidates) > 0 {
		cachePath, err := probe.DefaultCachePath()
		if err != nil {
			return errResult(fmt.Sprintf("probe cache path: %v", err)), nil
		}
		cache, err := probe.Load(cachePath)
		if err != nil {
			return errResult(fmt.Sprintf("probe cache load: %v", err)), nil
		}
		probe.ApplyProbes(result.Candidates, profile, category, opts.OptimizeFor, s.client, cache, now)
	}

	return jsonResult(result)
}

func (s *Server) handleRecommendPerCategory(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)
	profile, err := s.detectProfile()
	if err != nil {
		return errResult(fmt.Sprintf("hardware detection failed: %v", err)), nil
	}
	now := s.now()
	pool, err := s.buildPool(now)
	if err != nil {
		return errResult(fmt.Sprintf("model pool load failed: %v", err)), nil
	}

	opts := selector.Options{
		OptimizeFor: stringArg(args, "optimize_for", "balanced"),
		Runtime:     stringArg(args, "runtime", "ollama"),
	}
	recommendations := selector.RecommendPerCategory(pool, profile, opts, now)
	summary := selector.Summarize(recommendations, profile)

	return jsonResult(map[string]interface{}{
		"hardware":        profile,
		"recommendations": recommendations,
		"summary":         summary,
	})
}

func (s *Server) handleCalibrate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)

	suitePath := stringArg(args, "suite_path", "")
	if suitePath == "" {
		return errResult("calibrate: suite_path is required"), nil
	}
	f, err := os.Open(suitePath)
	if err != nil {
		return errResult(fmt.Sprintf("calibrate: open suite: %v", err)), nil
	}
	defer f.Close()

	suite, err := calibration.ParsePromptSuite(f)
	if err != nil {
		return errResult(fmt.Sprintf("calibrate: %v", err)), nil
	}

	modelsArg := stringArg(args, "models", "")
	modelIDs := splitNonEmpty(modelsArg, ",")
	if len(modelIDs) == 0 {
		return errResult("calibrate: models must name at least one model identifier"), nil
	}

	profile, err := s.detectProfile()
	if err != nil {
		return errResult(fmt.Sprintf("hardware detection failed: %v", err)), nil
	}

	mode := stringArg(args, "mode", "dry-run")
	runOpts := calibration.RunOptions{
		Suite:               suite,
		SuitePath:           suitePath,
		Models:              modelIDs,
		Runtime:             stringArg(args, "runtime", "ollama"),
		Objective:           stringArg(args, "objective", "balanced"),
		Mode:                calibration.ExecutionMode(mode),
		Timeout:             calibrateTimeout,
		HardwareFingerprint: profile.Fingerprint(),
		HardwareDescription: string(profile.Tier()),
	}

	budget := calibrateTimeout*time.Duration(len(modelIDs)*len(suite)*2+1) + calibrateTimeout
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	result, err := calibration.Run(ctx, runOpts, s.client, s.now())
	if err != nil {
		return errResult(fmt.Sprintf("calibrate: %v", err)), nil
	}
	return jsonResult(result)
}

func (s *Server) handleDetectHardware(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profile, err := s.detectProfile()
	if err != nil {
		return errResult(fmt.Sprintf("hardware detection failed: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{
		"profile":     profile,
		"tier":        profile.Tier(),
		"fingerprint": profile.Fingerprint(),
	})
}

func validCategory(category string) bool {
	return selector.IsSelectableCategory(category)
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

// getArgs safely extracts the arguments map from a CallToolRequest.
// Returns an empty map if Arguments is nil or not a map.
func getArgs(request mcp.CallToolRequest) map[string]interface{} {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return args
}

func stringArg(args map[string]interface{}, key, defaultVal string) string {
	val, ok := args[key]
	if !ok || val == nil {
		return defaultVal
	}
	s, ok := val.(string)
	if !ok || s == "" {
		return defaultVal
	}
	return s
}

func numberArg(args map[string]interface{}, key string, defaultVal float64) float64 {
	val, ok := args[key]
	if !ok || val == nil {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func boolArg(args map[string]interface{}, key string, defaultVal bool) bool {
	val, ok := args[key]
	if !ok || val == nil {
		return defaultVal
	}
	if b, ok := val.(bool); ok {
		return b
	}
	return defaultVal
}

// newTextResult creates a successful MCP tool result with text content.
func newTextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult marshals v and wraps it as a successful tool result.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errResult(fmt.Sprintf("json marshal failed: %v", err)), nil
	}
	return newTextResult(string(body)), nil
}

// errResult creates an MCP tool error result (IsError=true).
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
	}
}
