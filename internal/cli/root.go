package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set by main from ldflags or "dev".
var Version string

var (
	globalJSON       bool
	globalLimit      uint
	globalRuntime    string
	globalOptimizeFor string
	globalOllamaURL  string
	globalVerbose    bool
	showVersion      bool
)

var rootCmd = &cobra.Command{
	Use:   "llm-checker",
	Short: "Right-size and calibrate local LLMs for your hardware",
	Long: "llm-checker inspects your hardware (RAM/CPU/GPU), scores candidate " +
		"local models on quality/speed/fit/context, and calibrates a routing " +
		"policy against a live inference daemon.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			if Version == "" {
				Version = "dev"
			}
			fmt.Println(Version)
			os.Exit(0)
		}
		if globalVerbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&globalJSON, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().UintVarP(&globalLimit, "limit", "n", 0, "Limit number of results (0 = command default)")
	rootCmd.PersistentFlags().StringVar(&globalRuntime, "runtime", "ollama", "Target inference runtime")
	rootCmd.PersistentFlags().StringVar(&globalOptimizeFor, "optimize-for", "balanced", "Scoring objective: quality, speed, or balanced")
	rootCmd.PersistentFlags().StringVar(&globalOllamaURL, "ollama-url", "http://localhost:11434", "Base URL of the local inference daemon")
	rootCmd.PersistentFlags().BoolVarP(&globalVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&showVersion, "version", false, "Print version and exit")

	rootCmd.AddCommand(checkCmd, recommendCmd, ollamaPlanCmd, hwDetectCmd, fetchCmd, calibrateCmd, policyCmd, auditCmd, mcpCmd)
}

// Execute runs the root command. Returns error for exit code handling.
func Execute() error {
	return rootCmd.Execute()
}
