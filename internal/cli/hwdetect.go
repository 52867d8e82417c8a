package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Pavelevich/llm-checker/internal/display"
)

var hwDetectCmd = &cobra.Command{
	Use:   "hw-detect",
	Short: "Print the normalized hardware profile, bypassing model scoring",
	RunE:  runHwDetect,
}

func runHwDetect(cmd *cobra.Command, args []string) error {
	profile, err := detectProfile()
	if err != nil {
		return err
	}
	display.Hardware(os.Stdout, profile, globalJSON)
	return nil
}
