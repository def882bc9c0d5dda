package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rinadelph/cursor-automator/internal/checklist"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Print the checklist's current step",
	Long: `Resolve and print the current step from the checklist file: the earliest
in-progress step, or with none in progress the earliest incomplete one.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}

		data, err := os.ReadFile(cfg.StepsFile)
		if err != nil {
			return fmt.Errorf("read checklist: %w", err)
		}

		current := checklist.Parse(string(data)).Current()
		if current == nil {
			fmt.Println("no pending steps")
			return nil
		}
		fmt.Println(joinPath(current))
		return nil
	},
}

// joinPath renders a step path the way the run session logs it.
func joinPath(path []string) string {
	return strings.Join(path, " > ")
}

func init() {
	rootCmd.AddCommand(currentCmd)
}
