package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rinadelph/cursor-automator/internal/checklist"
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate the checklist file",
	Long: `Parse the checklist file and report its structure: sections, step counts
per status, and anything that would confuse the step resolver (no status
glyphs, steps before the first heading, several in-progress steps).

Exits non-zero when the file has issues.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		path := cfg.StepsFile
		if len(args) == 1 {
			path = args[0]
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read checklist: %w", err)
		}

		diag := checklist.Diagnose(string(data))
		fmt.Printf("%s: %d steps (%d complete, %d in progress, %d incomplete)\n",
			path, diag.TotalSteps, diag.Completed, diag.InProgress, diag.Incomplete)
		if !diag.HasSections {
			fmt.Println("note: no \"## \" section headings found")
		}

		for _, w := range diag.Warnings {
			fmt.Println("warning:", w)
		}
		for _, issue := range diag.Issues {
			fmt.Println("issue:", issue)
		}
		if !diag.OK() {
			return fmt.Errorf("checklist has %d issue(s)", len(diag.Issues))
		}

		if current := checklist.Parse(string(data)).Current(); current != nil {
			fmt.Println("current step:", joinPath(current))
		} else {
			fmt.Println("current step: none (all steps complete)")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
