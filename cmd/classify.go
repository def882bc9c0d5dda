package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rinadelph/cursor-automator/internal/classifier"
)

var flagClassifyLLM bool

var classifyCmd = &cobra.Command{
	Use:   "classify <text>...",
	Short: "Classify a piece of button text",
	Long: `Run the phrase classifier on the given text and print the category the
run session would act on. With --llm, also ask the configured LLM for an
advisory label, the way the session does for unknown text.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		category := classifier.Classify(text)
		fmt.Println(category)

		if !flagClassifyLLM {
			return nil
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		eval, err := getEvaluator(cfg)
		if err != nil {
			return err
		}
		label, err := eval.Label(cmd.Context(), strings.ToLower(text))
		if err != nil {
			return fmt.Errorf("llm label: %w", err)
		}
		fmt.Printf("llm: %s (%s)\n", label.Category, label.Reason)
		return nil
	},
}

func init() {
	classifyCmd.Flags().BoolVar(&flagClassifyLLM, "llm", false, "also print the LLM's advisory label")
	rootCmd.AddCommand(classifyCmd)
}
