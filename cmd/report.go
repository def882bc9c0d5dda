package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rinadelph/cursor-automator/internal/metrics"
)

var reportCmd = &cobra.Command{
	Use:   "report [metrics-file]",
	Short: "Render a session metrics report",
	Long: `Render the boxed metrics report from a metrics snapshot file. Without an
argument, uses the most recent project_metrics_*.json in the log directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) == 1 {
			path = args[0]
		} else {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			path, err = latestMetricsFile(cfg.LogDir)
			if err != nil {
				return err
			}
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read metrics: %w", err)
		}
		var snap metrics.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return fmt.Errorf("parse metrics %s: %w", path, err)
		}

		fmt.Println(metrics.RenderReport(snap.ProjectName, snap.SortedSteps(), snap.TotalDuration))
		return nil
	},
}

// latestMetricsFile picks the newest snapshot in dir. The timestamp in the
// name sorts lexicographically, so the last name wins.
func latestMetricsFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "project_metrics_*.json"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no metrics files in %s", dir)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
