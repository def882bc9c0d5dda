package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rinadelph/cursor-automator/internal/screen"
)

var flagKeepImage bool

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture and OCR the region once",
	Long: `Capture the configured screen region a single time, run OCR on it, and
print the recognized text. Useful for calibrating the region and checking
what the classifier would see.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if cfg.Region == "" {
			return fmt.Errorf("no region configured (use --region or the config file)")
		}
		region, err := screen.ParseRegion(cfg.Region)
		if err != nil {
			return fmt.Errorf("region: %w", err)
		}

		grabber, err := screen.NewExecGrabber()
		if err != nil {
			return err
		}
		recognizer, err := screen.NewTesseractRecognizer()
		if err != nil {
			return err
		}

		path, err := grabber.Grab(cmd.Context(), region)
		if err != nil {
			return err
		}
		if flagKeepImage {
			fmt.Println("image:", path)
		} else {
			defer os.Remove(path)
		}

		text, err := recognizer.Recognize(cmd.Context(), path)
		if err != nil {
			return err
		}
		if text == "" {
			fmt.Println("(no text recognized)")
			return nil
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	captureCmd.Flags().BoolVar(&flagKeepImage, "keep-image", false, "print the captured image path and keep the file")
	rootCmd.AddCommand(captureCmd)
}
