package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rinadelph/cursor-automator/internal/checklist"
	"github.com/rinadelph/cursor-automator/internal/config"
	"github.com/rinadelph/cursor-automator/internal/engine"
	"github.com/rinadelph/cursor-automator/internal/input"
	"github.com/rinadelph/cursor-automator/internal/logging"
	"github.com/rinadelph/cursor-automator/internal/metrics"
	telem "github.com/rinadelph/cursor-automator/internal/otel"
	"github.com/rinadelph/cursor-automator/internal/screen"
)

var (
	flagTUI           bool
	flagTheme         string
	flagControlSocket string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the button region and drive the agent",
	Long: `Start the automation session: poll the configured screen region, OCR its
text, press the accept chord when a run/accept button appears, and type the
continue message when a task completes.

Without a configured region the session starts with interactive selection:
point the mouse at the two corners of the button area and press Enter.

While running, the session accepts operator commands on its terminal
(step, complete, fail, metrics, pause, resume, stop) and, unless disabled,
the same commands as JSON datagrams on a unix control socket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAutomation(cmd)
	},
}

func init() {
	runCmd.Flags().BoolVar(&flagTUI, "tui", false, "full-screen terminal UI instead of plain console")
	runCmd.Flags().StringVar(&flagTheme, "theme", "dark", "TUI color theme: dark, light")
	runCmd.Flags().StringVar(&flagControlSocket, "control-socket", "",
		`control socket path ("off" to disable; default: $XDG_RUNTIME_DIR/cursor-automator/control.sock)`)
	rootCmd.AddCommand(runCmd)
}

func runAutomation(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.ConfigFile != "" {
		fmt.Fprintf(os.Stderr, "config: loaded %s\n", cfg.ConfigFile)
	}

	// The TUI owns the terminal, so log lines go to the file only.
	var console io.Writer = os.Stdout
	if flagTUI {
		console = io.Discard
	}
	sess, err := logging.Setup(cfg.LogDir, console)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer sess.Close()

	// Wire build version into OTEL service metadata.
	telem.Version = Version
	tel, err := telem.Init(ctx, telem.Config{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: otel init failed: %v\n", err)
	}
	if tel != nil {
		defer tel.Shutdown(context.Background())
	}

	// Refuse to start against a missing or unusable checklist.
	if _, err := checklist.Preflight(cfg.StepsFile); err != nil {
		return err
	}

	region, err := resolveRegion(ctx, cfg)
	if err != nil {
		return err
	}

	grabber, err := screen.NewExecGrabber()
	if err != nil {
		return err
	}
	recognizer, err := screen.NewTesseractRecognizer()
	if err != nil {
		return err
	}
	emitter, err := input.NewXdotoolEmitter()
	if err != nil {
		return err
	}

	resolver := checklist.NewResolver(cfg.StepsFile, cfg.RefreshDuration)
	watcher, err := checklist.NewWatcher(resolver)
	if err != nil {
		sess.Logger.Error("checklist watcher unavailable, relying on interval polling", "err", err)
	} else {
		go watcher.Run(ctx)
	}

	eng := &engine.Engine{
		Grabber:    grabber,
		Recognizer: recognizer,
		Emitter:    emitter,
		Resolver:   resolver,
		Recorder:   metrics.NewRecorder(cfg.ProjectName, cfg.LogDir),
		Log:        sess.Logger,
		Region:     region,
		Poll:       cfg.PollDuration,
		LogPath:    sess.Path,
	}
	if tel != nil {
		eng.Metrics = tel.Metrics
	}
	if cfg.LLMAssist {
		eval, err := getEvaluator(cfg)
		if err != nil {
			return fmt.Errorf("llm assist: %w", err)
		}
		eng.Evaluator = eval
		sess.Logger.Info("llm assist enabled", "provider", eval.Provider(), "model", eval.Model())
	}

	if socketPath := controlSocketPath(cfg); socketPath != "" {
		sock := engine.NewControlSocket(eng, socketPath)
		if err := sock.Start(ctx); err != nil {
			sess.Logger.Error("control socket unavailable", "err", err)
		} else {
			sess.Logger.Info("control socket listening", "path", sock.SocketPath())
		}
	}

	engineDone := make(chan error, 1)
	go func() { engineDone <- eng.Run(ctx) }()

	// The front end returns when the operator quits or the engine stops.
	var frontErr error
	if flagTUI {
		tui := &engine.TUI{Engine: eng, Theme: engine.ThemeByName(flagTheme)}
		frontErr = tui.Run(ctx)
	} else {
		console := &engine.Console{Engine: eng, In: os.Stdin, Out: os.Stdout}
		frontErr = console.Run(ctx)
	}
	eng.Stop()

	if err := <-engineDone; err != nil {
		return err
	}
	if frontErr != nil {
		return frontErr
	}
	fmt.Println(eng.Recorder.Report())
	return nil
}

// resolveRegion parses the configured region or runs interactive selection.
func resolveRegion(ctx context.Context, cfg *config.Config) (screen.Region, error) {
	if cfg.Region != "" {
		region, err := screen.ParseRegion(cfg.Region)
		if err != nil {
			return screen.Region{}, fmt.Errorf("region: %w", err)
		}
		return region, nil
	}
	if flagTUI {
		return screen.Region{}, fmt.Errorf("no region configured; --tui needs --region or a region in the config file")
	}
	return screen.NewSelector(os.Stdin, os.Stdout).Select(ctx)
}

// controlSocketPath resolves the effective socket path, empty when disabled.
func controlSocketPath(cfg *config.Config) string {
	path := cfg.ControlSocket
	if flagControlSocket != "" {
		path = flagControlSocket
	}
	switch path {
	case "off":
		return ""
	case "":
		return engine.DefaultControlSocketPath()
	default:
		return path
	}
}
