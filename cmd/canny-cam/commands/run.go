package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ironsheep/canny-cam/internal/capture"
	"github.com/ironsheep/canny-cam/internal/config"
	"github.com/ironsheep/canny-cam/internal/logger"
)

type runOptions struct {
	direction bool
	async     bool
	outDir    string
	display   string
	files     string
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run SIGMA TLOW THIGH [writedirim]",
		Short: "Preview the camera and save edge maps on ESC",
		Long: `Preview the camera with a frame-rate overlay. ESC converts the current
frame to grayscale, runs Canny edge detection and writes frameNNN.pgm;
Q quits.

SIGMA is the Gaussian smoothing standard deviation. TLOW and THIGH are the
hysteresis thresholds as fractions of the strongest gradient, with
0 < TLOW < THIGH < 1. Any fourth argument also writes
frameNNN_direction.<ext> direction maps.

Exit status is 1 for bad arguments and -1 when the camera cannot be opened.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 3 || len(args) > 4 {
				printRunUsage(cmd)
				return &ExitError{Code: 1, Err: errors.Newf("expected 3 or 4 arguments, got %d", len(args))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCapture(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.direction, "direction", false, "Write direction maps (same as a fourth argument)")
	cmd.Flags().BoolVar(&opts.async, "async", false, "Run detection on a background worker")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "Output directory (overrides output.dir)")
	cmd.Flags().StringVar(&opts.display, "display", "", "Display mode: window, terminal or none (overrides display.mode)")
	cmd.Flags().StringVar(&opts.files, "files", "", "Replay image files matching this glob instead of the camera")
	return cmd
}

func printRunUsage(cmd *cobra.Command) {
	fmt.Fprintf(cmd.ErrOrStderr(), "\n<USAGE> %s run sigma tlow thigh [writedirim]\n", cmd.Root().Name())
	fmt.Fprintln(cmd.ErrOrStderr(), "      sigma:      Standard deviation of the gaussian smoothing filter.")
	fmt.Fprintln(cmd.ErrOrStderr(), "      tlow:       Low hysteresis threshold, a fraction (0.0-1.0) of the")
	fmt.Fprintln(cmd.ErrOrStderr(), "                  strongest gradient magnitude in the frame.")
	fmt.Fprintln(cmd.ErrOrStderr(), "      thigh:      High hysteresis threshold, a fraction (0.0-1.0) of the")
	fmt.Fprintln(cmd.ErrOrStderr(), "                  strongest gradient magnitude in the frame. Must exceed tlow.")
	fmt.Fprintln(cmd.ErrOrStderr(), "      writedirim: Optional argument to output a direction image.")
}

func (a *app) runCapture(cmd *cobra.Command, args []string, opts runOptions) error {
	params, err := parseParams(args)
	if err != nil {
		printRunUsage(cmd)
		return &ExitError{Code: 1, Err: err}
	}

	cfg := *a.cfg
	if opts.outDir != "" {
		cfg.Output.Dir = opts.outDir
	}
	if opts.display != "" {
		cfg.Display.Mode = opts.display
	}
	if opts.files != "" {
		cfg.Camera.Files = opts.files
	}
	if opts.async {
		cfg.Loop.Async = true
	}
	if err := cfg.Validate(); err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	direction := opts.direction || len(args) == 4

	log := logger.Named("run")

	processor, err := capture.NewProcessor(params, cfg.Output.DirectionFormat, cfg.Detector.Workers)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	source, err := openSource(&cfg)
	if err != nil {
		log.Errorw("failed to open frame source", logger.FieldSource, sourceName(&cfg), logger.FieldError, err)
		return &ExitError{Code: -1, Err: err}
	}
	defer source.Close()
	log.Debugw("frame source opened", logger.FieldSource, sourceName(&cfg),
		logger.FieldCols, cfg.Camera.Width, logger.FieldRows, cfg.Camera.Height)

	display, err := openDisplay(&cfg, cmd)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	defer display.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := capture.NewLoop(source, display, processor, capture.LoopOptions{
		OutputDir:      cfg.Output.Dir,
		Direction:      direction,
		KeyTimeout:     cfg.Display.KeyTimeout(),
		MaxEmptyFrames: cfg.Loop.MaxEmptyFrames,
		Async:          cfg.Loop.Async,
		Out:            cmd.OutOrStdout(),
	})
	summary, err := loop.Run(ctx)
	log.Debugw("run finished",
		logger.FieldRunID, summary.RunID,
		"saved", summary.Saved,
		logger.FieldDropped, summary.Dropped,
		"write_failures", summary.WriteFailures)
	return err
}

func openSource(cfg *config.Config) (capture.Source, error) {
	if cfg.Camera.Files != "" {
		return capture.NewFileSource(cfg.Camera.Files, cfg.Camera.Width, cfg.Camera.Height, cfg.Camera.LoopFiles)
	}
	return capture.OpenCamera(capture.CameraOptions{
		Width:    cfg.Camera.Width,
		Height:   cfg.Camera.Height,
		Device:   cfg.Camera.Device,
		Pipeline: cfg.Camera.Pipeline,
	})
}

// sourceName describes the configured frame source for logs.
func sourceName(cfg *config.Config) string {
	if cfg.Camera.Files != "" {
		return "files:" + cfg.Camera.Files
	}
	if cfg.Camera.Device >= 0 {
		return fmt.Sprintf("device:%d", cfg.Camera.Device)
	}
	return capture.CameraOptions{
		Width:    cfg.Camera.Width,
		Height:   cfg.Camera.Height,
		Pipeline: cfg.Camera.Pipeline,
	}.PipelineString()
}

func openDisplay(cfg *config.Config, cmd *cobra.Command) (capture.Display, error) {
	switch cfg.Display.Mode {
	case config.DisplayTerminal:
		return capture.NewTerminalDisplay(cmd.ErrOrStderr())
	case config.DisplayNone:
		return capture.NewHeadlessDisplay(), nil
	default:
		return capture.NewWindowDisplay()
	}
}
