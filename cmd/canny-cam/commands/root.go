package commands

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ironsheep/canny-cam/internal/config"
	"github.com/ironsheep/canny-cam/internal/logger"
)

// BuildInfo carries the version stamped in at build time.
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps a command error to the process exit code: 0 for success,
// the code of an ExitError, and 1 for anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return 1
}

// app holds state shared by all subcommands of one command tree.
type app struct {
	build      BuildInfo
	configPath string
	verbose    int
	logJSON    bool
	cfg        *config.Config
}

// NewRootCmd builds the canny-cam command tree.
func NewRootCmd(build BuildInfo) *cobra.Command {
	a := &app{build: build}

	root := &cobra.Command{
		Use:   "canny-cam",
		Short: "Live camera Canny edge detection",
		Long: `canny-cam - capture camera frames and save their Canny edge maps.

The run command previews the camera with a frame-rate overlay. Press ESC to
convert the current frame to grayscale, run edge detection and save it as
frameNNN.pgm; press Q to quit. The detect command does the same for image
files without a camera.

Configuration is read from canny-cam.toml (working directory or
$HOME/.canny-cam), overridden by CANNY_CAM_* environment variables.

Examples:
  canny-cam run 1.0 0.3 0.7              # live capture, edges only
  canny-cam run 1.0 0.3 0.7 dir          # also write direction maps
  canny-cam detect 1.4 0.4 0.8 in/*.png  # offline detection
  canny-cam config show                  # print effective configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (TOML)")
	root.PersistentFlags().CountVarP(&a.verbose, "verbose", "v", "Enable debug logging")
	root.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "Emit logs as JSON")

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newDetectCmd(a))
	root.AddCommand(newConfigCmd(a))
	root.AddCommand(newVersionCmd(a))
	return root
}

// init loads configuration and sets up logging before any command runs.
func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose > 0 {
		cfg.Log.Level = "debug"
	}
	if a.logJSON {
		cfg.Log.JSON = true
	}
	if err := logger.Initialize(cfg.Log.Level, cfg.Log.JSON); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	a.cfg = cfg
	return nil
}
