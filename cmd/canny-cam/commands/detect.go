package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ironsheep/canny-cam/internal/capture"
	"github.com/ironsheep/canny-cam/internal/imaging"
	"github.com/ironsheep/canny-cam/internal/logger"
)

type detectOptions struct {
	direction bool
	outDir    string
	region    string
}

func newDetectCmd(a *app) *cobra.Command {
	var opts detectOptions

	cmd := &cobra.Command{
		Use:   "detect SIGMA TLOW THIGH IMAGE...",
		Short: "Run edge detection on image files",
		Long: `Run Canny edge detection on PNG, JPEG, GIF or PGM files.

Each IMAGE is converted to grayscale and its edge map written as
<name>_edges.pgm in the output directory; with --direction the direction map is
written as <name>_direction.<ext>. A summary table is printed at the end.

--region restricts detection to part of each image, either by name
(top-left, top-right, bottom-left, bottom-right, top-half, bottom-half,
left-half, right-half, center) or as pixel coordinates "x1,y1,x2,y2".`,
		Args: cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.direction, "direction", false, "Also write direction maps")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "Output directory (overrides output.dir)")
	cmd.Flags().StringVar(&opts.region, "region", "", "Crop each image to a named region or x1,y1,x2,y2 first")
	return cmd
}

func (a *app) runDetect(cmd *cobra.Command, args []string, opts detectOptions) error {
	params, err := parseParams(args)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	outDir := a.cfg.Output.Dir
	if opts.outDir != "" {
		outDir = opts.outDir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to create %s", outDir), imaging.ErrWriteFailure)
	}

	processor, err := capture.NewProcessor(params, a.cfg.Output.DirectionFormat, a.cfg.Detector.Workers)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	log := logger.Named("detect")

	table := pterm.TableData{{"Image", "Size", "Edges", "Max magnitude", "Low", "High", "Time", "Output"}}
	failed := 0
	for _, path := range args[3:] {
		begin := time.Now()
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		edgeOut := filepath.Join(outDir, name+"_edges.pgm")

		row, err := detectFile(processor, path, edgeOut, opts, outDir, name)
		if err != nil {
			failed++
			log.Errorw("detection failed", logger.FieldPath, path, logger.FieldError, err)
			table = append(table, []string{path, "-", "-", "-", "-", "-", "-", "error: " + err.Error()})
			continue
		}
		row[6] = time.Since(begin).Round(time.Microsecond).String()
		log.Debugw("detected", logger.FieldPath, path, logger.FieldEdges, row[2])
		table = append(table, row)
	}

	if err := pterm.DefaultTable.WithHasHeader().WithWriter(cmd.OutOrStdout()).WithData(table).Render(); err != nil {
		return errors.Wrap(err, "failed to render summary")
	}
	if failed > 0 {
		return errors.Newf("%d of %d images failed", failed, len(args)-3)
	}
	return nil
}

// detectFile processes one image and returns its summary row. The time
// column is left for the caller.
func detectFile(p *capture.Processor, path, edgeOut string, opts detectOptions, outDir, name string) ([]string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	img, err = imaging.CropRegion(img, opts.region)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to crop %s", path)
	}
	gray, err := imaging.FromImage(img)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to convert %s", path)
	}

	dir := capture.NoDirection()
	if opts.direction {
		dir = capture.DirectionTo(filepath.Join(outDir, name+"_direction."+p.DirectionExt()))
	}
	res, err := p.Process(gray, dir)
	if err != nil {
		return nil, err
	}
	if err := imaging.WritePGM(edgeOut, res.Edges); err != nil {
		return nil, err
	}

	return []string{
		path,
		fmt.Sprintf("%dx%d", gray.Cols, gray.Rows),
		fmt.Sprintf("%d", res.Stats.EdgeCount),
		fmt.Sprintf("%d", res.Stats.MaxMagnitude),
		fmt.Sprintf("%.1f", res.Stats.Low),
		fmt.Sprintf("%.1f", res.Stats.High),
		"",
		edgeOut,
	}, nil
}
