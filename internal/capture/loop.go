package capture

import (
	"context"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ironsheep/canny-cam/internal/canny"
	"github.com/ironsheep/canny-cam/internal/imaging"
	"github.com/ironsheep/canny-cam/internal/logger"
)

// LoopOptions configures a capture loop.
type LoopOptions struct {
	// OutputDir receives frameNNN.pgm and direction files.
	OutputDir string
	// Direction requests a direction map for every processed frame.
	Direction bool
	// KeyTimeout is how long each key poll waits. Zero means 10ms.
	KeyTimeout time.Duration
	// MaxEmptyFrames is how many empty reads in a row end the run. Zero means 30.
	MaxEmptyFrames int
	// Async runs detection on a background worker.
	Async bool
	// Out receives the operator messages. Nil means io.Discard.
	Out io.Writer
	// Now is the clock used for the frame rate and timings. Nil means time.Now.
	Now func() time.Time
}

// Summary describes a finished run.
type Summary struct {
	RunID         string
	Frames        int // frames displayed
	Saved         int // frames processed and written
	Dropped       int // triggers ignored while a detection was running
	EmptyFrames   int // empty reads in total
	WriteFailures int // processed frames that could not be written
}

// Loop is the capture-preview-save control loop. Counters and timers are
// owned by the loop; a Loop runs once.
type Loop struct {
	source    Source
	display   Display
	processor *Processor
	opts      LoopOptions
	fps       *FPSMeter
	log       *zap.SugaredLogger

	seq     int
	summary Summary
}

// NewLoop wires a source, display and processor into a loop.
func NewLoop(source Source, display Display, processor *Processor, opts LoopOptions) *Loop {
	if opts.KeyTimeout <= 0 {
		opts.KeyTimeout = 10 * time.Millisecond
	}
	if opts.MaxEmptyFrames <= 0 {
		opts.MaxEmptyFrames = 30
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	runID := uuid.NewString()
	return &Loop{
		source:    source,
		display:   display,
		processor: processor,
		opts:      opts,
		fps:       NewFPSMeter(opts.Now),
		log:       logger.Named("capture").With(logger.FieldRunID, runID),
		seq:       1,
		summary:   Summary{RunID: runID},
	}
}

// outcome is the result of processing one frame.
type outcome struct {
	seq     int
	result  *canny.Result
	edgeOut string
	elapsed time.Duration
	err     error

	// failed names the output that could not be written, "edge" or
	// "direction", and failedPath its destination.
	failed     string
	failedPath string
}

// Run drives the loop until the operator quits, ctx is cancelled, a finite
// source ends, or the source fails. It always prints the termination line.
func (l *Loop) Run(ctx context.Context) (Summary, error) {
	fmt.Fprintln(l.opts.Out, "[INFO] Press ESC to capture, process, and save images...")
	fmt.Fprintln(l.opts.Out, "[INFO] Press Q to quit the program...")

	p := l.processor.Params()
	l.log.Infow("capture loop started",
		logger.FieldSigma, p.Sigma, logger.FieldTLow, p.TLow, logger.FieldTHigh, p.THigh,
		"async", l.opts.Async, "direction", l.opts.Direction)

	err := l.run(ctx)

	fmt.Fprintf(l.opts.Out, "[INFO] Program terminated. %d frames saved.\n", l.summary.Saved)
	l.log.Infow("capture loop finished",
		logger.FieldFrame, l.summary.Frames,
		logger.FieldFPS, l.fps.FPS(),
		"saved", l.summary.Saved,
		logger.FieldDropped, l.summary.Dropped,
		logger.FieldEmpty, l.summary.EmptyFrames)
	return l.summary, err
}

func (l *Loop) run(ctx context.Context) error {
	// Single-slot result mailbox for the async worker; busy is owned by
	// this goroutine.
	results := make(chan outcome, 1)
	busy := false
	defer func() {
		if busy {
			l.finish(<-results)
		}
	}()

	empty := 0
	for {
		if busy {
			select {
			case o := <-results:
				busy = false
				l.finish(o)
			default:
			}
		}

		if ctx.Err() != nil {
			l.log.Debugw("context cancelled, stopping")
			return nil
		}

		frame, err := l.source.Read(ctx)
		switch {
		case err == nil:
			empty = 0
		case errors.Is(err, ErrEmptyFrame):
			empty++
			l.summary.EmptyFrames++
			l.log.Warnw("empty frame", logger.FieldError, err, logger.FieldEmpty, empty, logger.FieldFrame, l.summary.Frames)
			if empty >= l.opts.MaxEmptyFrames {
				return errors.Wrapf(err, "%d empty frames in a row", empty)
			}
			continue
		case errors.Is(err, io.EOF):
			l.log.Infow("source exhausted")
			return nil
		case ctx.Err() != nil:
			return nil
		default:
			return errors.Wrap(err, "failed to read frame")
		}

		l.summary.Frames++
		prevFPS := l.fps.FPS()
		fps := l.fps.Tick()
		if fps != prevFPS {
			l.log.Debugw("frame rate changed", logger.FieldFPS, fps, logger.FieldFrame, l.summary.Frames)
		}
		if err := l.display.ShowLive(frame, fps); err != nil {
			return errors.Wrap(err, "failed to show frame")
		}

		key, err := l.display.PollKey(l.opts.KeyTimeout)
		if err != nil {
			return errors.Wrap(err, "failed to poll key")
		}

		switch Dispatch(key) {
		case Quit:
			return nil
		case Process:
			if busy {
				l.summary.Dropped++
				l.log.Debugw("detection in flight, trigger dropped", logger.FieldDropped, l.summary.Dropped)
				continue
			}
			if !l.opts.Async {
				l.finish(l.process(frame, l.seq))
				continue
			}
			busy = true
			go func(frame image.Image, seq int) {
				results <- l.process(frame, seq)
			}(frame, l.seq)
		}
	}
}

// process converts, detects and writes one frame. It touches no loop state
// besides the read-only options, so it may run on the worker.
func (l *Loop) process(frame image.Image, seq int) outcome {
	begin := l.opts.Now()
	o := outcome{seq: seq, edgeOut: filepath.Join(l.opts.OutputDir, EdgeFileName(seq))}

	gray, err := imaging.FromImage(frame)
	if err != nil {
		o.err = errors.Wrap(err, "failed to convert frame to grayscale")
		return o
	}

	dir := NoDirection()
	if l.opts.Direction {
		dir = DirectionTo(filepath.Join(l.opts.OutputDir, DirectionFileName(seq, l.processor.DirectionExt())))
	}

	o.result, err = l.processor.Process(gray, dir)
	if err != nil {
		o.err = err
		if errors.Is(err, imaging.ErrWriteFailure) {
			o.failed = "direction"
			o.failedPath, _ = dir.Path()
		}
		o.elapsed = l.opts.Now().Sub(begin)
		return o
	}
	if err := imaging.WritePGM(o.edgeOut, o.result.Edges); err != nil {
		o.err = err
		o.failed, o.failedPath = "edge", o.edgeOut
	}
	o.elapsed = l.opts.Now().Sub(begin)
	return o
}

// finish reports an outcome and advances the sequence on success. It runs on
// the loop goroutine.
func (l *Loop) finish(o outcome) {
	if o.err != nil {
		path := o.edgeOut
		if o.failed != "" {
			l.summary.WriteFailures++
			path = o.failedPath
			fmt.Fprintf(l.opts.Out, "[ERROR] Error writing the %s image, %s: %v\n", o.failed, path, o.err)
		} else {
			fmt.Fprintf(l.opts.Out, "[ERROR] Frame %03d could not be processed: %v\n", o.seq, o.err)
		}
		l.log.Errorw("frame not saved", logger.FieldSequence, o.seq, logger.FieldPath, path, logger.FieldError, o.err)
		return
	}

	fmt.Fprintf(l.opts.Out, "[INFO] Frame %03d processed and saved in %f seconds\n", o.seq, o.elapsed.Seconds())
	l.log.Infow("frame saved",
		logger.FieldSequence, o.seq,
		logger.FieldPath, o.edgeOut,
		logger.FieldRows, o.result.Edges.Rows,
		logger.FieldCols, o.result.Edges.Cols,
		logger.FieldEdges, o.result.Stats.EdgeCount,
		logger.FieldMaxMagnitude, o.result.Stats.MaxMagnitude,
		logger.FieldDurationMS, o.elapsed.Milliseconds())

	l.seq++
	l.summary.Saved++

	if err := l.display.ShowEdges(o.result.Edges); err != nil {
		l.log.Warnw("failed to show edge map", logger.FieldError, err)
	}
}
