package capture

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ironsheep/canny-cam/internal/canny"
	"github.com/ironsheep/canny-cam/internal/imaging"
	"github.com/ironsheep/canny-cam/internal/logger"
)

func newTestLoop(t *testing.T, src Source, disp Display, opts LoopOptions) (*Loop, *bytes.Buffer) {
	t.Helper()
	proc, err := NewProcessor(testParams, FormatPGM, 2)
	require.NoError(t, err)
	var out bytes.Buffer
	opts.Out = &out
	if opts.OutputDir == "" {
		opts.OutputDir = t.TempDir()
	}
	return NewLoop(src, disp, proc, opts), &out
}

func TestLoop_QuitImmediately(t *testing.T) {
	disp := &scriptedDisplay{keys: []Key{'Q'}}
	loop, out := newTestLoop(t, framesSource(true, stepImage(32, 24, 16)), disp, LoopOptions{})

	sum, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Saved)
	assert.Equal(t, 1, sum.Frames)
	assert.NotEmpty(t, sum.RunID)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"[INFO] Press ESC to capture, process, and save images...",
		"[INFO] Press Q to quit the program...",
		"[INFO] Program terminated. 0 frames saved.",
	}, lines)
}

func TestLoop_ProcessesOnEscape(t *testing.T) {
	dir := t.TempDir()
	frame := stepImage(32, 24, 16)
	disp := &scriptedDisplay{keys: []Key{KeyNone, KeyEsc, 'x', KeyEsc, 'q'}}
	loop, out := newTestLoop(t, framesSource(true, frame), disp, LoopOptions{OutputDir: dir})

	sum, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Saved)
	assert.Equal(t, 5, sum.Frames)
	assert.Len(t, disp.edges, 2)

	gray, err := imaging.FromImage(frame)
	require.NoError(t, err)
	want, err := canny.Detect(gray, testParams)
	require.NoError(t, err)

	for _, name := range []string{"frame001.pgm", "frame002.pgm"} {
		got, err := imaging.ReadPGM(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Equal(t, want.Edges, got, name)
	}
	assert.NoFileExists(t, filepath.Join(dir, "frame003.pgm"))
	assert.NoFileExists(t, filepath.Join(dir, "frame001_direction.pgm"))

	text := out.String()
	assert.Contains(t, text, "[INFO] Frame 001 processed and saved in ")
	assert.Contains(t, text, "[INFO] Frame 002 processed and saved in ")
	assert.Contains(t, text, "[INFO] Program terminated. 2 frames saved.")
}

func TestLoop_ReportsProcessingTime(t *testing.T) {
	clock := newFakeClock()
	disp := &scriptedDisplay{keys: []Key{KeyEsc}}
	loop, out := newTestLoop(t, framesSource(true, stepImage(32, 24, 16)), disp, LoopOptions{Now: clock.Now})

	_, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "[INFO] Frame 001 processed and saved in 0.000000 seconds")
}

func TestLoop_Direction(t *testing.T) {
	dir := t.TempDir()
	disp := &scriptedDisplay{keys: []Key{KeyEsc}}
	loop, _ := newTestLoop(t, framesSource(true, stepImage(32, 24, 16)), disp,
		LoopOptions{OutputDir: dir, Direction: true})

	sum, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Saved)
	assert.FileExists(t, filepath.Join(dir, "frame001.pgm"))
	assert.FileExists(t, filepath.Join(dir, "frame001_direction.pgm"))
}

func TestLoop_WriteFailureKeepsSequence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "later")
	disp := &scriptedDisplay{keys: []Key{KeyEsc, KeyEsc, 'q'}}
	disp.onPoll = func(i int) {
		// The first save fails; the directory appears before the second.
		if i == 1 {
			require.NoError(t, os.MkdirAll(dir, 0o755))
		}
	}
	loop, out := newTestLoop(t, framesSource(true, stepImage(32, 24, 16)), disp, LoopOptions{OutputDir: dir})

	sum, err := loop.Run(context.Background())
	require.NoError(t, err, "write failures do not end the loop")
	assert.Equal(t, 1, sum.WriteFailures)
	assert.Equal(t, 1, sum.Saved)
	assert.FileExists(t, filepath.Join(dir, "frame001.pgm"), "a failed write does not consume the sequence number")
	assert.NoFileExists(t, filepath.Join(dir, "frame002.pgm"))
	assert.Contains(t, out.String(), "[ERROR] Error writing the edge image")
	assert.Contains(t, out.String(), "[INFO] Program terminated. 1 frames saved.")
}

func TestLoop_DirectionWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, DirectionFileName(1, "pgm"))
	require.NoError(t, os.Mkdir(blocked, 0o755))

	disp := &scriptedDisplay{keys: []Key{KeyEsc, 'q'}}
	loop, out := newTestLoop(t, framesSource(true, stepImage(32, 24, 16)), disp,
		LoopOptions{OutputDir: dir, Direction: true})

	sum, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.WriteFailures)
	assert.Equal(t, 0, sum.Saved)
	assert.Contains(t, out.String(), "[ERROR] Error writing the direction image, "+blocked)
	assert.NotContains(t, out.String(), "edge image")
	assert.NoFileExists(t, filepath.Join(dir, EdgeFileName(1)))
}

func TestLoop_EmptyFrames(t *testing.T) {
	empty := read{err: errors.Mark(errors.New("blank"), ErrEmptyFrame)}
	frame := read{img: stepImage(16, 12, 8)}

	t.Run("tolerated below the limit", func(t *testing.T) {
		src := &scriptedSource{reads: []read{empty, empty, frame, empty, empty, frame}}
		disp := &scriptedDisplay{keys: []Key{KeyNone, 'q'}}
		loop, _ := newTestLoop(t, src, disp, LoopOptions{MaxEmptyFrames: 3})

		sum, err := loop.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 4, sum.EmptyFrames)
		assert.Equal(t, 2, sum.Frames)
	})

	t.Run("too many in a row", func(t *testing.T) {
		src := &scriptedSource{reads: []read{frame, empty}, repeat: true}
		disp := &scriptedDisplay{keys: []Key{KeyNone}}
		loop, out := newTestLoop(t, src, disp, LoopOptions{MaxEmptyFrames: 3})

		sum, err := loop.Run(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrEmptyFrame))
		assert.Equal(t, 3, sum.EmptyFrames)
		assert.Contains(t, out.String(), "[INFO] Program terminated. 0 frames saved.")
	})
}

func TestLoop_SourceExhausted(t *testing.T) {
	frame := stepImage(16, 12, 8)
	loop, _ := newTestLoop(t, framesSource(false, frame, frame, frame), NewHeadlessDisplay(), LoopOptions{})

	sum, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Frames)
	assert.Equal(t, 3, sum.Saved, "headless display processes every frame")
}

func TestLoop_SourceError(t *testing.T) {
	src := &scriptedSource{reads: []read{{err: errors.New("device unplugged")}}}
	loop, _ := newTestLoop(t, src, &scriptedDisplay{}, LoopOptions{})

	_, err := loop.Run(context.Background())
	assert.ErrorContains(t, err, "device unplugged")
}

func TestLoop_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	disp := &scriptedDisplay{keys: []Key{KeyNone, KeyNone, KeyNone, KeyNone}}
	disp.onPoll = func(i int) {
		if i == 2 {
			cancel()
		}
	}
	loop, _ := newTestLoop(t, framesSource(true, stepImage(16, 12, 8)), disp, LoopOptions{})

	sum, err := loop.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Frames)
}

func TestLoop_FPSOverlay(t *testing.T) {
	clock := newFakeClock()
	keys := make([]Key, 12)
	for i := range keys {
		keys[i] = KeyNone
	}
	disp := &scriptedDisplay{keys: keys}
	disp.onPoll = func(int) { clock.Advance(100 * time.Millisecond) }
	loop, _ := newTestLoop(t, framesSource(true, stepImage(16, 12, 8)), disp, LoopOptions{Now: clock.Now})

	_, err := loop.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, disp.fps, 13)
	for i := 0; i < 10; i++ {
		assert.Equal(t, 0.0, disp.fps[i], "frame %d", i)
	}
	assert.Equal(t, 11.0, disp.fps[10], "eleven frames in the first whole second")
	assert.Equal(t, 11.0, disp.fps[11])
}

func TestLoop_LogsFrameFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.Logger
	logger.Logger = zap.New(core).Sugar()
	t.Cleanup(func() { logger.Logger = prev })

	clock := newFakeClock()
	keys := make([]Key, 12)
	for i := range keys {
		keys[i] = KeyNone
	}
	keys[11] = KeyEsc
	disp := &scriptedDisplay{keys: keys}
	disp.onPoll = func(int) { clock.Advance(100 * time.Millisecond) }
	loop, _ := newTestLoop(t, framesSource(true, stepImage(16, 12, 8)), disp, LoopOptions{Now: clock.Now})

	_, err := loop.Run(context.Background())
	require.NoError(t, err)

	rate := logs.FilterMessage("frame rate changed").All()
	require.Len(t, rate, 1)
	assert.Equal(t, 11.0, rate[0].ContextMap()[logger.FieldFPS])
	assert.Equal(t, int64(11), rate[0].ContextMap()[logger.FieldFrame])

	saved := logs.FilterMessage("frame saved").All()
	require.Len(t, saved, 1)
	assert.Equal(t, int64(12), saved[0].ContextMap()[logger.FieldRows])
	assert.Equal(t, int64(16), saved[0].ContextMap()[logger.FieldCols])

	done := logs.FilterMessage("capture loop finished").All()
	require.Len(t, done, 1)
	assert.Equal(t, 11.0, done[0].ContextMap()[logger.FieldFPS])
	assert.Equal(t, int64(13), done[0].ContextMap()[logger.FieldFrame])
}

func TestLoop_AsyncSingleFlight(t *testing.T) {
	dir := t.TempDir()
	keys := make([]Key, 40)
	for i := range keys {
		keys[i] = KeyEsc
	}
	disp := &scriptedDisplay{keys: keys}
	// Large frames keep the worker busy across several polls.
	loop, out := newTestLoop(t, framesSource(true, stepImage(320, 240, 160)), disp,
		LoopOptions{OutputDir: dir, Async: true})

	sum, err := loop.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(keys), sum.Saved+sum.Dropped, "every trigger is either saved or dropped")
	assert.GreaterOrEqual(t, sum.Saved, 1)
	assert.Len(t, disp.edges, sum.Saved)

	for seq := 1; seq <= sum.Saved; seq++ {
		assert.FileExists(t, filepath.Join(dir, EdgeFileName(seq)))
	}
	assert.NoFileExists(t, filepath.Join(dir, EdgeFileName(sum.Saved+1)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, sum.Saved, "no overlapping writes to the sequence")
	assert.Contains(t, out.String(), "frames saved.")
}

func TestLoop_AsyncQuitWaitsForWorker(t *testing.T) {
	dir := t.TempDir()
	disp := &scriptedDisplay{keys: []Key{KeyEsc, 'q'}}
	loop, _ := newTestLoop(t, framesSource(true, stepImage(320, 240, 160)), disp,
		LoopOptions{OutputDir: dir, Async: true})

	sum, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Saved)
	assert.FileExists(t, filepath.Join(dir, "frame001.pgm"))
}
