// Package capture runs the live capture-preview-save loop around the edge
// detector.
//
// A Loop pulls frames from a Source, shows them on a Display with a frames-
// per-second overlay, polls the operator's key with a fixed timeout and
// dispatches it: ESC processes and saves the current frame, q or Q quits,
// anything else continues. Processed frames are written as frameNNN.pgm,
// with an optional frameNNN_direction.<ext> beside them. The sequence number
// starts at 1 and advances only when a frame was written successfully.
//
// # Sources and displays
//
// Camera capture and the OpenCV preview windows use gocv and are compiled
// only with the "gocv" build tag; without it OpenCamera and NewWindowDisplay
// report that the backend is unavailable. The file-sequence source, the
// terminal display and the headless display are always available.
//
// # Concurrency
//
// The loop runs on the calling goroutine. With LoopOptions.Async set, the
// detection of a triggered frame runs on a single background worker so the
// preview keeps updating; at most one detection is in flight, and triggers
// that arrive while it runs are dropped and counted. Display calls are only
// ever made from the loop goroutine.
package capture
