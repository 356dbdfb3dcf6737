// Package canny implements the Canny edge detector over 8-bit grayscale rasters.
//
// The detector runs four stages, all over rasters of the input's shape:
//
//  1. Gaussian smoothing: a 1-D kernel of standard deviation sigma and length
//     1 + 2*ceil(2.5*sigma) is applied horizontally, then vertically. At the
//     image border the kernel is truncated and the remaining weights are
//     renormalized. The result is scaled by 90 and rounded to int16 so every
//     later stage is integer arithmetic.
//
//  2. Gradient: central differences (one-sided on the first and last row and
//     column) give dx and dy. Magnitude is round(sqrt(dx² + dy²)); direction is
//     quantized to one of eight compass octants.
//
//  3. Non-maximum suppression: a sample survives only if its magnitude is >= both
//     neighbors along its gradient octant. Ties survive. The outer ring of
//     samples never survives.
//
//  4. Hysteresis: with M the largest magnitude in the image, survivors with
//     magnitude >= thigh*M are edges, and survivors with magnitude >= tlow*M
//     become edges when 8-connected, directly or through other such survivors,
//     to an edge. Edge samples are 255, all others 0.
//
// # Determinism
//
// Identical input and parameters produce bit-identical edge and direction maps,
// independent of the worker count used for the row-parallel stages.
//
// # Thread Safety
//
// A Detector holds only validated parameters. Detect may be called concurrently
// on independent rasters.
package canny
