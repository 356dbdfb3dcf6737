// Package imaging provides the raster type and raster I/O used by the edge detector
// and the capture loop.
//
// This package implements the grayscale Raster container, conversion from any Go
// image.Image, resizing of frames to the configured capture size, the portable
// graymap (PGM) codec used for every saved edge image, and the colorized rendering
// of gradient-direction maps.
//
// # Coordinate System
//
// Rasters are addressed by (row, col), both 0-based:
//   - row: vertical position (0 = topmost sample)
//   - col: horizontal position (0 = leftmost sample)
//   - Samples are stored row-major: Pix[row*Cols+col]
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Raster values are plain data;
// concurrent readers are fine, writers must be synchronized by the caller.
//
// # PGM Format
//
// Output is always binary PGM ("P5") with maxval 255. The reader also accepts the
// plain "P2" variant, '#' header comments and maxval below 255.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Non-positive raster dimensions or a sample count that does not match them
//   - Malformed or truncated PGM data
//   - File I/O errors during loading
//
// Errors from writing output files are marked with ErrWriteFailure so callers can
// test for them with errors.Is.
package imaging
