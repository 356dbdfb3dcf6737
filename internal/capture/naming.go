package capture

import "fmt"

// EdgeFileName returns the edge map file name for a sequence number.
func EdgeFileName(seq int) string {
	return fmt.Sprintf("frame%03d.pgm", seq)
}

// DirectionFileName returns the direction map file name for a sequence
// number and file extension (without the dot).
func DirectionFileName(seq int, ext string) string {
	return fmt.Sprintf("frame%03d_direction.%s", seq, ext)
}
