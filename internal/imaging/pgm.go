package imaging

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
)

// ErrWriteFailure marks errors from persisting a raster to disk.
//
// Callers in the capture loop treat it as recoverable: the failure is
// reported and the operator may trigger another save.
var ErrWriteFailure = errors.New("raster write failed")

// PGMMaxValue is the max-sample-value written in every PGM header.
const PGMMaxValue = 255

// EncodePGM writes r as a binary (P5) portable graymap.
//
// The header is "P5\n<cols> <rows>\n255\n", followed by Rows*Cols raw bytes.
func EncodePGM(w io.Writer, r *Raster) error {
	if err := r.Validate(); err != nil {
		return errors.Wrap(err, "cannot encode PGM")
	}
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P5\n%d %d\n%d\n", r.Cols, r.Rows, PGMMaxValue); err != nil {
		return errors.Wrap(err, "failed to write PGM header")
	}
	if _, err := bw.Write(r.Pix); err != nil {
		return errors.Wrap(err, "failed to write PGM samples")
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush PGM")
	}
	return nil
}

// WritePGM encodes r to the file at path, replacing any existing file.
//
// All failures are marked with ErrWriteFailure.
func WritePGM(path string, r *Raster) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to create %s", path), ErrWriteFailure)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Mark(errors.Wrapf(cerr, "failed to close %s", path), ErrWriteFailure)
		}
	}()

	if err := EncodePGM(f, r); err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to write %s", path), ErrWriteFailure)
	}
	return nil
}

// DecodePGM reads a portable graymap in binary (P5) or plain (P2) form.
//
// Header tokens may be separated by any whitespace and interleaved with
// '#' comments. Only maxval <= 255 is supported; samples are rescaled to
// 0..255 when maxval is smaller.
func DecodePGM(rd io.Reader) (*Raster, error) {
	br := bufio.NewReader(rd)

	magic, err := pgmToken(br)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read PGM magic")
	}
	if magic != "P5" && magic != "P2" {
		return nil, errors.Newf("unsupported PGM magic %q", magic)
	}

	var header [3]int
	for i, name := range []string{"width", "height", "maxval"} {
		tok, err := pgmToken(br)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read PGM %s", name)
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid PGM %s %q", name, tok)
		}
		header[i] = v
	}
	cols, rows, maxval := header[0], header[1], header[2]
	if maxval <= 0 || maxval > PGMMaxValue {
		return nil, errors.Newf("unsupported PGM maxval %d", maxval)
	}

	r, err := NewRaster(rows, cols)
	if err != nil {
		return nil, errors.Wrap(err, "invalid PGM dimensions")
	}

	if magic == "P5" {
		// Exactly one whitespace byte separates maxval from the samples.
		if _, err := br.ReadByte(); err != nil {
			return nil, errors.Wrap(err, "truncated PGM header")
		}
		if _, err := io.ReadFull(br, r.Pix); err != nil {
			return nil, errors.Wrap(err, "truncated PGM samples")
		}
	} else {
		for i := range r.Pix {
			tok, err := pgmToken(br)
			if err != nil {
				return nil, errors.Wrapf(err, "truncated PGM samples at %d", i)
			}
			v, err := strconv.Atoi(tok)
			if err != nil || v < 0 || v > maxval {
				return nil, errors.Newf("invalid PGM sample %q at %d", tok, i)
			}
			r.Pix[i] = uint8(v)
		}
	}

	if maxval != PGMMaxValue {
		for i, v := range r.Pix {
			if int(v) > maxval {
				return nil, errors.Newf("PGM sample %d exceeds maxval %d", v, maxval)
			}
			r.Pix[i] = uint8((int(v)*PGMMaxValue + maxval/2) / maxval)
		}
	}
	return r, nil
}

// ReadPGM decodes the PGM file at path.
func ReadPGM(path string) (*Raster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	r, err := DecodePGM(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", path)
	}
	return r, nil
}

// pgmToken returns the next whitespace-delimited header token, skipping
// comments that run from '#' to end of line. The delimiter after the token
// is left unread.
func pgmToken(br *bufio.Reader) (string, error) {
	var tok []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF && len(tok) > 0 {
				return string(tok), nil
			}
			if err == io.EOF {
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}
		switch {
		case b == '#' && len(tok) == 0:
			if _, err := br.ReadString('\n'); err != nil && err != io.EOF {
				return "", err
			}
		case b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f':
			if len(tok) > 0 {
				return string(tok), br.UnreadByte()
			}
		default:
			tok = append(tok, b)
		}
	}
}
