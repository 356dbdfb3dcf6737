package imaging

import (
	"image"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/disintegration/imaging"
)

// Crop extracts the rectangle (x1,y1)-(x2,y2) from img.
//
// The rectangle must lie inside the image bounds with x1 < x2 and y1 < y2.
// The result is anchored at (0,0).
func Crop(img image.Image, x1, y1, x2, y2 int) (image.Image, error) {
	bounds := img.Bounds()

	if x1 < bounds.Min.X || y1 < bounds.Min.Y || x2 > bounds.Max.X || y2 > bounds.Max.Y {
		return nil, errors.Newf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			x1, y1, x2, y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if x1 >= x2 || y1 >= y2 {
		return nil, errors.New("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	return imaging.Crop(img, image.Rect(x1, y1, x2, y2)), nil
}

// NamedRegion returns the rectangle of a named region of a w x h image:
// top-left, top-right, bottom-left, bottom-right, top-half, bottom-half,
// left-half, right-half or center (the middle 50% in each direction).
func NamedRegion(region string, w, h int) (image.Rectangle, error) {
	midX := w / 2
	midY := h / 2

	switch region {
	case "top-left":
		return image.Rect(0, 0, midX, midY), nil
	case "top-right":
		return image.Rect(midX, 0, w, midY), nil
	case "bottom-left":
		return image.Rect(0, midY, midX, h), nil
	case "bottom-right":
		return image.Rect(midX, midY, w, h), nil
	case "top-half":
		return image.Rect(0, 0, w, midY), nil
	case "bottom-half":
		return image.Rect(0, midY, w, h), nil
	case "left-half":
		return image.Rect(0, 0, midX, h), nil
	case "right-half":
		return image.Rect(midX, 0, w, h), nil
	case "center":
		qW := w / 4
		qH := h / 4
		return image.Rect(qW, qH, w-qW, h-qH), nil
	default:
		return image.Rectangle{}, errors.Newf("unknown region: %s", region)
	}
}

// CropRegion crops img to a region given either by name (see NamedRegion)
// or as "x1,y1,x2,y2" in pixels. An empty region returns img unchanged.
func CropRegion(img image.Image, region string) (image.Image, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return img, nil
	}

	b := img.Bounds()
	if !strings.Contains(region, ",") {
		r, err := NamedRegion(region, b.Dx(), b.Dy())
		if err != nil {
			return nil, err
		}
		r = r.Add(b.Min)
		return Crop(img, r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
	}

	parts := strings.Split(region, ",")
	if len(parts) != 4 {
		return nil, errors.Newf("region %q must be x1,y1,x2,y2", region)
	}
	var c [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid region coordinate %q", p)
		}
		c[i] = v
	}
	return Crop(img, c[0], c[1], c[2], c[3])
}
