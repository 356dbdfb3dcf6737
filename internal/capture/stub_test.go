//go:build !gocv

package capture

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestOpenCamera_Unavailable(t *testing.T) {
	_, err := OpenCamera(CameraOptions{Width: 640, Height: 480, Device: -1})
	assert.True(t, errors.Is(err, ErrSourceUnavailable))
}

func TestNewWindowDisplay_Unavailable(t *testing.T) {
	_, err := NewWindowDisplay()
	assert.True(t, errors.Is(err, ErrDisplayUnavailable))
}
