package mediancut

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a pixel buffer is not made of whole RGBA pixels.
	ErrInvalidInput = errors.New("mediancut: pixel buffer length is not a multiple of 4")
	// ErrPaletteSize is returned for a palette size outside 1..MaxPaletteSize.
	ErrPaletteSize = errors.New("mediancut: palette size out of range")
)

// InvariantError is the panic value used when a pixel has no palette entry
// during remapping. It can only be raised by a bug in this package.
type InvariantError struct {
	Key uint32
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("mediancut: no palette entry for color key %#06x", e.Key)
}

func checkSize(size int) error {
	if size < 1 || size > MaxPaletteSize {
		return fmt.Errorf("%w: %d (want 1..%d)", ErrPaletteSize, size, MaxPaletteSize)
	}
	return nil
}

func checkPixels(pix []byte) error {
	if len(pix)%4 != 0 {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidInput, len(pix))
	}
	return nil
}
