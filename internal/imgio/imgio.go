// Package imgio decodes and encodes images for the command line and the
// HTTP server. Reduction itself only ever sees raw RGBA buffers.
package imgio

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/carbocation/go-mediancut"
	"github.com/disintegration/imaging"

	// Register decoders that imaging does not pull in itself.
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for output formats that cannot carry a
// reduced palette losslessly.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Formats lists the accepted output format names.
var Formats = []string{"png", "gif", "bmp", "tiff"}

// Options controls decoding and encoding.
type Options struct {
	// AutoOrient applies EXIF orientation when decoding.
	AutoOrient bool
	// Width and Height resize the decoded image when either is set. A zero
	// value keeps the aspect ratio.
	Width, Height int
	// Compression is used for PNG output.
	Compression png.CompressionLevel
	// Colors is the palette size, used to size GIF palettes.
	Colors int
}

// Open reads and decodes the image at path. "-" reads stdin.
func Open(path string, opts Options) (image.Image, error) {
	var img image.Image
	var err error
	if path == "-" {
		img, err = imaging.Decode(os.Stdin, imaging.AutoOrientation(opts.AutoOrient))
	} else {
		img, err = imaging.Open(path, imaging.AutoOrientation(opts.AutoOrient))
	}
	if err != nil {
		return nil, err
	}
	return resize(img, opts), nil
}

// Decode decodes an image from r.
func Decode(r io.Reader, opts Options) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(opts.AutoOrient))
	if err != nil {
		return nil, err
	}
	return resize(img, opts), nil
}

func resize(img image.Image, opts Options) image.Image {
	if opts.Width == 0 && opts.Height == 0 {
		return img
	}
	// Box sampling is fast and does well when downscaling, the common case.
	return imaging.Resize(img, opts.Width, opts.Height, imaging.Box)
}

// ParseFormat maps a format name or file extension to an output format.
func ParseFormat(name string) (imaging.Format, error) {
	name = strings.ToLower(strings.TrimPrefix(name, "."))
	switch name {
	case "png":
		return imaging.PNG, nil
	case "gif":
		return imaging.GIF, nil
	case "bmp":
		return imaging.BMP, nil
	case "tif", "tiff":
		return imaging.TIFF, nil
	}
	return -1, fmt.Errorf("%w: '%s', only %s are accepted", ErrUnsupportedFormat, name, strings.Join(Formats, ", "))
}

// FormatFromPath picks the output format from a file extension.
func FormatFromPath(path string) (imaging.Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Encode writes img to w. GIF output builds its palette with median cut and
// draws without dithering, so an already reduced image keeps its exact colors.
// GIF has no partial transparency: pixels with alpha below 128 become the
// transparent entry and the rest are written opaque with their RGB unchanged.
func Encode(w io.Writer, img image.Image, f imaging.Format, opts Options) error {
	switch f {
	case imaging.PNG:
		return imaging.Encode(w, img, f, imaging.PNGCompressionLevel(opts.Compression))
	case imaging.GIF:
		n := opts.Colors
		if n < 1 || n > mediancut.MaxPaletteSize {
			n = mediancut.MaxPaletteSize
		}
		flat := binaryAlpha(img)
		q := mediancut.MedianCutQuantizer{
			AddTransparent: true,
			Weighting: func(_ image.Image, x, y int) uint64 {
				if flat.NRGBAAt(x, y).A == 0 {
					return 0
				}
				return 1
			},
		}
		return imaging.Encode(w, flat, f,
			imaging.GIFNumColors(n+1),
			imaging.GIFQuantizer(q),
			imaging.GIFDrawer(draw.Src),
		)
	case imaging.BMP, imaging.TIFF:
		return imaging.Encode(w, img, f)
	}
	return fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
}

// binaryAlpha returns a copy of img where every pixel is either fully
// transparent black or fully opaque.
func binaryAlpha(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		if dst.Pix[i+3] < 128 {
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = 0, 0, 0, 0
		} else {
			dst.Pix[i+3] = 255
		}
	}
	return dst
}
