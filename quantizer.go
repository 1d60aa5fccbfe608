package mediancut

import (
	"image"
	"image/color"
	"image/draw"
)

// MedianCutQuantizer implements the go draw.Quantizer interface using the Median Cut method
type MedianCutQuantizer struct {
	// The type of aggregation to be used to find final colors
	Aggregation AggregationType
	// Whether to mask the low bits of each channel before counting
	Coarse bool
	// Whether to create a transparent entry
	AddTransparent bool
	// Weighting, when set, replaces the pixel count of each color with the
	// sum of Weighting over the pixels using it. Colors whose total is zero
	// are left out of the palette.
	Weighting func(image.Image, int, int) uint64
}

// Quantize quantizes an image to a palette and returns the palette. At most
// min(cap(p)-len(p), MaxPaletteSize) colors are appended.
func (q MedianCutQuantizer) Quantize(p color.Palette, m image.Image) color.Palette {
	numColors := cap(p) - len(p)
	addTransparent := q.AddTransparent
	if addTransparent {
		for _, c := range p {
			if _, _, _, a := c.RGBA(); a == 0 {
				addTransparent = false
			}
		}
		if addTransparent {
			numColors--
		}
	}
	if numColors > MaxPaletteSize {
		numColors = MaxPaletteSize
	}
	if numColors > 0 {
		buckets := Partition(q.count(m), numColors)
		_, colors := buildPalette(buckets, q.Aggregation)
		p = append(p, colors...)
	}
	if addTransparent {
		p = append(p, color.RGBA{0, 0, 0, 0})
	}
	return p
}

var _ draw.Quantizer = MedianCutQuantizer{}

// count returns the weighted distinct colors of m, ordered by Key.
func (q MedianCutQuantizer) count(m image.Image) []WeightedColor {
	mask := Reducer{Coarse: q.Coarse}.mask()
	src := toNRGBA(m)
	if q.Weighting == nil {
		return countColors(src.Pix, mask)
	}

	b := src.Rect
	counts := make(map[uint32]uint64)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			w := q.Weighting(m, x, y)
			if w == 0 {
				continue
			}
			i := src.PixOffset(x, y)
			counts[Key(src.Pix[i]&mask, src.Pix[i+1]&mask, src.Pix[i+2]&mask)] += w
		}
	}
	return sortedColors(counts)
}

// ReduceImage returns a copy of m reduced to at most size colors.
func ReduceImage(m image.Image, size int) (*image.NRGBA, error) {
	img, _, err := Reducer{Size: size}.ReduceImage(m)
	return img, err
}

// ReduceImage quantizes m. The returned image has the bounds of m.
func (r Reducer) ReduceImage(m image.Image) (*image.NRGBA, *Result, error) {
	src := toNRGBA(m)
	res, err := r.Reduce(src.Pix)
	if err != nil {
		return nil, nil, err
	}
	return &image.NRGBA{Pix: res.Pix, Stride: src.Stride, Rect: src.Rect}, res, nil
}

// toNRGBA returns m as non-premultiplied RGBA with no row padding, copying
// only when m is not already in that form.
func toNRGBA(m image.Image) *image.NRGBA {
	b := m.Bounds()
	if n, ok := m.(*image.NRGBA); ok && n.Stride == 4*b.Dx() && len(n.Pix) == 4*b.Dx()*b.Dy() {
		return n
	}
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, m, b.Min, draw.Src)
	return dst
}
