// Package swatch describes the palette of a reduction for display.
package swatch

import (
	"image/color"

	"github.com/carbocation/go-mediancut"
	"github.com/lucasb-eyer/go-colorful"
)

// Swatch is one palette color along with the share of the image it covers.
type Swatch struct {
	Hex string `json:"hex"`
	// Weight is the number of pixels mapped to this color.
	Weight uint64 `json:"weight"`
	// Distinct is the number of source colors mapped to this color.
	Distinct int `json:"distinct"`
}

// Hex formats c as #rrggbb, ignoring alpha.
func Hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return colorful.Color{
		R: float64(r) / 65535,
		G: float64(g) / 65535,
		B: float64(b) / 65535,
	}.Hex()
}

// FromBuckets returns one swatch per bucket, in bucket order.
func FromBuckets(buckets []mediancut.Bucket, agg mediancut.AggregationType) []Swatch {
	out := make([]Swatch, 0, len(buckets))
	for _, b := range buckets {
		c := b.Average()
		if agg == mediancut.Mode {
			c = b.Mode()
		}
		out = append(out, Swatch{Hex: Hex(c), Weight: b.Total, Distinct: len(b.Colors)})
	}
	return out
}

// FromResult describes the final palette of res.
func FromResult(res *mediancut.Result) []Swatch {
	out := make([]Swatch, 0, len(res.Buckets))
	for i, b := range res.Buckets {
		out = append(out, Swatch{Hex: Hex(res.Palette[i]), Weight: b.Total, Distinct: len(b.Colors)})
	}
	return out
}
