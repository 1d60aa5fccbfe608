package mediancut

import "image/color"

// AggregationType specifies how a bucket is reduced to a single color
type AggregationType int

const (
	// Mean - weighted average of all values
	Mean AggregationType = iota
	// Mode - pick the highest weight value
	Mode
)

func (a AggregationType) pick(b Bucket) color.RGBA {
	if a == Mode {
		return b.Mode()
	}
	return b.Average()
}

// PaletteMap maps the Key of every distinct source color to its palette color.
type PaletteMap map[uint32]color.RGBA

// NewPaletteMap assigns every color of every bucket the average of its bucket.
func NewPaletteMap(buckets []Bucket) PaletteMap {
	m, _ := buildPalette(buckets, Mean)
	return m
}

// buildPalette returns the lookup map and the palette, one entry per bucket
// in bucket order.
func buildPalette(buckets []Bucket, agg AggregationType) (PaletteMap, color.Palette) {
	m := make(PaletteMap)
	p := make(color.Palette, 0, len(buckets))
	for _, b := range buckets {
		c := agg.pick(b)
		p = append(p, c)
		for _, wc := range b.Colors {
			m[wc.Key()] = c
		}
	}
	return m, p
}

// Remap returns a copy of pix with every pixel's RGB replaced by its
// palette color. Alpha is copied unchanged.
func (m PaletteMap) Remap(pix []byte) ([]byte, error) {
	if err := checkPixels(pix); err != nil {
		return nil, err
	}
	return m.remap(pix, 0xFF), nil
}

// remap panics with *InvariantError if a pixel has no entry.
func (m PaletteMap) remap(pix []byte, mask uint8) []byte {
	out := make([]byte, len(pix))
	for i := 0; i+3 < len(pix); i += 4 {
		k := Key(pix[i]&mask, pix[i+1]&mask, pix[i+2]&mask)
		c, ok := m[k]
		if !ok {
			panic(&InvariantError{Key: k})
		}
		out[i] = c.R
		out[i+1] = c.G
		out[i+2] = c.B
		out[i+3] = pix[i+3]
	}
	return out
}
