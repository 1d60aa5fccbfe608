package mediancut

import "sort"

// coarseMask drops the three low bits of a channel in coarse mode.
const coarseMask uint8 = 0xF8

// WeightedColor is one distinct RGB value and the number of pixels sharing it.
type WeightedColor struct {
	R, G, B uint8
	Weight  uint64
}

// Key returns the 24-bit lookup key of an RGB triple: R | G<<8 | B<<16.
func Key(r, g, b uint8) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16
}

// Key returns the lookup key of c.
func (c WeightedColor) Key() uint32 {
	return Key(c.R, c.G, c.B)
}

func (c WeightedColor) value(ch Channel) uint8 {
	switch ch {
	case Red:
		return c.R
	case Green:
		return c.G
	default:
		return c.B
	}
}

// CountColors returns the distinct colors of pix, an RGBA buffer, each
// weighted by the number of pixels using it. Alpha is ignored. The result is
// ordered by ascending Key so that partitioning is reproducible.
func CountColors(pix []byte) ([]WeightedColor, error) {
	if err := checkPixels(pix); err != nil {
		return nil, err
	}
	return countColors(pix, 0xFF), nil
}

func countColors(pix []byte, mask uint8) []WeightedColor {
	counts := make(map[uint32]uint64)
	for i := 0; i+3 < len(pix); i += 4 {
		counts[Key(pix[i]&mask, pix[i+1]&mask, pix[i+2]&mask)]++
	}
	return sortedColors(counts)
}

// sortedColors flattens a key to weight map into a slice ordered by Key.
func sortedColors(counts map[uint32]uint64) []WeightedColor {
	colors := make([]WeightedColor, 0, len(counts))
	for k, n := range counts {
		colors = append(colors, WeightedColor{
			R:      uint8(k),
			G:      uint8(k >> 8),
			B:      uint8(k >> 16),
			Weight: n,
		})
	}
	sort.Slice(colors, func(i, j int) bool {
		return colors[i].Key() < colors[j].Key()
	})
	return colors
}
