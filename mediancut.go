package mediancut

import (
	"image/color"
	"slices"
)

// MaxPaletteSize is the largest palette Reduce will build.
const MaxPaletteSize = 255

// Partition performs median cut on colors until it holds size buckets or no
// bucket can be split further. colors must be sorted by Key (as returned by
// CountColors); Partition takes ownership of the slice.
func Partition(colors []WeightedColor, size int) []Bucket {
	return partition(colors, size, nil)
}

// partition calls step with the initial partition and after every split.
func partition(colors []WeightedColor, size int, step func([]Bucket)) []Bucket {
	if len(colors) == 0 {
		return nil
	}
	buckets := []Bucket{NewBucket(colors)}
	if step != nil {
		step(buckets)
	}
	for len(buckets)+1 <= size {
		i := largest(buckets)
		if i < 0 {
			break
		}
		lo, hi := buckets[i].split()
		buckets = slices.Replace(buckets, i, i+1, lo, hi)
		if step != nil {
			step(buckets)
		}
	}
	return buckets
}

// largest returns the index of the heaviest bucket with more than one color,
// the first one on a tie, or -1 if every bucket is terminal.
func largest(buckets []Bucket) int {
	idx := -1
	var most uint64
	for i, b := range buckets {
		if len(b.Colors) > 1 && b.Total > most {
			idx, most = i, b.Total
		}
	}
	if idx >= 0 && buckets[idx].Terminal() {
		return -1
	}
	return idx
}

// Reduce remaps pix, a buffer of tightly packed RGBA pixels, to a palette of
// at most size colors. Alpha is preserved. An empty buffer yields an empty
// buffer.
func Reduce(pix []byte, size int) ([]byte, error) {
	res, err := Reducer{Size: size}.Reduce(pix)
	if err != nil {
		return nil, err
	}
	return res.Pix, nil
}

// Reducer runs median cut quantization with optional behavior.
type Reducer struct {
	// Size is the maximum number of palette colors, 1..MaxPaletteSize.
	Size int
	// Coarse drops the low three bits of every channel before counting, so
	// near-identical colors are merged and the output carries masked values.
	Coarse bool
	// The type of aggregation to be used to find final colors
	Aggregation AggregationType
	// Whether to keep a copy of the partition after every split
	RecordSteps bool
}

// Result holds the output of a Reducer along with its intermediate state.
type Result struct {
	Pix []byte
	// Palette has one color per bucket, in bucket order.
	Palette color.Palette
	Buckets []Bucket
	// Steps[0] is the initial partition and Steps[k] the partition after the
	// k-th split. Only set when RecordSteps is.
	Steps [][]Bucket
}

func (r Reducer) mask() uint8 {
	if r.Coarse {
		return coarseMask
	}
	return 0xFF
}

// Reduce quantizes pix. See the package function Reduce.
func (r Reducer) Reduce(pix []byte) (*Result, error) {
	if err := checkSize(r.Size); err != nil {
		return nil, err
	}
	if err := checkPixels(pix); err != nil {
		return nil, err
	}

	res := &Result{}
	var step func([]Bucket)
	if r.RecordSteps {
		step = func(b []Bucket) {
			res.Steps = append(res.Steps, slices.Clone(b))
		}
	}

	mask := r.mask()
	res.Buckets = partition(countColors(pix, mask), r.Size, step)
	m, p := buildPalette(res.Buckets, r.Aggregation)
	res.Palette = p
	res.Pix = m.remap(pix, mask)
	return res, nil
}
