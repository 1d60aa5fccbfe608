package mediancut

import (
	"image/color"
	"math"
	"sort"
)

// Channel identifies one of the RGB axes.
type Channel uint8

// Color axis constants
const (
	Red Channel = iota
	Green
	Blue
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "R"
	case Green:
		return "G"
	case Blue:
		return "B"
	}
	return "?"
}

// channelWeights scales each channel's range when picking the split axis.
// The eye is more sensitive to red and green variation than to blue.
var channelWeights = [3]float64{1.2, 1.2, 1.0}

// Bucket is a group of distinct colors that will share one palette entry.
type Bucket struct {
	// Colors is sorted ascending by Channel.
	Colors []WeightedColor
	// Total is the sum of Weight over Colors.
	Total uint64
	// Channel is the axis of greatest weighted range.
	Channel Channel
	// Min and Max hold per-channel bounds, indexed by Channel.
	Min, Max [3]uint8
}

type constraint struct {
	min uint8
	max uint8
}

func (c *constraint) update(v uint8) {
	if v < c.min {
		c.min = v
	}
	if v > c.max {
		c.max = v
	}
}

func (c constraint) span() float64 {
	return float64(c.max - c.min)
}

// NewBucket computes the statistics of colors and sorts it in place along
// the selected channel. The bucket takes ownership of the slice.
func NewBucket(colors []WeightedColor) Bucket {
	b := Bucket{Colors: colors}
	if len(colors) == 0 {
		return b
	}

	cs := [3]constraint{{min: 255}, {min: 255}, {min: 255}}
	for _, c := range colors {
		cs[Red].update(c.R)
		cs[Green].update(c.G)
		cs[Blue].update(c.B)
		b.Total += c.Weight
	}
	for i := range cs {
		b.Min[i], b.Max[i] = cs[i].min, cs[i].max
	}

	dr := cs[Red].span() * channelWeights[Red]
	dg := cs[Green].span() * channelWeights[Green]
	db := cs[Blue].span() * channelWeights[Blue]
	switch {
	case dr >= dg && dr >= db:
		b.Channel = Red
	case dg >= db:
		b.Channel = Green
	default:
		b.Channel = Blue
	}

	ch := b.Channel
	sort.SliceStable(colors, func(i, j int) bool {
		return colors[i].value(ch) < colors[j].value(ch)
	})
	return b
}

// Terminal reports whether b can no longer be split.
func (b Bucket) Terminal() bool {
	return len(b.Colors) <= 1 || b.Total <= 1
}

// split cuts b at the upper median of its distinct colors. Both halves are
// copies, so b itself is left untouched.
func (b Bucket) split() (Bucket, Bucket) {
	median := (len(b.Colors) + 1) / 2
	lo := make([]WeightedColor, median)
	hi := make([]WeightedColor, len(b.Colors)-median)
	copy(lo, b.Colors[:median])
	copy(hi, b.Colors[median:])
	return NewBucket(lo), NewBucket(hi)
}

// Average returns the weight-averaged color of b, each channel rounded to
// the nearest integer with ties away from zero.
func (b Bucket) Average() color.RGBA {
	var r, g, bl, n uint64
	for _, c := range b.Colors {
		r += uint64(c.R) * c.Weight
		g += uint64(c.G) * c.Weight
		bl += uint64(c.B) * c.Weight
		n += c.Weight
	}
	if n == 0 {
		return color.RGBA{A: 255}
	}
	return color.RGBA{roundDiv(r, n), roundDiv(g, n), roundDiv(bl, n), 255}
}

func roundDiv(sum, n uint64) uint8 {
	return uint8(math.Round(float64(sum) / float64(n)))
}

// Mode returns the most used color of b. The first one wins a tie.
func (b Bucket) Mode() color.RGBA {
	var best WeightedColor
	for _, c := range b.Colors {
		if c.Weight > best.Weight {
			best = c
		}
	}
	return color.RGBA{best.R, best.G, best.B, 255}
}
