// Package mediancut reduces RGBA images to a small palette using the median
// cut method and remaps every pixel to its palette color, preserving alpha.
//
// Distinct colors are counted and weighted by how many pixels use them, then
// the heaviest bucket of colors is repeatedly split at the median of its
// distinct colors along the channel with the greatest range (red and green
// ranges count 1.2 times as much as blue). Each final bucket contributes the
// weighted average of its colors to the palette.
//
// Basic usage:
//
//	out, err := mediancut.Reduce(pix, 16)
//
// where pix holds tightly packed R,G,B,A bytes. The result is deterministic:
// the same input and size always produce the same bytes.
//
// MedianCutQuantizer plugs the same algorithm into image/gif and other
// users of draw.Quantizer.
package mediancut
