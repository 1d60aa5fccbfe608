package bench

import (
	"image"
	"image/color"
	"image/color/palette"
	"testing"

	"github.com/carbocation/go-mediancut"
	"github.com/ericpauley/go-quantize/quantize"
	"github.com/esimov/colorquant"
	"github.com/soniakeys/quant/median"
)

const numColors = 16

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 512, 512))
	for y := 0; y < 512; y++ {
		for x := 0; x < 512; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x / 2), uint8(y / 2), uint8((x ^ y) & 0xFF), 255})
		}
	}
	return img
}

func BenchmarkMedianCut(b *testing.B) {
	img := testImage()
	b.SetBytes(int64(len(img.Pix)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := mediancut.Reduce(img.Pix, numColors); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMedianCutQuantizer(b *testing.B) {
	img := testImage()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		mediancut.MedianCutQuantizer{}.Quantize(make(color.Palette, 0, numColors), img)
	}
}

func BenchmarkGoQuantize(b *testing.B) {
	img := testImage()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		quantize.MedianCutQuantizer{}.Quantize(make(color.Palette, 0, numColors), img)
	}
}

func BenchmarkSoniakeysMedian(b *testing.B) {
	img := testImage()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		median.Quantizer(numColors).Quantize(make(color.Palette, 0, numColors), img)
	}
}

func BenchmarkColorquant(b *testing.B) {
	img := testImage()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dst := image.NewPaletted(img.Bounds(), palette.WebSafe)
		colorquant.NoDither.Quantize(img, dst, numColors, false, true)
	}
}
