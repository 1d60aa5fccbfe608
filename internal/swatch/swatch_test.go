package swatch

import (
	"image/color"
	"testing"

	"github.com/carbocation/go-mediancut"
)

func TestHex(t *testing.T) {
	tests := []struct {
		c    color.Color
		want string
	}{
		{color.RGBA{0, 0, 0, 255}, "#000000"},
		{color.RGBA{255, 255, 255, 255}, "#ffffff"},
		{color.RGBA{128, 64, 64, 255}, "#804040"},
		{color.NRGBA{0x12, 0x34, 0x56, 255}, "#123456"},
	}
	for _, tt := range tests {
		if got := Hex(tt.c); got != tt.want {
			t.Errorf("Hex(%v) = %s, want %s", tt.c, got, tt.want)
		}
	}
}

func TestFromResult(t *testing.T) {
	pix := []byte{
		255, 0, 0, 255,
		255, 0, 0, 255,
		0, 255, 0, 255,
		0, 0, 255, 255,
	}
	res, err := mediancut.Reducer{Size: 2, RecordSteps: true}.Reduce(pix)
	if err != nil {
		t.Fatal(err)
	}
	got := FromResult(res)
	want := []Swatch{
		{"#008080", 2, 2},
		{"#ff0000", 2, 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("swatch %d = %v, want %v", i, got[i], want[i])
		}
	}

	first := FromBuckets(res.Steps[0], mediancut.Mean)
	if len(first) != 1 || first[0].Hex != "#804040" || first[0].Weight != 4 {
		t.Errorf("initial step = %v", first)
	}
	if mode := FromBuckets(res.Steps[0], mediancut.Mode); mode[0].Hex != "#ff0000" {
		t.Errorf("mode swatch = %v", mode)
	}
}
