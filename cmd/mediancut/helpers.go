package main

import (
	"fmt"
	"image"

	"github.com/carbocation/go-mediancut"
	"github.com/carbocation/go-mediancut/internal/imgio"
)

type reduced struct {
	img    *image.NRGBA
	result *mediancut.Result
}

// load opens an input image and reduces it with the global settings.
func load(path string) (*reduced, error) {
	return loadWith(path, reducer)
}

func loadWith(path string, red mediancut.Reducer) (*reduced, error) {
	img, err := imgio.Open(path, ioOpts)
	if err != nil {
		return nil, fmt.Errorf("error loading '%s': %w", path, err)
	}
	out, res, err := red.ReduceImage(img)
	if err != nil {
		return nil, fmt.Errorf("'%s': %w", path, err)
	}
	return &reduced{img: out, result: res}, nil
}
