package main

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/carbocation/go-mediancut"
	"github.com/carbocation/go-mediancut/internal/imgio"
	"github.com/carbocation/go-mediancut/internal/server"
	"github.com/carbocation/go-mediancut/internal/swatch"
	"github.com/disintegration/imaging"
	"github.com/urfave/cli/v2"
)

var (
	// reducer is set up from the global flags during pre-processing.
	reducer mediancut.Reducer

	ioOpts imgio.Options
)

// preProcess is automatically called by the app before anything else.
// It's run in the global context.
func preProcess(c *cli.Context) error {
	n := c.Uint("colors")
	if n < 1 || n > mediancut.MaxPaletteSize {
		return fmt.Errorf("colors: %d is out of range, must be 1-%d", n, mediancut.MaxPaletteSize)
	}
	reducer = mediancut.Reducer{
		Size:   int(n),
		Coarse: c.Bool("coarse"),
	}
	if c.Bool("mode") {
		reducer.Aggregation = mediancut.Mode
	}

	ioOpts = imgio.Options{
		AutoOrient: !c.Bool("no-exif-rotation"),
		Width:      int(c.Uint("width")),
		Height:     int(c.Uint("height")),
		Colors:     int(n),
	}

	switch c.String("compression") {
	case "default":
		ioOpts.Compression = png.DefaultCompression
	case "no":
		ioOpts.Compression = png.NoCompression
	case "speed":
		ioOpts.Compression = png.BestSpeed
	case "size":
		ioOpts.Compression = png.BestCompression
	default:
		return fmt.Errorf("invalid compression type '%s'", c.String("compression"))
	}
	return nil
}

// expandInputs resolves glob patterns in the input arguments.
func expandInputs(args []string) ([]string, error) {
	inputs := make([]string, 0, len(args))
	for _, path := range args {
		if !strings.Contains(path, "*") {
			inputs = append(inputs, path)
			continue
		}
		paths, err := filepath.Glob(path)
		if err != nil {
			return nil, fmt.Errorf("bad glob pattern '%s': %w", path, err)
		}
		inputs = append(inputs, paths...)
	}
	if len(inputs) == 0 {
		return nil, errors.New("no input images")
	}
	return inputs, nil
}

// output describes where reduced images are written.
type output struct {
	path   string
	isDir  bool
	format imaging.Format
	flags  int
}

func parseOutput(c *cli.Context, inputs int) (*output, error) {
	out := &output{path: c.String("out")}
	if c.Bool("no-overwrite") {
		out.flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	} else {
		out.flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	var err error
	if fi, statErr := os.Stat(out.path); statErr == nil && fi.IsDir() {
		out.isDir = true
	}
	if out.path == "-" || out.isDir || c.IsSet("format") || filepath.Ext(out.path) == "" {
		out.format, err = imgio.ParseFormat(c.String("format"))
	} else {
		out.format, err = imgio.FormatFromPath(out.path)
	}
	if err != nil {
		return nil, err
	}

	if inputs > 1 && !out.isDir {
		return nil, errors.New("multiple input images are only allowed if the output is an existing directory")
	}
	return out, nil
}

// target returns the file path for input, or "-" for stdout.
func (o *output) target(input string) string {
	if !o.isDir {
		return o.path
	}
	name := "stdin"
	if input != "-" {
		name = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	return filepath.Join(o.path, name+"."+strings.ToLower(o.format.String()))
}

// write encodes res before touching path, so a failed encode leaves any
// existing file as it was.
func (o *output) write(stdout io.Writer, path string, res *reduced) error {
	opts := ioOpts
	opts.Colors = len(res.result.Palette)
	var buf bytes.Buffer
	if err := imgio.Encode(&buf, res.img, o.format, opts); err != nil {
		return fmt.Errorf("error writing %v to '%s': %w", o.format, path, err)
	}
	if path == "-" {
		_, err := buf.WriteTo(stdout)
		return err
	}

	f, err := os.OpenFile(path, o.flags, 0644)
	if err != nil {
		return fmt.Errorf("'%s': %w", path, err)
	}
	if _, err := buf.WriteTo(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("error writing '%s': %w", path, err)
	}
	return f.Close()
}

func reduce(c *cli.Context) error {
	inputs, err := expandInputs(c.StringSlice("in"))
	if err != nil {
		return err
	}
	out, err := parseOutput(c, len(inputs))
	if err != nil {
		return err
	}

	for _, input := range inputs {
		res, err := load(input)
		if err != nil {
			return err
		}
		path := out.target(input)
		if err := out.write(c.App.Writer, path, res); err != nil {
			return err
		}
		if path != "-" {
			log.Printf("%s: wrote %s with %d colors", input, path, len(res.result.Palette))
		}
	}
	return nil
}

func palette(c *cli.Context) error {
	red := reducer
	red.RecordSteps = c.Bool("steps")
	res, err := loadWith(c.String("in"), red)
	if err != nil {
		return err
	}

	w := c.App.Writer
	if red.RecordSteps {
		for i, step := range res.result.Steps {
			fmt.Fprintf(w, "step %d:", i)
			for j, s := range swatch.FromBuckets(step, red.Aggregation) {
				fmt.Fprintf(w, " %s/%s/%d", s.Hex, step[j].Channel, s.Weight)
			}
			fmt.Fprintln(w)
		}
	}
	for _, s := range swatch.FromResult(res.result) {
		fmt.Fprintf(w, "%s %d %d\n", s.Hex, s.Weight, s.Distinct)
	}
	return nil
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := server.New(server.Config{
		MaxBytes:   c.Int64("max-bytes"),
		MaxPixels:  c.Int64("max-pixels"),
		Colors:     reducer.Size,
		AutoOrient: ioOpts.AutoOrient,
	})
	return s.ListenAndServe(ctx, c.String("listen"))
}
