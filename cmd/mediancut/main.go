// Command mediancut reduces images to a small palette with median cut.
//
// Usage:
//
//	mediancut [global options] reduce -i in.png -o out.png
//	mediancut [global options] palette -i in.png [--steps]
//	mediancut [global options] serve [-l :8080]
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/carbocation/go-mediancut/internal/server"
	"github.com/urfave/cli/v2"
)

// Set by compiler
var (
	version = "v0.1.0"
	commit  = "unknown"
)

func newApp() *cli.App {
	return &cli.App{
		Name:                   "mediancut",
		Usage:                  "reduce images to a small palette using median cut",
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:    "colors",
				Aliases: []string{"n"},
				Value:   16,
				Usage:   "palette size, 1-255",
			},
			&cli.BoolFlag{
				Name:  "coarse",
				Usage: "ignore the low three bits of each channel",
			},
			&cli.BoolFlag{
				Name:  "mode",
				Usage: "use the most common color of each bucket instead of the average",
			},
			&cli.UintFlag{
				Name:    "width",
				Aliases: []string{"x"},
			},
			&cli.UintFlag{
				Name:    "height",
				Aliases: []string{"y"},
			},
			&cli.BoolFlag{
				Name: "no-exif-rotation",
			},
			&cli.StringFlag{
				Name:    "compression",
				Aliases: []string{"c"},
				Value:   "default",
				Usage:   "PNG compression: default, no, speed, size",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "reduce",
				Usage: "reduce images and write them out",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "in",
						Aliases:  []string{"i"},
						Required: true,
					},
					&cli.StringFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Required: true,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "png",
					},
					&cli.BoolFlag{
						Name: "no-overwrite",
					},
				},
				UseShortOptionHandling: true,
				Action:                 reduce,
			},
			{
				Name:  "palette",
				Usage: "print the palette an image reduces to",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "in",
						Aliases:  []string{"i"},
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "steps",
						Usage: "print the partition after every split",
					},
				},
				UseShortOptionHandling: true,
				Action:                 palette,
			},
			{
				Name:  "serve",
				Usage: "serve reduce and palette requests over HTTP",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "listen",
						Aliases: []string{"l"},
						Value:   ":8080",
						EnvVars: []string{"MEDIANCUT_LISTEN"},
					},
					&cli.Int64Flag{
						Name:  "max-bytes",
						Value: server.DefaultMaxBytes,
					},
					&cli.Int64Flag{
						Name:  "max-pixels",
						Usage: "reject uploads whose width*height exceeds this",
						Value: server.DefaultMaxPixels,
					},
				},
				Action: serve,
			},
		},
		Before: preProcess,
		Action: func(c *cli.Context) error {
			return errors.New("no command specified")
		},
	}
}

func main() {
	if len(os.Args) == 2 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println("mediancut", version)
		fmt.Println("Commit:", commit)
		return
	}

	err := newApp().Run(os.Args)
	if err != nil {
		if len(os.Args) == 1 {
			// Just ran the command with no flags
			return
		}
		fmt.Println(err)
		os.Exit(1)
	}
}
