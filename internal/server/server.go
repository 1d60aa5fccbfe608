// Package server exposes median cut reduction over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/carbocation/go-mediancut"
	"github.com/carbocation/go-mediancut/internal/imgio"
	"github.com/carbocation/go-mediancut/internal/swatch"
	"github.com/disintegration/imaging"
	"github.com/gorilla/mux"
)

var (
	infolog  = log.New(os.Stdout, "[info] ", log.Ldate|log.Ltime)
	reqlog   = log.New(os.Stdout, "[req] ", log.Ldate|log.Ltime)
	errorlog = log.New(os.Stderr, "[error] ", log.Lshortfile|log.Ldate|log.Ltime)
)

const (
	// DefaultMaxBytes caps request bodies when Config.MaxBytes is unset.
	DefaultMaxBytes = 32 << 20
	// DefaultMaxPixels caps the decoded width*height when Config.MaxPixels
	// is unset. A small compressed upload can declare a huge canvas.
	DefaultMaxPixels = 64 << 20

	readHeaderTimeout = 10 * time.Second
)

var contentTypes = map[imaging.Format]string{
	imaging.PNG:  "image/png",
	imaging.GIF:  "image/gif",
	imaging.BMP:  "image/bmp",
	imaging.TIFF: "image/tiff",
}

// Config holds server settings.
type Config struct {
	// MaxBytes limits the size of uploaded images.
	MaxBytes int64
	// MaxPixels limits width*height as declared in the image header.
	MaxPixels int64
	// Colors is the palette size used when a request does not set one.
	Colors int
	// AutoOrient applies EXIF orientation to uploads.
	AutoOrient bool
}

// Server routes reduce and palette requests.
type Server struct {
	cfg    Config
	router *mux.Router
}

// New returns a Server with its routes installed.
func New(cfg Config) *Server {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = DefaultMaxPixels
	}
	if cfg.Colors == 0 {
		cfg.Colors = 16
	}
	s := &Server{cfg: cfg, router: mux.NewRouter()}

	h := s.router
	h.Use(logger)
	h.NotFoundHandler = logger(returncode(http.StatusNotFound))
	h.MethodNotAllowedHandler = logger(returncode(http.StatusMethodNotAllowed))

	h.Path("/reduce").Methods("POST").HandlerFunc(s.reduce)
	h.Path("/palette").Methods("POST").HandlerFunc(s.palette)
	h.Path("/healthz").Methods("GET").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := s.httpServer(addr)

	errc := make(chan error, 1)
	go func() {
		infolog.Printf("listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	infolog.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := <-errc; err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) httpServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// reducer builds a Reducer from the colors and coarse query parameters.
func (s *Server) reducer(r *http.Request) (mediancut.Reducer, error) {
	q := r.URL.Query()
	red := mediancut.Reducer{Size: s.cfg.Colors}
	if v := q.Get("colors"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return red, fmt.Errorf("colors: %w", err)
		}
		red.Size = n
	}
	if v := q.Get("coarse"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return red, fmt.Errorf("coarse: %w", err)
		}
		red.Coarse = b
	}
	if q.Get("aggregation") == "mode" {
		red.Aggregation = mediancut.Mode
	}
	return red, nil
}

// load reads and reduces the uploaded image, writing an error response and
// returning false on failure.
func (s *Server) load(w http.ResponseWriter, r *http.Request) (*image.NRGBA, *mediancut.Result, bool) {
	red, err := s.reducer(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, nil, false
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			http.Error(w, fmt.Sprintf("image larger than %d bytes", mbe.Limit), http.StatusRequestEntityTooLarge)
			return nil, nil, false
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, nil, false
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		http.Error(w, fmt.Sprintf("decoding image: %v", err), http.StatusBadRequest)
		return nil, nil, false
	}
	if n := int64(cfg.Width) * int64(cfg.Height); n > s.cfg.MaxPixels {
		http.Error(w, fmt.Sprintf("image has %d pixels, limit is %d", n, s.cfg.MaxPixels), http.StatusRequestEntityTooLarge)
		return nil, nil, false
	}

	img, err := imgio.Decode(bytes.NewReader(body), imgio.Options{AutoOrient: s.cfg.AutoOrient})
	if err != nil {
		http.Error(w, fmt.Sprintf("decoding image: %v", err), http.StatusBadRequest)
		return nil, nil, false
	}
	out, res, err := red.ReduceImage(img)
	if err != nil {
		// Only bad parameters reach here; the decoded image is always whole pixels.
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, nil, false
	}
	return out, res, true
}

// reduce handler returns the uploaded image reduced to ?colors=N colors
func (s *Server) reduce(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "png"
	}
	f, err := imgio.ParseFormat(format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out, res, ok := s.load(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := imgio.Encode(&buf, out, f, imgio.Options{Colors: len(res.Palette)}); err != nil {
		errorlog.Printf("encoding %v: %v", f, err)
		http.Error(w, "encoding failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypes[f])
	w.Header().Set("X-Palette-Size", strconv.Itoa(len(res.Palette)))
	w.Write(buf.Bytes())
}

type paletteResponse struct {
	Colors []swatch.Swatch `json:"colors"`
}

// palette handler returns the palette the uploaded image reduces to
func (s *Server) palette(w http.ResponseWriter, r *http.Request) {
	_, res, ok := s.load(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(paletteResponse{Colors: swatch.FromResult(res)}); err != nil {
		errorlog.Printf("writing palette: %v", err)
	}
}
