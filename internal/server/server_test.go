package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 7), uint8(y * 11), uint8(x + y), 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func countColors(img image.Image) int {
	seen := make(map[color.NRGBA]bool)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			seen[color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)] = true
		}
	}
	return len(seen)
}

func do(t *testing.T, s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestReduce_PNG(t *testing.T) {
	s := New(Config{})
	rec := do(t, s, "POST", "/reduce?colors=4", testPNG(t, 30, 20))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if n := rec.Header().Get("X-Palette-Size"); n != "4" {
		t.Errorf("palette size header = %q, want 4", n)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 30 || b.Dy() != 20 {
		t.Errorf("bounds = %v", b)
	}
	if n := countColors(img); n > 4 {
		t.Errorf("%d colors, want at most 4", n)
	}
}

func TestReduce_GIF(t *testing.T) {
	s := New(Config{Colors: 6})
	rec := do(t, s, "POST", "/reduce?format=gif&coarse=true", testPNG(t, 16, 16))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	img, err := gif.Decode(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if n := countColors(img); n > 6 {
		t.Errorf("%d colors, want at most 6", n)
	}
}

func TestPalette(t *testing.T) {
	s := New(Config{})
	rec := do(t, s, "POST", "/palette?colors=3", testPNG(t, 10, 10))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp paletteResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Colors) != 3 {
		t.Fatalf("got %d colors, want 3", len(resp.Colors))
	}
	var weight uint64
	for _, c := range resp.Colors {
		weight += c.Weight
		if len(c.Hex) != 7 || c.Hex[0] != '#' {
			t.Errorf("bad hex %q", c.Hex)
		}
	}
	if weight != 100 {
		t.Errorf("total weight = %d, want 100", weight)
	}
}

func TestErrors(t *testing.T) {
	img := testPNG(t, 4, 4)
	tests := []struct {
		name   string
		method string
		target string
		body   []byte
		want   int
	}{
		{"zero colors", "POST", "/reduce?colors=0", img, http.StatusBadRequest},
		{"too many colors", "POST", "/palette?colors=256", img, http.StatusBadRequest},
		{"colors not a number", "POST", "/reduce?colors=lots", img, http.StatusBadRequest},
		{"bad coarse", "POST", "/reduce?coarse=maybe", img, http.StatusBadRequest},
		{"jpeg output", "POST", "/reduce?format=jpeg", img, http.StatusBadRequest},
		{"not an image", "POST", "/reduce", []byte("hello"), http.StatusBadRequest},
		{"wrong method", "GET", "/reduce", nil, http.StatusMethodNotAllowed},
		{"unknown path", "GET", "/nope", nil, http.StatusNotFound},
	}
	s := New(Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, s, tt.method, tt.target, tt.body); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestBodyLimit(t *testing.T) {
	s := New(Config{MaxBytes: 64})
	rec := do(t, s, "POST", "/reduce", testPNG(t, 50, 50))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestPixelLimit(t *testing.T) {
	s := New(Config{MaxPixels: 100})
	if rec := do(t, s, "POST", "/palette", testPNG(t, 50, 50)); rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
	if rec := do(t, s, "POST", "/palette", testPNG(t, 10, 10)); rec.Code != http.StatusOK {
		t.Errorf("status = %d at the limit, want 200", rec.Code)
	}
}

func TestHTTPServer_Timeouts(t *testing.T) {
	srv := New(Config{}).httpServer("127.0.0.1:0")
	if srv.ReadHeaderTimeout <= 0 {
		t.Errorf("ReadHeaderTimeout = %v, want a positive timeout", srv.ReadHeaderTimeout)
	}
	if srv.Handler == nil {
		t.Error("server has no handler")
	}
}

func TestHealthz(t *testing.T) {
	rec := do(t, New(Config{}), "GET", "/healthz", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("got %d %q", rec.Code, rec.Body)
	}
}

func TestListenAndServe_Shutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(Config{}).ListenAndServe(ctx, "127.0.0.1:0")
	}()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
