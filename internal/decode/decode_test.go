package decode

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestIsImage(t *testing.T) {
	testCases := []struct {
		name     string
		expected bool
	}{
		{"a.jpg", true},
		{"a.JPEG", true},
		{"b.png", true},
		{"c.webp", true},
		{"d.HEIC", true},
		{"notes.txt", false},
		{"noext", false},
		{".png", true},
	}
	for _, tc := range testCases {
		if got := IsImage(tc.name); got != tc.expected {
			t.Errorf("IsImage(%q): expected %v, got %v", tc.name, tc.expected, got)
		}
	}
}

func TestDecodeAndConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.png")
	writePNG(t, path, 40, 30)

	d := New()
	img, err := d.Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 30 {
		t.Errorf("Decode size: expected 40x30, got %v", img.Bounds().Size())
	}
	cfg, err := d.DecodeConfig(path)
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.Width != 40 || cfg.Height != 30 {
		t.Errorf("DecodeConfig: expected 40x30, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestDecodeGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fake.jpg")
	os.WriteFile(path, []byte("not an image"), 0o644)

	_, err := New().Decode(path)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("Decode(garbage): expected ErrUnsupported, got %v", err)
	}
	if _, err := New().Decode(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("Decode(missing): expected error")
	}
}
