package archive

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestStoreWritesImageAndThumbnail(t *testing.T) {
	a, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	imagePath, thumbPath, err := a.Store("2026-08-28", "neon-city", testPNG(t, 800, 600))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	if imagePath != filepath.Join("generations", "2026-08-28", "neon-city.png") {
		t.Errorf("image path = %q, want date/slug layout", imagePath)
	}
	if _, err := os.Stat(a.AbsPath(imagePath)); err != nil {
		t.Errorf("stored image missing: %v", err)
	}
	if _, err := os.Stat(a.AbsPath(thumbPath)); err != nil {
		t.Errorf("thumbnail missing: %v", err)
	}

	// Thumbnail must be scaled down to the target edge.
	f, err := os.Open(a.AbsPath(thumbPath))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("failed to decode thumbnail: %v", err)
	}
	if cfg.Width != ThumbnailSize || cfg.Height != 300 {
		t.Errorf("thumbnail = %dx%d, want %dx300", cfg.Width, cfg.Height, ThumbnailSize)
	}
}

func TestStoreAvoidsCollisions(t *testing.T) {
	a, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := testPNG(t, 10, 10)

	first, _, err := a.Store("2026-08-28", "dup", data)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	second, _, err := a.Store("2026-08-28", "dup", data)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if first == second {
		t.Errorf("colliding slugs produced the same path %q", first)
	}
	if filepath.Base(second) != "dup-1.png" {
		t.Errorf("collision name = %q, want dup-1.png", filepath.Base(second))
	}
}

func TestStoreReferenceDedupsByContent(t *testing.T) {
	a, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	src := filepath.Join(t.TempDir(), "ref.png")
	if err := os.WriteFile(src, testPNG(t, 20, 20), 0o644); err != nil {
		t.Fatal(err)
	}

	ref1, err := a.StoreReference(src)
	if err != nil {
		t.Fatalf("StoreReference: %v", err)
	}
	ref2, err := a.StoreReference(src)
	if err != nil {
		t.Fatalf("StoreReference: %v", err)
	}
	if ref1.Hash != ref2.Hash || ref1.Path != ref2.Path {
		t.Errorf("identical content produced different refs: %+v vs %+v", ref1, ref2)
	}
	if _, err := os.Stat(a.AbsPath(ref1.Path)); err != nil {
		t.Errorf("stored reference missing: %v", err)
	}
}

func TestRemoveDeletesImageAndThumbnail(t *testing.T) {
	a, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	imagePath, thumbPath, err := a.Store("2026-08-28", "gone", testPNG(t, 500, 500))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	if err := a.Remove(imagePath); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(a.AbsPath(imagePath)); !os.IsNotExist(err) {
		t.Error("image still on disk after Remove")
	}
	if _, err := os.Stat(a.AbsPath(thumbPath)); !os.IsNotExist(err) {
		t.Error("thumbnail still on disk after Remove")
	}

	// Removing twice is harmless.
	if err := a.Remove(imagePath); err != nil {
		t.Errorf("second Remove: %v", err)
	}
}
