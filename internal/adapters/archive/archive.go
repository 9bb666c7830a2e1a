// Package archive stores generated images on disk: generations laid out by
// date, reference images deduplicated by content hash.
package archive

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"pixery/internal/domain"
	"pixery/internal/ports"
)

// ThumbnailSize is the longest thumbnail edge in pixels (400px for Retina
// display support).
const ThumbnailSize = 400

// Archive implements ports.Archive rooted at a single directory
type Archive struct {
	root string
}

var _ ports.Archive = (*Archive)(nil)

// New creates an archive rooted at dir, creating the layout if needed.
func New(dir string) (*Archive, error) {
	if len(dir) > 0 && dir[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, dir[1:])
	}
	for _, sub := range []string{"generations", "references"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}
	return &Archive{root: dir}, nil
}

// Root returns the archive root directory.
func (a *Archive) Root() string {
	return a.root
}

// AbsPath resolves an archive-relative path to an absolute one.
func (a *Archive) AbsPath(rel string) string {
	return filepath.Join(a.root, rel)
}

// Store writes image bytes under generations/date/slug with a format-matched
// extension, generates a thumbnail next to it, and returns both paths
// relative to the root. Filename collisions get a numeric suffix.
func (a *Archive) Store(date, slug string, data []byte) (string, string, error) {
	dir := filepath.Join(a.root, "generations", date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create date directory: %w", err)
	}

	ext := sniffExtension(data)
	name := slug + "." + ext
	for counter := 1; exists(filepath.Join(dir, name)); counter++ {
		name = fmt.Sprintf("%s-%d.%s", slug, counter, ext)
	}
	absImage := filepath.Join(dir, name)

	if err := os.WriteFile(absImage, data, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write image: %w", err)
	}

	relImage := filepath.Join("generations", date, name)
	relThumb, err := a.writeThumbnail(absImage, data)
	if err != nil {
		// The full image is safely on disk; the UI falls back to it when
		// the thumbnail is missing.
		return relImage, "", nil
	}
	return relImage, relThumb, nil
}

func (a *Archive) writeThumbnail(absImage string, data []byte) (string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	thumb := scaleDown(src, ThumbnailSize)

	stem := strings.TrimSuffix(absImage, filepath.Ext(absImage))
	absThumb := stem + ".thumb.jpg"
	f, err := os.Create(absThumb)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := jpeg.Encode(f, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return "", err
	}
	rel, err := filepath.Rel(a.root, absThumb)
	if err != nil {
		return "", err
	}
	return rel, nil
}

// StoreReference copies a reference image into references/, named by the
// SHA-256 of its content so identical files share one copy.
func (a *Archive) StoreReference(srcPath string) (domain.Reference, error) {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return domain.Reference{}, fmt.Errorf("failed to read reference: %w", err)
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	rel := filepath.Join("references", hash+"."+sniffExtension(data))
	abs := filepath.Join(a.root, rel)

	if !exists(abs) {
		if err := os.WriteFile(abs, data, 0o644); err != nil {
			return domain.Reference{}, fmt.Errorf("failed to store reference: %w", err)
		}
	}
	return domain.Reference{Hash: hash, Path: rel}, nil
}

// Remove deletes an archived image and its thumbnail if present.
func (a *Archive) Remove(imagePath string) error {
	abs := a.AbsPath(imagePath)
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	stem := strings.TrimSuffix(abs, filepath.Ext(abs))
	if err := os.Remove(stem + ".thumb.jpg"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove thumbnail: %w", err)
	}
	return nil
}

// sniffExtension picks a file extension from the image magic bytes,
// defaulting to png.
func sniffExtension(data []byte) string {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "jpg"
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "webp"
	default:
		return "png"
	}
}

// scaleDown resizes src so its longest edge is at most max pixels, keeping
// aspect ratio. Images already small enough pass through.
func scaleDown(src image.Image, max int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= max && h <= max {
		return src
	}
	var tw, th int
	if w >= h {
		tw = max
		th = h * max / w
	} else {
		th = max
		tw = w * max / h
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	for y := 0; y < th; y++ {
		sy := b.Min.Y + y*h/th
		for x := 0; x < tw; x++ {
			sx := b.Min.X + x*w/tw
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
