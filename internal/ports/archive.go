package ports

import "pixery/internal/domain"

// Archive persists generated images on disk, laid out by date and slug.
type Archive interface {
	// Store writes image bytes under date/slug, generates a thumbnail next
	// to it, and returns both paths relative to the archive root.
	Store(date, slug string, image []byte) (imagePath, thumbPath string, err error)

	// StoreReference copies a reference image into the shared references
	// directory, deduplicated by content hash.
	StoreReference(srcPath string) (domain.Reference, error)

	// Remove deletes an archived image and its thumbnail if present.
	Remove(imagePath string) error

	// AbsPath resolves an archive-relative path to an absolute one.
	AbsPath(rel string) string
}
