package ports

import (
	"context"

	"pixery/internal/domain"
)

// Gallery is the authoritative record store. Ordering and pagination
// semantics belong to the implementation; callers never re-sort results.
//
// Mutations are fire-and-confirm: none return the updated record, so a
// caller that wants to observe an effect must re-list.
type Gallery interface {
	// List returns one ordered page of records matching the filter.
	List(ctx context.Context, filter domain.Filter) ([]*domain.Record, error)

	// Search returns up to limit records whose prompt matches the query,
	// most recent first, ignoring pagination.
	Search(ctx context.Context, query string, limit int64) ([]*domain.Record, error)

	// Get returns a single record, or nil if it does not exist.
	Get(ctx context.Context, id int64) (*domain.Record, error)

	// Insert stores a completed generation's record together with its tags
	// and reference images, returning the new id.
	Insert(ctx context.Context, rec *domain.Record) (int64, error)

	ToggleStar(ctx context.Context, id int64) (bool, error)
	SetTitle(ctx context.Context, id int64, title string) error
	SetPrompt(ctx context.Context, id int64, prompt string) error
	AddTags(ctx context.Context, id int64, tags []string) error
	RemoveTag(ctx context.Context, id int64, tag string) error
	Trash(ctx context.Context, id int64) error
	TrashMany(ctx context.Context, ids []int64) (int, error)
	Restore(ctx context.Context, id int64) error

	// Delete removes the record permanently and returns the image path so
	// the caller can remove the file from the archive.
	Delete(ctx context.Context, id int64) (imagePath string, err error)

	AddToCollection(ctx context.Context, id int64, name string) error
	RemoveFromCollection(ctx context.Context, id int64, name string) error
	ListCollections(ctx context.Context) ([]domain.Collection, error)
	ListTags(ctx context.Context) ([]domain.TagCount, error)

	CostSummary(ctx context.Context, since string) (domain.CostSummary, error)
}
