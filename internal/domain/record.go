package domain

// Record is a single generation in the gallery archive.
//
// ID is assigned by the store and never changes. The projection fields
// (Starred, Title, Prompt, Tags, Collections, TrashedAt) are the mutable
// part of a record; everything else is fixed at creation time.
type Record struct {
	ID        int64
	Slug      string
	Prompt    string
	Model     string
	Provider  string
	Timestamp string // "2006-01-02T15:04:05", store ordering key
	Date      string // "2006-01-02"
	ImagePath string
	ThumbPath string

	GenerationSeconds float64
	CostEstimateUSD   float64
	Seed              string
	Width             int
	Height            int
	FileSize          int64
	ParentID          int64 // 0 = no parent

	Starred        bool
	Title          string
	NegativePrompt string
	CreatedAt      string
	TrashedAt      string // empty = active

	Tags        []string
	Collections []string
	References  []Reference
}

// Reference is a stored reference image, deduplicated by content hash.
type Reference struct {
	ID        int64
	Hash      string
	Path      string
	CreatedAt string
}

// Trashed reports whether the record is in the trash.
func (r *Record) Trashed() bool {
	return r.TrashedAt != ""
}

// ProjectionEquals reports whether the mutable projection of r equals that
// of other. Fixed fields (paths, seed, dimensions, timestamps) are ignored:
// two fetches of an untouched record compare equal even though the store
// rebuilt the row both times.
func (r *Record) ProjectionEquals(other *Record) bool {
	if r.Starred != other.Starred ||
		r.Title != other.Title ||
		r.Prompt != other.Prompt ||
		r.TrashedAt != other.TrashedAt {
		return false
	}
	return equalStrings(r.Tags, other.Tags) && equalStrings(r.Collections, other.Collections)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Collection is a named group of records.
type Collection struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   string
	Count       int64
}

// TagCount pairs a tag name with the number of records carrying it.
type TagCount struct {
	Name  string
	Count int64
}

// CostSummary aggregates estimated spend over a period.
type CostSummary struct {
	TotalUSD float64
	ByModel  []CostBucket
	ByDay    []CostBucket
	Count    int64
}

// CostBucket is one aggregation row of a cost summary.
type CostBucket struct {
	Key string
	USD float64
}
