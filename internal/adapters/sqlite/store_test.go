package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"pixery/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "pixery.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func insertTestRecord(t *testing.T, s *Store, n int, tags ...string) int64 {
	t.Helper()
	id, err := s.Insert(context.Background(), &domain.Record{
		Slug:      fmt.Sprintf("test-%d", n),
		Prompt:    fmt.Sprintf("prompt number %d", n),
		Model:     "dall-e-3",
		Provider:  "openai",
		Timestamp: fmt.Sprintf("2026-08-%02dT12:00:00", n),
		Date:      fmt.Sprintf("2026-08-%02d", n),
		ImagePath: fmt.Sprintf("2026-08-%02d/test-%d.png", n, n),
		Tags:      tags,
	})
	if err != nil {
		t.Fatalf("failed to insert record %d: %v", n, err)
	}
	return id
}

func TestInsertAndGetRoundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, &domain.Record{
		Slug:              "neon-city",
		Prompt:            "neon city at night",
		Model:             "gpt-image-1",
		Provider:          "openai",
		Timestamp:         "2026-08-20T10:30:00",
		Date:              "2026-08-20",
		ImagePath:         "2026-08-20/neon-city.png",
		ThumbPath:         "2026-08-20/neon-city.thumb.png",
		GenerationSeconds: 4.2,
		CostEstimateUSD:   0.02,
		Seed:              "998877",
		Width:             1024,
		Height:            1024,
		FileSize:          123456,
		NegativePrompt:    "blurry",
		Tags:              []string{"city", "night"},
		References: []domain.Reference{
			{Hash: "abc123", Path: "references/abc123.png"},
		},
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for an existing record")
	}
	if got.Prompt != "neon city at night" || got.Seed != "998877" || got.Width != 1024 {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "city" || got.Tags[1] != "night" {
		t.Errorf("tags = %v, want [city night] sorted", got.Tags)
	}
	if len(got.References) != 1 || got.References[0].Hash != "abc123" {
		t.Errorf("references = %v, want the linked ref", got.References)
	}
	if got.Trashed() {
		t.Error("a fresh record must not be trashed")
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Get(context.Background(), 12345)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("Get(missing) = %+v, want nil", got)
	}
}

func TestListOrdersNewestFirstAndPaginates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for n := 1; n <= 5; n++ {
		insertTestRecord(t, s, n)
	}

	page, err := s.List(ctx, domain.Filter{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 2 || page[0].Slug != "test-5" || page[1].Slug != "test-4" {
		t.Fatalf("first page = %v, want [test-5 test-4]", slugs(page))
	}

	page, err = s.List(ctx, domain.Filter{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 1 || page[0].Slug != "test-1" {
		t.Errorf("last page = %v, want [test-1]", slugs(page))
	}
}

func TestListTagFilterRequiresAllTags(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	insertTestRecord(t, s, 1, "city", "night")
	insertTestRecord(t, s, 2, "city")
	insertTestRecord(t, s, 3, "night")

	got, err := s.List(ctx, domain.Filter{Tags: []string{"city", "night"}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "test-1" {
		t.Errorf("AND filter = %v, want only the record carrying both tags", slugs(got))
	}

	got, err = s.List(ctx, domain.Filter{ExcludeTags: []string{"night"}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "test-2" {
		t.Errorf("exclude filter = %v, want only the night-free record", slugs(got))
	}
}

func TestListStarredAndSinceFilters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	id1 := insertTestRecord(t, s, 1)
	insertTestRecord(t, s, 2)
	insertTestRecord(t, s, 20)

	starred, err := s.ToggleStar(ctx, id1)
	if err != nil || !starred {
		t.Fatalf("ToggleStar = (%v, %v), want (true, nil)", starred, err)
	}

	got, _ := s.List(ctx, domain.Filter{StarredOnly: true})
	if len(got) != 1 || got[0].Slug != "test-1" {
		t.Errorf("starred filter = %v, want [test-1]", slugs(got))
	}

	got, _ = s.List(ctx, domain.Filter{Since: "2026-08-10"})
	if len(got) != 1 || got[0].Slug != "test-20" {
		t.Errorf("since filter = %v, want [test-20]", slugs(got))
	}

	// Toggling again unstars.
	starred, err = s.ToggleStar(ctx, id1)
	if err != nil || starred {
		t.Errorf("second toggle = (%v, %v), want (false, nil)", starred, err)
	}
}

func TestTrashRestoreDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	id1 := insertTestRecord(t, s, 1)
	id2 := insertTestRecord(t, s, 2)
	id3 := insertTestRecord(t, s, 3)

	n, err := s.TrashMany(ctx, []int64{id1, id2})
	if err != nil || n != 2 {
		t.Fatalf("TrashMany = (%d, %v), want (2, nil)", n, err)
	}

	active, _ := s.List(ctx, domain.Filter{})
	if len(active) != 1 || active[0].ID != id3 {
		t.Errorf("active view = %v, want only the untrashed record", slugs(active))
	}
	trashed, _ := s.List(ctx, domain.Filter{Trashed: true})
	if len(trashed) != 2 {
		t.Errorf("trash view has %d records, want 2", len(trashed))
	}

	// Trashing again must not move the trashed_at stamp.
	n, _ = s.TrashMany(ctx, []int64{id1})
	if n != 0 {
		t.Errorf("re-trashing affected %d rows, want 0", n)
	}

	if err := s.Restore(ctx, id1); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	active, _ = s.List(ctx, domain.Filter{})
	if len(active) != 2 {
		t.Errorf("active view has %d records after restore, want 2", len(active))
	}

	imagePath, err := s.Delete(ctx, id2)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if imagePath != "2026-08-02/test-2.png" {
		t.Errorf("Delete returned %q, want the image path for archive cleanup", imagePath)
	}
	if got, _ := s.Get(ctx, id2); got != nil {
		t.Error("a deleted record must be gone")
	}
}

func TestSearchMatchesPrompt(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	insertTestRecord(t, s, 1)
	insertTestRecord(t, s, 2)

	got, err := s.Search(ctx, "number 2", 50)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "test-2" {
		t.Errorf("search = %v, want [test-2]", slugs(got))
	}
}

func TestCollections(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	id1 := insertTestRecord(t, s, 1)
	id2 := insertTestRecord(t, s, 2)

	if err := s.AddToCollection(ctx, id1, "portfolio"); err != nil {
		t.Fatalf("AddToCollection: %v", err)
	}
	if err := s.AddToCollection(ctx, id2, "portfolio"); err != nil {
		t.Fatalf("AddToCollection: %v", err)
	}

	cols, err := s.ListCollections(ctx)
	if err != nil {
		t.Fatalf("ListCollections: %v", err)
	}
	if len(cols) != 1 || cols[0].Name != "portfolio" || cols[0].Count != 2 {
		t.Fatalf("collections = %+v, want portfolio with 2 members", cols)
	}

	got, _ := s.List(ctx, domain.Filter{Collection: "portfolio"})
	if len(got) != 2 {
		t.Errorf("collection view has %d records, want 2", len(got))
	}

	if err := s.RemoveFromCollection(ctx, id2, "portfolio"); err != nil {
		t.Fatalf("RemoveFromCollection: %v", err)
	}
	got, _ = s.List(ctx, domain.Filter{Uncategorized: true})
	if len(got) != 1 || got[0].ID != id2 {
		t.Errorf("uncategorized view = %v, want the removed record", slugs(got))
	}
}

func TestTagVocabulary(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	id1 := insertTestRecord(t, s, 1, "city", "night")
	insertTestRecord(t, s, 2, "city")

	tags, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(tags) != 2 || tags[0].Name != "city" || tags[0].Count != 2 {
		t.Fatalf("tags = %+v, want city(2) first", tags)
	}

	if err := s.RemoveTag(ctx, id1, "night"); err != nil {
		t.Fatalf("RemoveTag: %v", err)
	}
	rec, _ := s.Get(ctx, id1)
	if len(rec.Tags) != 1 || rec.Tags[0] != "city" {
		t.Errorf("tags after removal = %v, want [city]", rec.Tags)
	}
}

func TestJobLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	jobID, err := s.CreateJob(ctx, "dall-e-3", "a cat", []string{"pets"}, domain.JobSourceGUI, 0)
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	active, err := s.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 1 || active[0].Status != domain.JobPending {
		t.Fatalf("active jobs = %+v, want one pending", active)
	}
	if len(active[0].Tags) != 1 || active[0].Tags[0] != "pets" {
		t.Errorf("job tags = %v, want [pets]", active[0].Tags)
	}

	if err := s.MarkStarted(ctx, jobID); err != nil {
		t.Fatalf("MarkStarted: %v", err)
	}
	active, _ = s.ListActive(ctx)
	if len(active) != 1 || active[0].Status != domain.JobRunning {
		t.Fatalf("active jobs = %+v, want one running", active)
	}

	recID := insertTestRecord(t, s, 1)
	if err := s.MarkCompleted(ctx, jobID, recID); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if active, _ = s.ListActive(ctx); len(active) != 0 {
		t.Errorf("completed job still listed active: %+v", active)
	}

	// A second job fails and shows up in the failed list.
	failID, _ := s.CreateJob(ctx, "dall-e-3", "a dog", nil, domain.JobSourceCLI, 0)
	if err := s.MarkFailed(ctx, failID, "provider timeout"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	failed, err := s.ListFailed(ctx, 10)
	if err != nil {
		t.Fatalf("ListFailed: %v", err)
	}
	if len(failed) != 1 || failed[0].Error != "provider timeout" || failed[0].Status != domain.JobFailed {
		t.Errorf("failed jobs = %+v, want the timed-out job", failed)
	}
	if failed[0].RecordID != 0 {
		t.Errorf("failed job has record id %d, want none", failed[0].RecordID)
	}
}

func TestCostSummary(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for n, cost := range map[int]float64{1: 0.04, 2: 0.04, 20: 0.02} {
		_, err := s.Insert(ctx, &domain.Record{
			Slug:            fmt.Sprintf("test-%d", n),
			Prompt:          "p",
			Model:           "dall-e-3",
			Provider:        "openai",
			Timestamp:       fmt.Sprintf("2026-08-%02dT12:00:00", n),
			Date:            fmt.Sprintf("2026-08-%02d", n),
			ImagePath:       "x.png",
			CostEstimateUSD: cost,
		})
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	sum, err := s.CostSummary(ctx, "")
	if err != nil {
		t.Fatalf("CostSummary: %v", err)
	}
	if sum.Count != 3 || sum.TotalUSD < 0.099 || sum.TotalUSD > 0.101 {
		t.Errorf("summary = %+v, want 3 records totaling 0.10", sum)
	}

	sum, err = s.CostSummary(ctx, "2026-08-10")
	if err != nil {
		t.Fatalf("CostSummary(since): %v", err)
	}
	if sum.Count != 1 || sum.TotalUSD < 0.019 || sum.TotalUSD > 0.021 {
		t.Errorf("since summary = %+v, want the single late record", sum)
	}
}

func slugs(records []*domain.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Slug
	}
	return out
}
