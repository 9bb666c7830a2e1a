package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pixery/internal/domain"
)

func nowStamp() string {
	return time.Now().Format("2006-01-02T15:04:05")
}

// AddTags attaches tags to a record, creating tag rows as needed.
// Duplicate links are ignored.
func (s *Store) AddTags(ctx context.Context, id int64, tags []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, tag := range tags {
		if err := addTagTx(ctx, tx, id, tag); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func addTagTx(ctx context.Context, tx *sql.Tx, id int64, tag string) error {
	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO tags (name) VALUES (?)", tag); err != nil {
		return fmt.Errorf("failed to create tag %q: %w", tag, err)
	}
	_, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO generation_tags (generation_id, tag_id)
		 SELECT ?, id FROM tags WHERE name = ?`, id, tag)
	if err != nil {
		return fmt.Errorf("failed to tag generation %d: %w", id, err)
	}
	return nil
}

// RemoveTag detaches one tag from a record. The tag row itself stays.
func (s *Store) RemoveTag(ctx context.Context, id int64, tag string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM generation_tags
		 WHERE generation_id = ? AND tag_id = (SELECT id FROM tags WHERE name = ?)`,
		id, tag)
	if err != nil {
		return fmt.Errorf("failed to remove tag: %w", err)
	}
	return nil
}

// ListTags returns the tag vocabulary with usage counts, most used first.
func (s *Store) ListTags(ctx context.Context) ([]domain.TagCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.name, COUNT(gt.generation_id) as count
		 FROM tags t
		 LEFT JOIN generation_tags gt ON t.id = gt.tag_id
		 GROUP BY t.id
		 ORDER BY count DESC, t.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var out []domain.TagCount
	for rows.Next() {
		var tc domain.TagCount
		if err := rows.Scan(&tc.Name, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// linkReferenceTx dedups a reference by content hash and links it to the
// record.
func linkReferenceTx(ctx context.Context, tx *sql.Tx, id int64, ref domain.Reference) error {
	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO refs (hash, path) VALUES (?, ?)", ref.Hash, ref.Path); err != nil {
		return fmt.Errorf("failed to store reference: %w", err)
	}
	_, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO generation_refs (generation_id, ref_id)
		 SELECT ?, id FROM refs WHERE hash = ?`, id, ref.Hash)
	if err != nil {
		return fmt.Errorf("failed to link reference: %w", err)
	}
	return nil
}

// AddToCollection files a record under the named collection, creating the
// collection on first use.
func (s *Store) AddToCollection(ctx context.Context, id int64, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO collections (name) VALUES (?)", name); err != nil {
		return fmt.Errorf("failed to create collection %q: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO generation_collections (generation_id, collection_id)
		 SELECT ?, id FROM collections WHERE name = ?`, id, name); err != nil {
		return fmt.Errorf("failed to add to collection: %w", err)
	}
	return tx.Commit()
}

// RemoveFromCollection takes a record out of the named collection.
func (s *Store) RemoveFromCollection(ctx context.Context, id int64, name string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM generation_collections
		 WHERE generation_id = ? AND collection_id = (SELECT id FROM collections WHERE name = ?)`,
		id, name)
	if err != nil {
		return fmt.Errorf("failed to remove from collection: %w", err)
	}
	return nil
}

// ListCollections returns all collections with member counts, by name.
func (s *Store) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name, COALESCE(c.description, ''), c.created_at,
		        COUNT(gc.generation_id)
		 FROM collections c
		 LEFT JOIN generation_collections gc ON c.id = gc.collection_id
		 GROUP BY c.id
		 ORDER BY c.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var out []domain.Collection
	for rows.Next() {
		var c domain.Collection
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
