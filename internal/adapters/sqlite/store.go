package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pixery/internal/domain"
	"pixery/internal/ports"

	_ "github.com/mattn/go-sqlite3"
)

// Store implements ports.Gallery and ports.JobService on a SQLite database
type Store struct {
	db     *sql.DB
	dbPath string
}

// Ensure Store implements the ports it backs
var (
	_ ports.Gallery    = (*Store)(nil)
	_ ports.JobService = (*Store)(nil)
)

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	// Expand ~ in path
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL mode for concurrency between the TUI, CLI, and MCP server
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db, dbPath: path}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const recordColumns = `g.id, g.slug, g.prompt, g.model, g.provider, g.timestamp, g.date,
	g.image_path, g.thumb_path, g.generation_time_seconds, g.cost_estimate_usd,
	g.seed, g.width, g.height, g.file_size, g.parent_id, g.starred, g.title,
	g.negative_prompt, g.created_at, g.trashed_at`

func scanRecord(scan func(...any) error) (*domain.Record, error) {
	var (
		r         domain.Record
		thumb     sql.NullString
		seconds   sql.NullFloat64
		cost      sql.NullFloat64
		seed      sql.NullString
		width     sql.NullInt64
		height    sql.NullInt64
		fileSize  sql.NullInt64
		parentID  sql.NullInt64
		starred   int
		title     sql.NullString
		negPrompt sql.NullString
		createdAt sql.NullString
		trashedAt sql.NullString
	)
	err := scan(&r.ID, &r.Slug, &r.Prompt, &r.Model, &r.Provider, &r.Timestamp, &r.Date,
		&r.ImagePath, &thumb, &seconds, &cost, &seed, &width, &height, &fileSize,
		&parentID, &starred, &title, &negPrompt, &createdAt, &trashedAt)
	if err != nil {
		return nil, err
	}
	r.ThumbPath = thumb.String
	r.GenerationSeconds = seconds.Float64
	r.CostEstimateUSD = cost.Float64
	r.Seed = seed.String
	r.Width = int(width.Int64)
	r.Height = int(height.Int64)
	r.FileSize = fileSize.Int64
	r.ParentID = parentID.Int64
	r.Starred = starred != 0
	r.Title = title.String
	r.NegativePrompt = negPrompt.String
	r.CreatedAt = createdAt.String
	r.TrashedAt = trashedAt.String
	return &r, nil
}

// List returns one page of records matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter domain.Filter) ([]*domain.Record, error) {
	var (
		conditions []string
		args       []any
	)

	if filter.Trashed {
		conditions = append(conditions, "g.trashed_at IS NOT NULL")
	} else {
		conditions = append(conditions, "g.trashed_at IS NULL")
	}

	if filter.Collection != "" {
		conditions = append(conditions, `g.id IN (
			SELECT gc.generation_id FROM generation_collections gc
			JOIN collections c ON gc.collection_id = c.id
			WHERE c.name = ?)`)
		args = append(args, filter.Collection)
	}

	if filter.Uncategorized {
		conditions = append(conditions, "g.id NOT IN (SELECT generation_id FROM generation_collections)")
	}

	// Multi-tag filter with AND logic: records must carry ALL listed tags
	if len(filter.Tags) > 0 {
		placeholders := strings.Repeat("?, ", len(filter.Tags)-1) + "?"
		conditions = append(conditions, fmt.Sprintf(`g.id IN (
			SELECT gt.generation_id FROM generation_tags gt
			JOIN tags t ON gt.tag_id = t.id
			WHERE t.name IN (%s)
			GROUP BY gt.generation_id
			HAVING COUNT(DISTINCT t.name) = %d)`, placeholders, len(filter.Tags)))
		for _, tag := range filter.Tags {
			args = append(args, tag)
		}
	}

	// Exclude records carrying ANY of the excluded tags
	if len(filter.ExcludeTags) > 0 {
		placeholders := strings.Repeat("?, ", len(filter.ExcludeTags)-1) + "?"
		conditions = append(conditions, fmt.Sprintf(`g.id NOT IN (
			SELECT gt.generation_id FROM generation_tags gt
			JOIN tags t ON gt.tag_id = t.id
			WHERE t.name IN (%s))`, placeholders))
		for _, tag := range filter.ExcludeTags {
			args = append(args, tag)
		}
	}

	if filter.Model != "" {
		conditions = append(conditions, "g.model = ?")
		args = append(args, filter.Model)
	}

	if filter.StarredOnly {
		conditions = append(conditions, "g.starred = 1")
	}

	if filter.Search != "" {
		conditions = append(conditions, "g.prompt LIKE ?")
		args = append(args, "%"+filter.Search+"%")
	}

	if filter.Since != "" {
		conditions = append(conditions, "g.date >= ?")
		args = append(args, filter.Since)
	}

	sql := "SELECT DISTINCT " + recordColumns + " FROM generations g WHERE " +
		strings.Join(conditions, " AND ") + " ORDER BY g.timestamp DESC"
	if filter.Limit > 0 {
		sql += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		sql += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	defer rows.Close()

	var records []*domain.Record
	for rows.Next() {
		r, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachDetails(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Search returns up to limit records whose prompt matches the query, most
// recent first.
func (s *Store) Search(ctx context.Context, query string, limit int64) ([]*domain.Record, error) {
	return s.List(ctx, domain.Filter{Search: query, Limit: limit})
}

// Get returns one record with tags, collections, and references loaded, or
// nil when the id does not exist.
func (s *Store) Get(ctx context.Context, id int64) (*domain.Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM generations g WHERE g.id = ?", id)
	r, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get generation %d: %w", id, err)
	}
	if err := s.attachDetails(ctx, []*domain.Record{r}); err != nil {
		return nil, err
	}
	return r, nil
}

// Insert stores a new record with its tags and references in one
// transaction.
func (s *Store) Insert(ctx context.Context, rec *domain.Record) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO generations (slug, prompt, model, provider, timestamp, date,
			image_path, thumb_path, generation_time_seconds, cost_estimate_usd,
			seed, width, height, file_size, parent_id, negative_prompt)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Slug, rec.Prompt, rec.Model, rec.Provider, rec.Timestamp, rec.Date,
		rec.ImagePath, nullStr(rec.ThumbPath), rec.GenerationSeconds, rec.CostEstimateUSD,
		nullStr(rec.Seed), rec.Width, rec.Height, rec.FileSize,
		nullID(rec.ParentID), nullStr(rec.NegativePrompt))
	if err != nil {
		return 0, fmt.Errorf("failed to insert generation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, tag := range rec.Tags {
		if err := addTagTx(ctx, tx, id, tag); err != nil {
			return 0, err
		}
	}
	for _, ref := range rec.References {
		if err := linkReferenceTx(ctx, tx, id, ref); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ToggleStar flips the starred flag and returns the new value.
func (s *Store) ToggleStar(ctx context.Context, id int64) (bool, error) {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE generations SET starred = NOT starred WHERE id = ?", id); err != nil {
		return false, fmt.Errorf("failed to toggle star: %w", err)
	}
	var starred int
	err := s.db.QueryRowContext(ctx,
		"SELECT starred FROM generations WHERE id = ?", id).Scan(&starred)
	if err != nil {
		return false, fmt.Errorf("failed to read star state: %w", err)
	}
	return starred != 0, nil
}

// SetTitle updates the display title. An empty title clears it.
func (s *Store) SetTitle(ctx context.Context, id int64, title string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE generations SET title = ? WHERE id = ?", nullStr(title), id)
	if err != nil {
		return fmt.Errorf("failed to set title: %w", err)
	}
	return nil
}

// SetPrompt rewrites the stored prompt.
func (s *Store) SetPrompt(ctx context.Context, id int64, prompt string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE generations SET prompt = ? WHERE id = ?", prompt, id)
	if err != nil {
		return fmt.Errorf("failed to set prompt: %w", err)
	}
	return nil
}

// Trash soft-deletes a record. Already-trashed records are untouched.
func (s *Store) Trash(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE generations SET trashed_at = ? WHERE id = ? AND trashed_at IS NULL",
		nowStamp(), id)
	if err != nil {
		return fmt.Errorf("failed to trash generation: %w", err)
	}
	return nil
}

// TrashMany soft-deletes a batch and returns how many rows changed.
func (s *Store) TrashMany(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	args := make([]any, 0, len(ids)+1)
	args = append(args, nowStamp())
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(
		"UPDATE generations SET trashed_at = ? WHERE id IN (%s) AND trashed_at IS NULL",
		placeholders), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to trash generations: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Restore brings a trashed record back.
func (s *Store) Restore(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE generations SET trashed_at = NULL WHERE id = ? AND trashed_at IS NOT NULL", id)
	if err != nil {
		return fmt.Errorf("failed to restore generation: %w", err)
	}
	return nil
}

// Delete removes the record permanently and returns its image path so the
// caller can delete the archived file.
func (s *Store) Delete(ctx context.Context, id int64) (string, error) {
	var imagePath string
	err := s.db.QueryRowContext(ctx,
		"SELECT image_path FROM generations WHERE id = ?", id).Scan(&imagePath)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up generation %d: %w", id, err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM generations WHERE id = ?", id); err != nil {
		return "", fmt.Errorf("failed to delete generation: %w", err)
	}
	return imagePath, nil
}

// CostSummary aggregates estimated spend, optionally since a date.
func (s *Store) CostSummary(ctx context.Context, since string) (domain.CostSummary, error) {
	var summary domain.CostSummary

	where := ""
	var args []any
	if since != "" {
		where = " WHERE date >= ?"
		args = append(args, since)
	}

	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(cost_estimate_usd), 0), COUNT(*) FROM generations"+where,
		args...).Scan(&summary.TotalUSD, &summary.Count)
	if err != nil {
		return summary, fmt.Errorf("failed to total costs: %w", err)
	}

	byModel, err := s.costBuckets(ctx,
		"SELECT model, COALESCE(SUM(cost_estimate_usd), 0) FROM generations"+where+
			" GROUP BY model ORDER BY SUM(cost_estimate_usd) DESC", args)
	if err != nil {
		return summary, err
	}
	summary.ByModel = byModel

	byDay, err := s.costBuckets(ctx,
		"SELECT date, COALESCE(SUM(cost_estimate_usd), 0) FROM generations"+where+
			" GROUP BY date ORDER BY date DESC LIMIT 30", args)
	if err != nil {
		return summary, err
	}
	summary.ByDay = byDay

	return summary, nil
}

func (s *Store) costBuckets(ctx context.Context, query string, args []any) ([]domain.CostBucket, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate costs: %w", err)
	}
	defer rows.Close()

	var out []domain.CostBucket
	for rows.Next() {
		var b domain.CostBucket
		if err := rows.Scan(&b.Key, &b.USD); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// attachDetails loads tags, collections, and references for a batch of
// records with one query per relation.
func (s *Store) attachDetails(ctx context.Context, records []*domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.Record, len(records))
	placeholders := strings.Repeat("?, ", len(records)-1) + "?"
	args := make([]any, len(records))
	for i, r := range records {
		byID[r.ID] = r
		args[i] = r.ID
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT gt.generation_id, t.name FROM generation_tags gt
		 JOIN tags t ON gt.tag_id = t.id
		 WHERE gt.generation_id IN (%s) ORDER BY t.name`, placeholders), args...)
	if err != nil {
		return fmt.Errorf("failed to load tags: %w", err)
	}
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			rows.Close()
			return err
		}
		byID[id].Tags = append(byID[id].Tags, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT gc.generation_id, c.name FROM generation_collections gc
		 JOIN collections c ON gc.collection_id = c.id
		 WHERE gc.generation_id IN (%s) ORDER BY c.name`, placeholders), args...)
	if err != nil {
		return fmt.Errorf("failed to load collections: %w", err)
	}
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			rows.Close()
			return err
		}
		byID[id].Collections = append(byID[id].Collections, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT gr.generation_id, r.id, r.hash, r.path, r.created_at
		 FROM refs r
		 JOIN generation_refs gr ON r.id = gr.ref_id
		 WHERE gr.generation_id IN (%s)`, placeholders), args...)
	if err != nil {
		return fmt.Errorf("failed to load references: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var ref domain.Reference
		if err := rows.Scan(&id, &ref.ID, &ref.Hash, &ref.Path, &ref.CreatedAt); err != nil {
			return err
		}
		byID[id].References = append(byID[id].References, ref)
	}
	return rows.Err()
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
