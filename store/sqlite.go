package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zerorone/xtool-memory/model"
)

// SQLiteStore keeps all layers in a single database file, one flat row per
// item. It suits hosts that prefer a single artifact over a directory tree.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at dbPath and migrates the
// schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memory_items (
		id                 TEXT PRIMARY KEY,
		layer              TEXT NOT NULL,
		content            TEXT NOT NULL,
		type               TEXT,
		category           TEXT,
		tags               TEXT,
		importance         TEXT NOT NULL DEFAULT 'medium',
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL,
		last_accessed      TEXT,
		quality_score      REAL NOT NULL DEFAULT 1.0,
		access_count       INTEGER NOT NULL DEFAULT 0,
		related_items      TEXT,
		decay_factor       REAL NOT NULL DEFAULT 0,
		min_retention_days INTEGER NOT NULL DEFAULT 0,
		auto_cleanup       INTEGER NOT NULL DEFAULT 1,
		embedding          TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_items_layer      ON memory_items(layer);
	CREATE INDEX IF NOT EXISTS idx_items_layer_type ON memory_items(layer, type);
	CREATE INDEX IF NOT EXISTS idx_items_importance ON memory_items(layer, importance);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put upserts the row for the item's ID.
func (s *SQLiteStore) Put(ctx context.Context, item *model.Item) error {
	tagsJSON := encodeList(item.Tags)
	relatedJSON := encodeList(item.RelatedItems)

	var embJSON *string
	if len(item.Embedding) > 0 {
		b, _ := json.Marshal(item.Embedding)
		j := string(b)
		embJSON = &j
	}

	var lastAccessed *string
	if !item.LastAccessed.IsZero() {
		v := item.LastAccessed.UTC().Format(time.RFC3339Nano)
		lastAccessed = &v
	}

	autoCleanup := 0
	if item.AutoCleanup {
		autoCleanup = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memory_items (id, layer, content, type, category, tags, importance,
			created_at, updated_at, last_accessed, quality_score, access_count,
			related_items, decay_factor, min_retention_days, auto_cleanup, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			layer = excluded.layer, content = excluded.content,
			type = excluded.type, category = excluded.category,
			tags = excluded.tags, importance = excluded.importance,
			created_at = excluded.created_at, updated_at = excluded.updated_at,
			last_accessed = excluded.last_accessed,
			quality_score = excluded.quality_score,
			access_count = excluded.access_count,
			related_items = excluded.related_items,
			decay_factor = excluded.decay_factor,
			min_retention_days = excluded.min_retention_days,
			auto_cleanup = excluded.auto_cleanup,
			embedding = excluded.embedding`,
		item.ID, string(item.Layer), item.Content, item.Type, item.Category,
		tagsJSON, string(item.Importance),
		item.CreatedAt.UTC().Format(time.RFC3339Nano),
		item.UpdatedAt.UTC().Format(time.RFC3339Nano),
		lastAccessed, item.QualityScore, item.AccessCount,
		relatedJSON, item.DecayFactor, item.MinRetentionDays, autoCleanup, embJSON)
	if err != nil {
		return fmt.Errorf("store: put %s: %w", item.ID, err)
	}
	return nil
}

// Delete removes the row. A missing row is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, layer model.Layer, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM memory_items WHERE id = ? AND layer = ?`, id, string(layer))
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	return nil
}

// Load reads every row for the layer, skipping and counting rows whose
// encoded fields no longer parse.
func (s *SQLiteStore) Load(ctx context.Context, layer model.Layer) ([]*model.Item, int, error) {
	if _, err := model.ParseLayer(string(layer)); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, layer, content, type, category, tags, importance,
		       created_at, updated_at, last_accessed, quality_score, access_count,
		       related_items, decay_factor, min_retention_days, auto_cleanup, embedding
		FROM memory_items WHERE layer = ?`, string(layer))
	if err != nil {
		return nil, 0, fmt.Errorf("store: load %s: %w", layer, err)
	}
	defer rows.Close()

	var items []*model.Item
	skipped := 0
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			skipped++
			continue
		}
		items = append(items, it)
	}
	return items, skipped, rows.Err()
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanItem(rows *sql.Rows) (*model.Item, error) {
	var it model.Item
	var layer, importance, createdAt, updatedAt string
	var typ, category, tags, lastAccessed, related, embedding sql.NullString
	var autoCleanup int

	err := rows.Scan(&it.ID, &layer, &it.Content, &typ, &category, &tags, &importance,
		&createdAt, &updatedAt, &lastAccessed, &it.QualityScore, &it.AccessCount,
		&related, &it.DecayFactor, &it.MinRetentionDays, &autoCleanup, &embedding)
	if err != nil {
		return nil, err
	}

	if it.Layer, err = model.ParseLayer(layer); err != nil {
		return nil, err
	}
	if it.Importance, err = model.ParseImportance(importance); err != nil {
		return nil, err
	}
	if it.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	if it.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, err
	}
	if lastAccessed.Valid {
		if it.LastAccessed, err = time.Parse(time.RFC3339Nano, lastAccessed.String); err != nil {
			return nil, err
		}
	}
	it.Type = typ.String
	it.Category = category.String
	if tags.Valid {
		if err := json.Unmarshal([]byte(tags.String), &it.Tags); err != nil {
			return nil, err
		}
	}
	if related.Valid {
		if err := json.Unmarshal([]byte(related.String), &it.RelatedItems); err != nil {
			return nil, err
		}
	}
	if embedding.Valid {
		if err := json.Unmarshal([]byte(embedding.String), &it.Embedding); err != nil {
			return nil, err
		}
	}
	it.AutoCleanup = autoCleanup != 0
	return &it, nil
}

func encodeList(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	b, _ := json.Marshal(values)
	s := string(b)
	return &s
}
