package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"listing-optimizer/models"
)

// SQLiteWriter persists pipeline results to a local SQLite database.
type SQLiteWriter struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteWriter opens (or creates) the database at path and runs migrations.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: set WAL mode: %w", err)
	}

	w := &SQLiteWriter{db: db}
	if err := w.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return w, nil
}

func (w *SQLiteWriter) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS optimized_listings (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT    UNIQUE NOT NULL,
			url               TEXT    NOT NULL,
			original_title    TEXT    NOT NULL,
			optimized_title   TEXT    NOT NULL,
			original_price    REAL    NOT NULL DEFAULT 0,
			recommended_price REAL    NOT NULL DEFAULT 0,
			confidence        REAL    NOT NULL DEFAULT 0,
			keywords          TEXT    NOT NULL DEFAULT '',
			selling_points    TEXT    NOT NULL DEFAULT '',
			description       TEXT    NOT NULL DEFAULT '',
			rendered          TEXT    NOT NULL DEFAULT '',
			elapsed_ms        INTEGER NOT NULL DEFAULT 0,
			created_at        INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_optimized_listings_url ON optimized_listings(url)`,
		`CREATE INDEX IF NOT EXISTS idx_optimized_listings_created_at ON optimized_listings(created_at)`,
	}
	for _, s := range stmts {
		if _, err := w.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Write inserts all results in one transaction. Re-written run ids are ignored.
func (w *SQLiteWriter) Write(results []*models.PipelineResult) error {
	if len(results) == 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",")
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT OR IGNORE INTO optimized_listings (%s) VALUES (%s)",
		strings.Join(columns, ", "), placeholders))
	if err != nil {
		return fmt.Errorf("sqlite: prepare: %w", err)
	}
	defer stmt.Close()

	for _, res := range results {
		args := toRow(res).args()
		// created_at is stored as unix seconds
		args[len(args)-1] = res.CreatedAt.Unix()
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("sqlite: insert %s: %w", res.RunID, err)
		}
	}
	return tx.Commit()
}

// Recent retrieves the latest stored results, newest first.
func (w *SQLiteWriter) Recent(limit int) ([]StoredResult, error) {
	rows, err := w.db.Query(`
		SELECT run_id, url, optimized_title, original_price, recommended_price, confidence, created_at
		FROM optimized_listings
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: fetch recent: %w", err)
	}
	defer rows.Close()

	var out []StoredResult
	for rows.Next() {
		var r StoredResult
		var ts int64
		if err := rows.Scan(&r.RunID, &r.URL, &r.OptimizedTitle, &r.OriginalPrice,
			&r.RecommendedPrice, &r.Confidence, &ts); err != nil {
			return nil, fmt.Errorf("sqlite: scan row: %w", err)
		}
		r.CreatedAt = time.Unix(ts, 0).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}
