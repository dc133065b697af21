package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"listing-optimizer/models"
)

// PostgresWriter persists pipeline results to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS optimized_listings (
			id                SERIAL PRIMARY KEY,
			run_id            UUID          UNIQUE NOT NULL,
			url               TEXT          NOT NULL,
			original_title    TEXT          NOT NULL,
			optimized_title   TEXT          NOT NULL,
			original_price    NUMERIC(10,2) NOT NULL DEFAULT 0,
			recommended_price NUMERIC(10,2) NOT NULL DEFAULT 0,
			confidence        NUMERIC(4,3)  NOT NULL DEFAULT 0,
			keywords          TEXT          NOT NULL DEFAULT '',
			selling_points    TEXT          NOT NULL DEFAULT '',
			description       TEXT          NOT NULL DEFAULT '',
			rendered          TEXT          NOT NULL DEFAULT '',
			elapsed_ms        BIGINT        NOT NULL DEFAULT 0,
			created_at        TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_optimized_listings_url        ON optimized_listings(url);
		CREATE INDEX IF NOT EXISTS idx_optimized_listings_created_at ON optimized_listings(created_at);
	`)
	return err
}

// Write batch-inserts results. Re-written run ids are ignored.
func (pw *PostgresWriter) Write(results []*models.PipelineResult) error {
	const batchSize = 50
	for i := 0; i < len(results); i += batchSize {
		end := i + batchSize
		if end > len(results) {
			end = len(results)
		}
		if err := pw.insertBatch(results[i:end]); err != nil {
			return fmt.Errorf("postgres: insert batch: %w", err)
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.PipelineResult) error {
	query, args := batchInsert(batch, func(n int) string { return fmt.Sprintf("$%d", n) })
	_, err := pw.db.Exec(query+" ON CONFLICT (run_id) DO NOTHING", args...)
	return err
}

// batchInsert builds a multi-row INSERT using placeholder(n) for the n-th
// (1-based) argument.
func batchInsert(batch []*models.PipelineResult, placeholder func(n int) string) (string, []any) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*len(columns))

	for idx, res := range batch {
		base := idx * len(columns)
		ph := make([]string, len(columns))
		for j := range columns {
			ph[j] = placeholder(base + j + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs, toRow(res).args()...)
	}

	query := fmt.Sprintf("INSERT INTO optimized_listings (%s) VALUES %s",
		strings.Join(columns, ", "), strings.Join(valueStrings, ","))
	return query, valueArgs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// Recent retrieves the latest stored results, newest first.
func (pw *PostgresWriter) Recent(limit int) ([]StoredResult, error) {
	rows, err := pw.db.Query(`
		SELECT run_id, url, optimized_title, original_price, recommended_price, confidence, created_at
		FROM optimized_listings
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch recent: %w", err)
	}
	defer rows.Close()

	var out []StoredResult
	for rows.Next() {
		var r StoredResult
		if err := rows.Scan(&r.RunID, &r.URL, &r.OptimizedTitle, &r.OriginalPrice,
			&r.RecommendedPrice, &r.Confidence, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
