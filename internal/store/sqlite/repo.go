// Package sqlite implements store.Repository on modernc.org/sqlite.
//
// SQLite has no timezone-aware timestamp type and the driver stores
// time.Time with TEXT affinity anyway, so timestamps are written as
// RFC3339Nano strings for reliable round-trips and easy debugging.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"xmljson/internal/store"
)

// Repo implements store.Repository for SQLite.
type Repo struct {
	db *sql.DB
}

func init() {
	store.Register("sqlite", New)
}

// New opens (or creates) the SQLite database at cfg.DSN.
func New(ctx context.Context, cfg store.Config) (store.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

const createSQL = `CREATE TABLE IF NOT EXISTS conversions (
	conversion_id INTEGER PRIMARY KEY AUTOINCREMENT,
	source TEXT NOT NULL,
	total_score INTEGER NOT NULL,
	matched_scores INTEGER NOT NULL,
	skipped_scores INTEGER NOT NULL,
	warning_count INTEGER NOT NULL,
	payload TEXT NOT NULL,
	converted_at TEXT NOT NULL
)`

const insertSQL = `INSERT INTO conversions
	(source, total_score, matched_scores, skipped_scores, warning_count, payload, converted_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

// EnsureSchema creates the conversions table when missing.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createSQL)
	return err
}

// InsertConversion appends one summary row.
func (r *Repo) InsertConversion(ctx context.Context, c store.Conversion) error {
	_, err := r.db.ExecContext(ctx, insertSQL,
		c.Source, c.TotalScore, c.MatchedScores, c.SkippedScores,
		c.WarningCount, c.Payload, c.ConvertedAt.UTC().Format(time.RFC3339Nano))
	return err
}
