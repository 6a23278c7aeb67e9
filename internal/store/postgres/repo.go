// Package postgres implements store.Repository on pgx.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"xmljson/internal/store"
)

// Repo implements store.Repository for Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

func init() {
	store.Register("postgres", New)
}

// New connects a pgx pool to cfg.DSN.
func New(ctx context.Context, cfg store.Config) (store.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() { r.pool.Close() }

const createSQL = `CREATE TABLE IF NOT EXISTS conversions (
	conversion_id BIGSERIAL PRIMARY KEY,
	source TEXT NOT NULL,
	total_score BIGINT NOT NULL,
	matched_scores INT NOT NULL,
	skipped_scores INT NOT NULL,
	warning_count INT NOT NULL,
	payload JSONB NOT NULL,
	converted_at TIMESTAMPTZ NOT NULL
)`

const insertSQL = `INSERT INTO conversions
	(source, total_score, matched_scores, skipped_scores, warning_count, payload, converted_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// EnsureSchema creates the conversions table when missing.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, createSQL)
	return err
}

// InsertConversion appends one summary row. Payload lands in a JSONB column
// so summaries stay queryable in place.
func (r *Repo) InsertConversion(ctx context.Context, c store.Conversion) error {
	_, err := r.pool.Exec(ctx, insertSQL,
		c.Source, c.TotalScore, c.MatchedScores, c.SkippedScores,
		c.WarningCount, c.Payload, c.ConvertedAt.UTC())
	return err
}
