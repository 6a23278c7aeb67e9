// Package mssql implements store.Repository on Microsoft SQL Server.
package mssql

import (
	"context"
	"database/sql"

	_ "github.com/microsoft/go-mssqldb"

	"xmljson/internal/store"
)

// Repo implements store.Repository for SQL Server.
type Repo struct {
	db *sql.DB
}

func init() {
	store.Register("mssql", New)
}

// New opens a sqlserver connection to cfg.DSN.
func New(ctx context.Context, cfg store.Config) (store.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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

// SQL Server has no CREATE TABLE IF NOT EXISTS; the OBJECT_ID guard keeps
// EnsureSchema idempotent like the other backends.
const createSQL = `IF OBJECT_ID(N'conversions', N'U') IS NULL
CREATE TABLE conversions (
	conversion_id BIGINT IDENTITY(1,1) PRIMARY KEY,
	source NVARCHAR(1024) NOT NULL,
	total_score BIGINT NOT NULL,
	matched_scores INT NOT NULL,
	skipped_scores INT NOT NULL,
	warning_count INT NOT NULL,
	payload NVARCHAR(MAX) NOT NULL,
	converted_at DATETIMEOFFSET NOT NULL
)`

const insertSQL = `INSERT INTO conversions
	(source, total_score, matched_scores, skipped_scores, warning_count, payload, converted_at)
	VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7)`

// EnsureSchema creates the conversions table when missing.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createSQL)
	return err
}

// InsertConversion appends one summary row.
func (r *Repo) InsertConversion(ctx context.Context, c store.Conversion) error {
	_, err := r.db.ExecContext(ctx, insertSQL,
		c.Source, c.TotalScore, c.MatchedScores, c.SkippedScores,
		c.WarningCount, c.Payload, c.ConvertedAt.UTC())
	return err
}
