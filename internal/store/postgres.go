package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/shelfsight/shelfsight/internal/snapshot"
)

// PostgresProvider loads a category's snapshot series from the snapshots
// table. Each row carries one month's canonical snapshot as a JSON document;
// the ETL owns writes.
type PostgresProvider struct {
	db *sqlx.DB
}

// NewPostgresProvider creates a provider over an existing connection pool.
func NewPostgresProvider(db *sqlx.DB) *PostgresProvider {
	return &PostgresProvider{db: db}
}

// Connect opens a Postgres pool and verifies it.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

type snapshotRow struct {
	Body []byte `db:"body"`
}

// Snapshots fetches and chronologically sorts the category's series.
func (p *PostgresProvider) Snapshots(ctx context.Context, categoryID string) ([]snapshot.Snapshot, error) {
	var rows []snapshotRow
	err := p.db.SelectContext(ctx, &rows,
		`SELECT body FROM snapshots WHERE category_id = $1 ORDER BY month`, categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", snapshot.ErrCategoryNotFound, categoryID)
		}
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", snapshot.ErrCategoryNotFound, categoryID)
	}

	snaps := make([]snapshot.Snapshot, 0, len(rows))
	for _, r := range rows {
		var s snapshot.Snapshot
		if err := json.Unmarshal(r.Body, &s); err != nil {
			return nil, fmt.Errorf("failed to parse snapshot row for %s: %w", categoryID, err)
		}
		snaps = append(snaps, s)
	}
	snapshot.Sort(snaps)
	log.Debug().Str("category", categoryID).Int("snapshots", len(snaps)).Msg("Loaded snapshot series from postgres")
	return snaps, nil
}
