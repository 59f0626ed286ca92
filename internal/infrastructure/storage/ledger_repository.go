package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"newstracker/internal/domain"
	"newstracker/internal/ports"
)

// LedgerRepository is the processed-news dedup ledger over Postgres.
type LedgerRepository struct {
	db *sql.DB
}

var _ ports.Ledger = (*LedgerRepository)(nil)

// NewLedgerRepository wires the database handle.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Contains reports whether the item URL was already notified.
func (r *LedgerRepository) Contains(ctx context.Context, itemURL string) (bool, error) {
	query, args, err := psql.
		Select("1").
		From("processed_news").
		Where(sq.Eq{"url": itemURL}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build ledger query: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check processed %s: %v: %w", itemURL, err, domain.ErrStoreUnavailable)
	}

	return true, nil
}

// Record appends the item to the ledger. Re-recording an already known
// URL is a no-op.
func (r *LedgerRepository) Record(ctx context.Context, itemURL, title string) error {
	query, args, err := psql.
		Insert("processed_news").
		Columns("url", "title").
		Values(itemURL, title).
		Suffix("ON CONFLICT (url) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build ledger insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record processed %s: %v: %w", itemURL, err, domain.ErrStoreUnavailable)
	}

	return nil
}
