package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"newstracker/internal/domain"
	"newstracker/internal/ports"
)

// StocksRepository manages tracked_stocks rows for the filings digest job.
type StocksRepository struct {
	db *sql.DB
}

var _ ports.StocksRepository = (*StocksRepository)(nil)

// NewStocksRepository wires the database handle.
func NewStocksRepository(db *sql.DB) *StocksRepository {
	return &StocksRepository{db: db}
}

// Pending returns every stock still waiting for a filings digest.
func (r *StocksRepository) Pending(ctx context.Context) ([]domain.TrackedStock, error) {
	query, args, err := psql.
		Select("id", "symbol").
		From("tracked_stocks").
		Where(sq.Eq{"status": domain.StockPending}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build pending query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pending stocks: %v: %w", err, domain.ErrStoreUnavailable)
	}
	defer rows.Close()

	var stocks []domain.TrackedStock
	for rows.Next() {
		var stock domain.TrackedStock
		if err := rows.Scan(&stock.ID, &stock.Symbol); err != nil {
			return nil, fmt.Errorf("scan tracked stock: %w", err)
		}
		stocks = append(stocks, stock)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracked stocks: %v: %w", err, domain.ErrStoreUnavailable)
	}

	return stocks, nil
}

// SaveDigest stores the digest and moves the row to review.
func (r *StocksRepository) SaveDigest(ctx context.Context, id int64, digest string) error {
	query, args, err := psql.
		Update("tracked_stocks").
		Set("summary", digest).
		Set("status", domain.StockReview).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build digest update: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save digest for stock %d: %v: %w", id, err, domain.ErrStoreUnavailable)
	}

	return nil
}

// SetStatus updates only the processing status.
func (r *StocksRepository) SetStatus(ctx context.Context, id int64, status domain.StockStatus) error {
	query, args, err := psql.
		Update("tracked_stocks").
		Set("status", status).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build status update: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set status for stock %d: %v: %w", id, err, domain.ErrStoreUnavailable)
	}

	return nil
}
