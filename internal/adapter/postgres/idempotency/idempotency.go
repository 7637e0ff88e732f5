package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	portidem "github.com/alanyang/robot-roster/internal/port/idempotency"
)

var _ portidem.Store = (*Repository)(nil)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Check looks up an existing idempotency key and returns the response that
// was stored for it.
func (r *Repository) Check(ctx context.Context, key string) (portidem.Record, bool, error) {
	query := `SELECT status_code, response_body FROM processed_operations WHERE idempotency_key = $1`

	var rec portidem.Record
	err := r.pool.QueryRow(ctx, query, key).Scan(&rec.Status, &rec.Body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return portidem.Record{}, false, nil
		}
		return portidem.Record{}, false, fmt.Errorf("checking idempotency key: %w", err)
	}
	return rec, true, nil
}

// Store records the response for key. The first writer wins.
func (r *Repository) Store(ctx context.Context, key string, rec portidem.Record) error {
	query := `
		INSERT INTO processed_operations (idempotency_key, status_code, response_body, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (idempotency_key) DO NOTHING`

	_, err := r.pool.Exec(ctx, query, key, rec.Status, rec.Body)
	if err != nil {
		return fmt.Errorf("storing idempotency key: %w", err)
	}
	return nil
}

func (r *Repository) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM processed_operations WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("purging idempotency keys: %w", err)
	}
	return tag.RowsAffected(), nil
}
