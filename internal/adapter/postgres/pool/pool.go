package pool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/robot-roster/internal/domain/eligibility"
	domainpool "github.com/alanyang/robot-roster/internal/domain/pool"
	portpool "github.com/alanyang/robot-roster/internal/port/pool"
)

var _ portpool.Repository = (*Repository)(nil)

// Repository stores pools with their quota table and carried state as JSONB.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const poolColumns = `id, name, quotas, cooldown, state, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, p domainpool.Pool) (domainpool.Pool, error) {
	quotasJSON, err := json.Marshal(p.Quotas)
	if err != nil {
		return domainpool.Pool{}, fmt.Errorf("marshal quotas: %w", err)
	}
	stateJSON, err := json.Marshal(p.State)
	if err != nil {
		return domainpool.Pool{}, fmt.Errorf("marshal state: %w", err)
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO pools (id, name, quotas, cooldown, state, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+poolColumns,
		p.ID, p.Name, quotasJSON, p.Cooldown, stateJSON, p.CreatedAt, p.UpdatedAt,
	)
	out, err := scanPool(row)
	if err != nil {
		return domainpool.Pool{}, fmt.Errorf("insert pool: %w", err)
	}
	return out, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domainpool.Pool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+poolColumns+` FROM pools WHERE id = $1`, id)
	out, err := scanPool(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainpool.Pool{}, domainpool.ErrNotFound
		}
		return domainpool.Pool{}, fmt.Errorf("querying pool: %w", err)
	}
	return out, nil
}

func (r *Repository) List(ctx context.Context, filters domainpool.ListFilters) ([]domainpool.Pool, error) {
	query := `SELECT ` + poolColumns + ` FROM pools WHERE 1=1`

	args := []interface{}{}
	argIdx := 1

	if filters.Name != nil {
		query += fmt.Sprintf(" AND name = $%d", argIdx)
		args = append(args, *filters.Name)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing pools: %w", err)
	}
	defer rows.Close()

	var pools []domainpool.Pool
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pool: %w", err)
		}
		pools = append(pools, p)
	}
	return pools, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pools WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting pool: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainpool.ErrNotFound
	}
	return nil
}

func (r *Repository) SaveState(ctx context.Context, id uuid.UUID, state eligibility.State) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE pools SET state = $1, updated_at = NOW() WHERE id = $2`, stateJSON, id,
	)
	if err != nil {
		return fmt.Errorf("saving pool state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainpool.ErrNotFound
	}
	return nil
}

func scanPool(row pgx.Row) (domainpool.Pool, error) {
	var (
		out        domainpool.Pool
		quotasJSON []byte
		stateJSON  []byte
	)
	if err := row.Scan(&out.ID, &out.Name, &quotasJSON, &out.Cooldown, &stateJSON, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return domainpool.Pool{}, err
	}
	if err := json.Unmarshal(quotasJSON, &out.Quotas); err != nil {
		return domainpool.Pool{}, fmt.Errorf("decode quotas: %w", err)
	}
	if err := json.Unmarshal(stateJSON, &out.State); err != nil {
		return domainpool.Pool{}, fmt.Errorf("decode state: %w", err)
	}
	if out.Quotas == nil {
		out.Quotas = eligibility.QuotaTable{}
	}
	if out.State.WorkerRecords == nil {
		out.State.WorkerRecords = make(map[int64]eligibility.Record)
	}
	return out, nil
}
