package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alanyang/robot-roster/internal/domain/eligibility"
	domainpool "github.com/alanyang/robot-roster/internal/domain/pool"
	portpool "github.com/alanyang/robot-roster/internal/port/pool"
)

var _ portpool.Repository = (*PoolRepository)(nil)

// PoolRepository is a process-local pool store for single-replica
// deployments and tests. Pools are deep-copied on the way in and out.
type PoolRepository struct {
	mu    sync.RWMutex
	pools map[uuid.UUID]domainpool.Pool
}

func NewPoolRepository() *PoolRepository {
	return &PoolRepository{pools: make(map[uuid.UUID]domainpool.Pool)}
}

func (r *PoolRepository) Create(_ context.Context, p domainpool.Pool) (domainpool.Pool, error) {
	r.mu.Lock()
	r.pools[p.ID] = clonePool(p)
	r.mu.Unlock()
	return clonePool(p), nil
}

func (r *PoolRepository) GetByID(_ context.Context, id uuid.UUID) (domainpool.Pool, error) {
	r.mu.RLock()
	p, ok := r.pools[id]
	r.mu.RUnlock()
	if !ok {
		return domainpool.Pool{}, domainpool.ErrNotFound
	}
	return clonePool(p), nil
}

func (r *PoolRepository) List(_ context.Context, filters domainpool.ListFilters) ([]domainpool.Pool, error) {
	r.mu.RLock()
	out := make([]domainpool.Pool, 0, len(r.pools))
	for _, p := range r.pools {
		if filters.Name != nil && p.Name != *filters.Name {
			continue
		}
		out = append(out, clonePool(p))
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b domainpool.Pool) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (r *PoolRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pools[id]; !ok {
		return domainpool.ErrNotFound
	}
	delete(r.pools, id)
	return nil
}

func (r *PoolRepository) SaveState(_ context.Context, id uuid.UUID, state eligibility.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pools[id]
	if !ok {
		return domainpool.ErrNotFound
	}
	p.State = *state.Clone()
	p.UpdatedAt = time.Now().UTC()
	r.pools[id] = p
	return nil
}

func clonePool(p domainpool.Pool) domainpool.Pool {
	p.Quotas = p.Quotas.Clone()
	p.State = *p.State.Clone()
	return p
}

