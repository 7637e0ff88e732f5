package pool

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/alanyang/robot-roster/internal/domain/eligibility"
)

// Pool is a named group of robots sharing one eligibility state. Each pool
// owns exactly one State, so evaluations of a pool must be serialised.
type Pool struct {
	ID        uuid.UUID              `json:"id"`
	Name      string                 `json:"name"`
	Quotas    eligibility.QuotaTable `json:"quotas"`
	Cooldown  int                    `json:"cooldown"`
	State     eligibility.State      `json:"state"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func New(name string, quotas eligibility.QuotaTable, cooldown eligibility.Value) Pool {
	now := time.Now().UTC()
	if quotas == nil {
		quotas = eligibility.QuotaTable{}
	}
	return Pool{
		ID:        uuid.New(),
		Name:      name,
		Quotas:    quotas.Clone(),
		Cooldown:  eligibility.ResolveCooldown(cooldown),
		State:     *eligibility.NewState(quotas),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Reset forgets every assignment and reinstates the quotas the pool was
// created with.
func (p *Pool) Reset() {
	p.State = *eligibility.NewState(p.Quotas)
	p.UpdatedAt = time.Now().UTC()
}

// Snapshot is the pool view returned to clients.
type Snapshot struct {
	ID                    uuid.UUID `json:"id"`
	Name                  string    `json:"name"`
	Cooldown              int       `json:"cooldown"`
	KnownWorkers          int       `json:"known_workers"`
	GlobalAssignmentCount int       `json:"global_assignment_count"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (p *Pool) Snapshot() Snapshot {
	return Snapshot{
		ID:                    p.ID,
		Name:                  p.Name,
		Cooldown:              p.Cooldown,
		KnownWorkers:          len(p.State.WorkerRecords),
		GlobalAssignmentCount: p.State.GlobalAssignmentCount,
		UpdatedAt:             p.UpdatedAt,
	}
}

type ListFilters struct {
	Name *string
}

// ErrNotFound is returned by repositories when no pool has the given ID.
var ErrNotFound = errors.New("pool not found")
