package pool

import (
	"context"

	"github.com/google/uuid"

	"github.com/alanyang/robot-roster/internal/domain/eligibility"
	domainpool "github.com/alanyang/robot-roster/internal/domain/pool"
)

// Repository persists pools and their carried eligibility state.
type Repository interface {
	Create(ctx context.Context, p domainpool.Pool) (domainpool.Pool, error)
	GetByID(ctx context.Context, id uuid.UUID) (domainpool.Pool, error)
	List(ctx context.Context, filters domainpool.ListFilters) ([]domainpool.Pool, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// SaveState replaces the stored state of a pool wholesale.
	SaveState(ctx context.Context, id uuid.UUID, state eligibility.State) error
}
