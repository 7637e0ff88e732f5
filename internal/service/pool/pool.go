package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"

	"github.com/alanyang/robot-roster/internal/domain/eligibility"
	"github.com/alanyang/robot-roster/internal/domain/event"
	domainpool "github.com/alanyang/robot-roster/internal/domain/pool"
	portbus "github.com/alanyang/robot-roster/internal/port/eventbus"
	portlocker "github.com/alanyang/robot-roster/internal/port/locker"
	portmetrics "github.com/alanyang/robot-roster/internal/port/metrics"
	portnotifier "github.com/alanyang/robot-roster/internal/port/notifier"
	portpool "github.com/alanyang/robot-roster/internal/port/pool"
)

// Service owns pool lifecycle and runs evaluations against each pool's
// carried state.
// [DIP] Depends on ports, never on adapters or transport.
type Service struct {
	repo     portpool.Repository
	bus      portbus.EventBus
	locker   portlocker.AdvisoryLocker
	notifier portnotifier.PoolNotifier
	metrics  portmetrics.Recorder

	defaultCooldown int
}

// Option tunes a Service at construction.
type Option func(*Service)

// WithDefaultCooldown sets the cooldown given to pools created without a
// valid one. Negative values are ignored.
func WithDefaultCooldown(cooldown int) Option {
	return func(s *Service) {
		if cooldown >= 0 {
			s.defaultCooldown = cooldown
		}
	}
}

func NewService(
	repo portpool.Repository,
	bus portbus.EventBus,
	locker portlocker.AdvisoryLocker,
	notifier portnotifier.PoolNotifier,
	metrics portmetrics.Recorder,
	opts ...Option,
) *Service {
	if metrics == nil {
		metrics = portmetrics.Nop{}
	}
	s := &Service{
		repo:            repo,
		bus:             bus,
		locker:          locker,
		notifier:        notifier,
		metrics:         metrics,
		defaultCooldown: eligibility.DefaultCooldown,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EvaluateInput is one incremental update for a pool. A null Cooldown means
// "use the pool's cooldown".
type EvaluateInput struct {
	Batch    []eligibility.Value    `json:"batch"`
	Quotas   eligibility.QuotaTable `json:"quotas"`
	Cooldown eligibility.Value      `json:"cooldown"`
}

type Evaluation struct {
	PoolID                uuid.UUID `json:"pool_id"`
	Eligible              []int64   `json:"eligible"`
	GlobalAssignmentCount int       `json:"global_assignment_count"`
}

func (s *Service) Create(ctx context.Context, name string, quotas eligibility.QuotaTable, cooldown eligibility.Value) (domainpool.Pool, error) {
	if !eligibility.IsNonNegativeInt(cooldown, false) {
		cooldown = eligibility.Int(int64(s.defaultCooldown))
	}
	p := domainpool.New(name, quotas, cooldown)

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return domainpool.Pool{}, fmt.Errorf("create pool: %w", err)
	}

	s.publish(ctx, event.TypePoolCreated, created.ID)
	slog.InfoContext(ctx, "pool created", "pool_id", created.ID, "name", created.Name, "cooldown", created.Cooldown)
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domainpool.Pool, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domainpool.Pool{}, fmt.Errorf("get pool: %w", err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, filters domainpool.ListFilters) ([]domainpool.Pool, error) {
	pools, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}
	return pools, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete pool: %w", err)
	}
	s.publish(ctx, event.TypePoolDeleted, id)
	return nil
}

// Evaluate folds in.Batch into the pool's state and returns the robots that
// may take the next task. The pool lock is held from load to save; a
// capacity failure leaves the stored state as it was.
func (s *Service) Evaluate(ctx context.Context, id uuid.UUID, in EvaluateInput) (Evaluation, error) {
	var (
		out  Evaluation
		name string
	)
	err := s.locker.WithLock(ctx, LockKey(id), func(ctx context.Context) error {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get pool: %w", err)
		}
		name = p.Name

		cooldown := in.Cooldown
		if cooldown.IsNull() {
			cooldown = eligibility.Int(int64(p.Cooldown))
		}

		start := time.Now()
		eligible, err := eligibility.Evaluate(in.Batch, in.Quotas, cooldown, &p.State)
		if err != nil {
			return err
		}
		s.metrics.ObserveEvaluation(p.Name, len(in.Batch), len(eligible), time.Since(start))

		if err := s.repo.SaveState(ctx, id, p.State); err != nil {
			return fmt.Errorf("save pool state: %w", err)
		}

		out = Evaluation{
			PoolID:                id,
			Eligible:              eligible,
			GlobalAssignmentCount: p.State.GlobalAssignmentCount,
		}
		return nil
	})
	if errors.Is(err, eligibility.ErrCapacityExceeded) {
		s.metrics.CapacityExceeded(name)
		s.publish(ctx, event.TypePoolRejected, id)
		slog.InfoContext(ctx, "pool evaluation rejected", "pool_id", id, "batch", len(in.Batch))
		return Evaluation{}, fmt.Errorf("evaluate pool %s: %w", id, err)
	}
	if err != nil {
		return Evaluation{}, fmt.Errorf("evaluate pool: %w", err)
	}

	s.publish(ctx, event.TypePoolEvaluated, id)
	if s.notifier != nil {
		if err := s.notifier.NotifyPoolWatchers(ctx, id, map[string]any{
			"event":                   string(event.TypePoolEvaluated),
			"pool_id":                 id.String(),
			"eligible":                out.Eligible,
			"global_assignment_count": out.GlobalAssignmentCount,
		}); err != nil {
			slog.ErrorContext(ctx, "failed to notify pool watchers", "pool_id", id, "error", err)
		}
	}
	return out, nil
}

// Preview runs a one-shot evaluation with no carried state.
func (s *Service) Preview(ctx context.Context, in EvaluateInput) ([]int64, error) {
	start := time.Now()
	eligible, err := eligibility.Evaluate(in.Batch, in.Quotas, in.Cooldown, nil)
	if err != nil {
		s.metrics.CapacityExceeded("")
		return nil, fmt.Errorf("preview eligibility: %w", err)
	}
	s.metrics.ObserveEvaluation("", len(in.Batch), len(eligible), time.Since(start))
	slog.DebugContext(ctx, "eligibility preview", "batch", len(in.Batch), "eligible", len(eligible))
	return eligible, nil
}

// Reset clears the pool's assignment history and restores its quotas.
func (s *Service) Reset(ctx context.Context, id uuid.UUID) (domainpool.Pool, error) {
	var reset domainpool.Pool
	err := s.locker.WithLock(ctx, LockKey(id), func(ctx context.Context) error {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get pool: %w", err)
		}
		p.Reset()
		if err := s.repo.SaveState(ctx, id, p.State); err != nil {
			return fmt.Errorf("save pool state: %w", err)
		}
		reset = p
		return nil
	})
	if err != nil {
		return domainpool.Pool{}, fmt.Errorf("reset pool: %w", err)
	}

	s.publish(ctx, event.TypePoolReset, id)
	return reset, nil
}

func (s *Service) publish(ctx context.Context, t event.Type, id uuid.UUID) {
	if err := s.bus.Publish(ctx, event.New(t, id)); err != nil {
		slog.ErrorContext(ctx, "failed to publish pool event", "type", t, "pool_id", id, "error", err)
	}
}

// LockKey maps a pool to the int64 key used for its advisory lock.
func LockKey(id uuid.UUID) int64 {
	return int64(xxh3.Hash(id[:]))
}
