//go:build integration

package pool_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgpool "github.com/alanyang/robot-roster/internal/adapter/postgres/pool"
	"github.com/alanyang/robot-roster/internal/domain/eligibility"
	domainpool "github.com/alanyang/robot-roster/internal/domain/pool"
	"github.com/alanyang/robot-roster/internal/testutil"
)

func newTestPool() domainpool.Pool {
	return domainpool.New(
		"test-"+uuid.New().String()[:8],
		eligibility.Quotas(map[int64]int64{101: 2, 202: 1}),
		eligibility.Int(2),
	)
}

func TestPoolRepo_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := pgpool.New(db)

	p := newTestPool()
	created, err := repo.Create(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, p.ID, created.ID)
	assert.Equal(t, p.Name, created.Name)
	assert.Equal(t, 2, created.Cooldown)
	assert.Equal(t, p.Quotas, created.Quotas)
	assert.Equal(t, p.Quotas, created.State.QuotaTable)
}

func TestPoolRepo_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		ctx := context.Background()
		repo := pgpool.New(db)

		p := newTestPool()
		_, err := repo.Create(ctx, p)
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
		assert.NotNil(t, got.State.WorkerRecords)
	})

	t.Run("not found returns ErrNotFound", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := pgpool.New(db)

		_, err := repo.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, domainpool.ErrNotFound)
	})
}

func TestPoolRepo_SaveState_RoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := pgpool.New(db)

	p := newTestPool()
	_, err := repo.Create(ctx, p)
	require.NoError(t, err)

	batch := []eligibility.Value{eligibility.Int(101), eligibility.String("_"), eligibility.Int(202)}
	_, err = eligibility.Evaluate(batch, nil, eligibility.Int(0), &p.State)
	require.NoError(t, err)
	require.NoError(t, repo.SaveState(ctx, p.ID, p.State))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.State, got.State)
	assert.Equal(t, 3, got.State.GlobalAssignmentCount)
}

func TestPoolRepo_SaveState_UnknownPool(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := pgpool.New(db)

	err := repo.SaveState(context.Background(), uuid.New(), *eligibility.NewState(nil))
	assert.ErrorIs(t, err, domainpool.ErrNotFound)
}

func TestPoolRepo_ListByName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := pgpool.New(db)

	p := newTestPool()
	_, err := repo.Create(ctx, p)
	require.NoError(t, err)

	got, err := repo.List(ctx, domainpool.ListFilters{Name: &p.Name})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, p.ID, got[0].ID)
}

func TestPoolRepo_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := pgpool.New(db)

	p := newTestPool()
	_, err := repo.Create(ctx, p)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), domainpool.ErrNotFound)
}

func TestPoolRepo_FloatQuotasKeepTheirKind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := pgpool.New(db)

	quotas := eligibility.QuotaTable{
		eligibility.Float(1e6):   eligibility.Int(2),
		eligibility.Int(101):     eligibility.Float(1e6),
		eligibility.Int(202):     eligibility.Float(2.5),
		eligibility.Float(303.0): eligibility.Int(1),
	}
	p := domainpool.New("floats-"+uuid.New().String()[:8], quotas, eligibility.Null())
	_, err := repo.Create(ctx, p)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, quotas, got.Quotas)
	assert.Equal(t, quotas, got.State.QuotaTable)
	assert.Equal(t, eligibility.KindFloat, got.Quotas[eligibility.Int(101)].Kind())

	eligible, err := eligibility.Evaluate(nil, nil, eligibility.Null(), &got.State)
	require.NoError(t, err)
	assert.Empty(t, eligible)
}

func TestPoolRepo_LargeCooldown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := pgpool.New(db)

	p := domainpool.New("slow-"+uuid.New().String()[:8], eligibility.Quotas(map[int64]int64{101: 1}), eligibility.Int(1<<40))
	created, err := repo.Create(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 1<<40, created.Cooldown)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1<<40, got.Cooldown)
}
