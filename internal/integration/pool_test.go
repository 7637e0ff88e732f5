//go:build integration

package integration_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgeventbus "github.com/alanyang/robot-roster/internal/adapter/postgres/eventbus"
	pgidem "github.com/alanyang/robot-roster/internal/adapter/postgres/idempotency"
	pglocker "github.com/alanyang/robot-roster/internal/adapter/postgres/locker"
	pgpool "github.com/alanyang/robot-roster/internal/adapter/postgres/pool"
	"github.com/alanyang/robot-roster/internal/domain/eligibility"
	"github.com/alanyang/robot-roster/internal/domain/event"
	portidem "github.com/alanyang/robot-roster/internal/port/idempotency"
	poolsvc "github.com/alanyang/robot-roster/internal/service/pool"
	"github.com/alanyang/robot-roster/internal/testutil"
)

// ── test harness ──────────────────────────────────────────────────────────────

type testServices struct {
	db       *pgxpool.Pool
	bus      *pgeventbus.EventBus
	poolSvc  *poolsvc.Service
	notifier *testutil.CaptureNotifier
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	db := testutil.SetupTestDB(t)

	bus := pgeventbus.New(db)
	notifier := &testutil.CaptureNotifier{}
	svc := poolsvc.NewService(pgpool.New(db), bus, pglocker.New(db), notifier, nil)

	return &testServices{db: db, bus: bus, poolSvc: svc, notifier: notifier}
}

func uniqueName() string {
	return "integration-" + uuid.New().String()[:8]
}

// ── pool flow ─────────────────────────────────────────────────────────────────

func TestPoolFlow_IncrementalEvaluation(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	p, err := ts.poolSvc.Create(ctx, uniqueName(),
		eligibility.Quotas(map[int64]int64{101: 2, 202: 2, 303: 2, 404: 2}), eligibility.Int(2))
	require.NoError(t, err)

	out, err := ts.poolSvc.Evaluate(ctx, p.ID, poolsvc.EvaluateInput{Batch: eligibility.Ints(101, 202)})
	require.NoError(t, err)
	assert.Equal(t, []int64{303, 404}, out.Eligible)

	out, err = ts.poolSvc.Evaluate(ctx, p.ID, poolsvc.EvaluateInput{Batch: eligibility.Ints(303, 404)})
	require.NoError(t, err)
	assert.Equal(t, []int64{101, 202}, out.Eligible)
	assert.Equal(t, 4, out.GlobalAssignmentCount)

	stored, err := ts.poolSvc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.State.GlobalAssignmentCount)
	assert.Len(t, stored.State.WorkerRecords, 4)

	assert.Len(t, ts.notifier.PoolNotifications(p.ID), 2)
}

func TestPoolFlow_CapacityLeavesStateUntouched(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	p, err := ts.poolSvc.Create(ctx, uniqueName(), eligibility.Quotas(map[int64]int64{1: 5}), eligibility.Int(0))
	require.NoError(t, err)
	_, err = ts.poolSvc.Evaluate(ctx, p.ID, poolsvc.EvaluateInput{Batch: eligibility.Ints(1)})
	require.NoError(t, err)

	ids := make([]int64, 100)
	for i := range ids {
		ids[i] = int64(i + 1000)
	}
	_, err = ts.poolSvc.Evaluate(ctx, p.ID, poolsvc.EvaluateInput{Batch: eligibility.Ints(ids...)})
	require.ErrorIs(t, err, eligibility.ErrCapacityExceeded)

	stored, err := ts.poolSvc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.State.GlobalAssignmentCount)
	assert.Len(t, stored.State.WorkerRecords, 1)
}

func TestPoolFlow_ConcurrentEvaluationsAreSerialised(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	p, err := ts.poolSvc.Create(ctx, uniqueName(), eligibility.Quotas(map[int64]int64{7: 100}), eligibility.Int(0))
	require.NoError(t, err)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ts.poolSvc.Evaluate(ctx, p.ID, poolsvc.EvaluateInput{Batch: eligibility.Ints(7)})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := ts.poolSvc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, workers, stored.State.GlobalAssignmentCount)
	assert.Equal(t, workers, stored.State.WorkerRecords[7].AssignmentCount)
}

func TestPoolFlow_EventsReachSubscribers(t *testing.T) {
	ts := newTestServices(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu  sync.Mutex
		got []event.Event
	)
	sub, err := ts.bus.Subscribe(ctx, event.ChannelPool, func(_ context.Context, e event.Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	p, err := ts.poolSvc.Create(ctx, uniqueName(), eligibility.Quotas(map[int64]int64{1: 1}), eligibility.Int(1))
	require.NoError(t, err)
	_, err = ts.poolSvc.Evaluate(ctx, p.ID, poolsvc.EvaluateInput{Batch: eligibility.Ints(1)})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		var created, evaluated bool
		for _, e := range got {
			if e.EntityID != p.ID {
				continue
			}
			created = created || e.Type == event.TypePoolCreated
			evaluated = evaluated || e.Type == event.TypePoolEvaluated
		}
		return created && evaluated
	}, 5*time.Second, 50*time.Millisecond)
}

// ── idempotency ───────────────────────────────────────────────────────────────

func TestIdempotency_FirstWriteWinsAndPurges(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	store := pgidem.New(ts.db)
	key := "it|" + uuid.New().String()

	_, ok, err := store.Check(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Store(ctx, key, portidem.Record{Status: 200, Body: []byte(`{"eligible":[1]}`)}))
	require.NoError(t, store.Store(ctx, key, portidem.Record{Status: 500, Body: []byte(`{}`)}))

	rec, ok, err := store.Check(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 200, rec.Status)
	assert.JSONEq(t, `{"eligible":[1]}`, string(rec.Body))

	n, err := store.Purge(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	_, ok, err = store.Check(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
