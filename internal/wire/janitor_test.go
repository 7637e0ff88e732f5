package wire

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/alanyang/robot-roster/internal/adapter/memory"
	"github.com/alanyang/robot-roster/internal/mocks"
	portidem "github.com/alanyang/robot-roster/internal/port/idempotency"
)

func TestPurgeExpired_UsesTTLCutoff(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)

	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	store.EXPECT().Purge(gomock.Any(), now.Add(-time.Hour)).Return(int64(2), nil)

	n := purgeExpired(context.Background(), store, time.Hour, func() time.Time { return now })
	assert.Equal(t, int64(2), n)
}

func TestPurgeExpired_ErrorIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)
	store.EXPECT().Purge(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("db down"))

	assert.Zero(t, purgeExpired(context.Background(), store, time.Minute, time.Now))
}

func TestStartJanitor_PurgesOnStartup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := memory.NewIdempotencyStore(time.Hour)
	assert.NoError(t, store.Store(ctx, "k", portidem.Record{Status: 201}))

	// A negative ttl puts the cutoff in the future, so the fresh record goes.
	startJanitor(ctx, store, -time.Minute, time.Hour)

	assert.Eventually(t, func() bool {
		_, ok, _ := store.Check(ctx, "k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}
