package transport_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alanyang/robot-roster/internal/adapter/memory"
	"github.com/alanyang/robot-roster/internal/mocks"
	portidem "github.com/alanyang/robot-roster/internal/port/idempotency"
	"github.com/alanyang/robot-roster/internal/transport"
)

func init() { gin.SetMode(gin.TestMode) }

// countingRouter answers POST /count with an ever-increasing counter.
func countingRouter(mw gin.HandlerFunc, status int) (*gin.Engine, *int) {
	calls := 0
	r := gin.New()
	r.Use(mw)
	r.POST("/count", func(c *gin.Context) {
		calls++
		c.JSON(status, gin.H{"calls": calls})
	})
	r.GET("/count", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})
	return r, &calls
}

func send(r *gin.Engine, method, key string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), method, "/count", strings.NewReader("{}"))
	if key != "" {
		req.Header.Set(transport.IdempotencyHeader, key)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysFirstResponse(t *testing.T) {
	r, calls := countingRouter(transport.IdempotencyMiddleware(memory.NewIdempotencyStore(time.Hour)), http.StatusOK)

	first := send(r, http.MethodPost, "k1")
	second := send(r, http.MethodPost, "k1")

	assert.Equal(t, 1, *calls)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
}

func TestIdempotency_PassThrough(t *testing.T) {
	tests := []struct {
		name   string
		method string
		key    string
	}{
		{name: "POST without key", method: http.MethodPost},
		{name: "GET with key", method: http.MethodGet, key: "k1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, calls := countingRouter(transport.IdempotencyMiddleware(memory.NewIdempotencyStore(time.Hour)), http.StatusOK)
			send(r, tt.method, tt.key)
			send(r, tt.method, tt.key)
			assert.Equal(t, 2, *calls)
		})
	}
}

func TestIdempotency_DistinctKeys(t *testing.T) {
	r, calls := countingRouter(transport.IdempotencyMiddleware(memory.NewIdempotencyStore(time.Hour)), http.StatusOK)
	send(r, http.MethodPost, "a")
	send(r, http.MethodPost, "b")
	assert.Equal(t, 2, *calls)
}

func TestIdempotency_ServerErrorsAreNotStored(t *testing.T) {
	r, calls := countingRouter(transport.IdempotencyMiddleware(memory.NewIdempotencyStore(time.Hour)), http.StatusInternalServerError)
	send(r, http.MethodPost, "k1")
	send(r, http.MethodPost, "k1")
	assert.Equal(t, 2, *calls)
}

func TestIdempotency_ClientErrorsAreReplayed(t *testing.T) {
	r, calls := countingRouter(transport.IdempotencyMiddleware(memory.NewIdempotencyStore(time.Hour)), http.StatusConflict)
	send(r, http.MethodPost, "k1")
	w := send(r, http.MethodPost, "k1")
	assert.Equal(t, 1, *calls)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestIdempotency_StoreErrorFailsRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)
	store.EXPECT().Check(gomock.Any(), gomock.Any()).Return(portidem.Record{}, false, errors.New("db down"))

	r, calls := countingRouter(transport.IdempotencyMiddleware(store), http.StatusOK)
	w := send(r, http.MethodPost, "k1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Zero(t, *calls)
}

func TestIdempotency_ConcurrentDuplicateConflicts(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})

	r := gin.New()
	r.Use(transport.IdempotencyMiddleware(memory.NewIdempotencyStore(time.Hour)))
	r.POST("/count", func(c *gin.Context) {
		close(entered)
		<-release
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		send(r, http.MethodPost, "k1")
	}()
	<-entered

	w := send(r, http.MethodPost, "k1")
	assert.Equal(t, http.StatusConflict, w.Code)

	close(release)
	wg.Wait()

	replay := send(r, http.MethodPost, "k1")
	require.Equal(t, http.StatusOK, replay.Code)
	assert.JSONEq(t, `{"ok":true}`, replay.Body.String())
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(transport.CORSMiddleware())
	r.POST("/count", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodOptions, "/count", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), transport.IdempotencyHeader)
}
