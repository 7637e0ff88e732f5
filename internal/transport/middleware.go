package transport

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/puzpuzpuz/xsync/v4"

	portidem "github.com/alanyang/robot-roster/internal/port/idempotency"
)

// IdempotencyHeader names the request header carrying a client-chosen key.
const IdempotencyHeader = "Idempotency-Key"

// noisyPaths are high-frequency read paths logged at Debug to keep Info clean.
var noisyPaths = map[string]bool{
	"/api/pools/": true,
	"/api/ws":     true,
	"/metrics":    true,
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.Method == "OPTIONS" {
			return
		}

		level := slog.LevelInfo
		if c.Request.Method == "GET" && noisyPaths[c.Request.URL.Path] {
			level = slog.LevelDebug
		}
		slog.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+IdempotencyHeader)
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// IdempotencyMiddleware replays the first stored response for a repeated
// Idempotency-Key on POST requests. Keys are scoped to the request path.
// A repeat that arrives while the first request is still running gets 409.
// Server errors are not stored, so the client may retry them.
func IdempotencyMiddleware(store portidem.Store) gin.HandlerFunc {
	inFlight := xsync.NewMap[string, struct{}]()

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if c.Request.Method != http.MethodPost || key == "" {
			c.Next()
			return
		}
		scoped := c.Request.URL.Path + "|" + key
		ctx := c.Request.Context()

		rec, ok, err := store.Check(ctx, scoped)
		if err != nil {
			slog.ErrorContext(ctx, "idempotency check failed", "key", key, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if ok {
			c.Header("Idempotent-Replayed", "true")
			c.Data(rec.Status, "application/json; charset=utf-8", rec.Body)
			c.Abort()
			return
		}

		if _, loaded := inFlight.LoadOrStore(scoped, struct{}{}); loaded {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": portidem.ErrConflict.Error()})
			return
		}
		defer inFlight.Delete(scoped)

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		status := w.Status()
		if status >= http.StatusInternalServerError {
			return
		}
		if err := store.Store(ctx, scoped, portidem.Record{Status: status, Body: w.body.Bytes()}); err != nil {
			slog.ErrorContext(ctx, "failed to store idempotent response", "key", key, "error", err)
		}
	}
}

type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
