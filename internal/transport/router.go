package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alanyang/robot-roster/internal/domain/event"
	porteventbus "github.com/alanyang/robot-roster/internal/port/eventbus"
	portidem "github.com/alanyang/robot-roster/internal/port/idempotency"
	poolsvc "github.com/alanyang/robot-roster/internal/service/pool"

	poolhandler "github.com/alanyang/robot-roster/internal/transport/pool"
	wshandler "github.com/alanyang/robot-roster/internal/transport/ws"
)

// Deps groups what NewRouter mounts. MCP and Gatherer are optional.
type Deps struct {
	PoolSvc  *poolsvc.Service
	Idem     portidem.Store
	EventBus porteventbus.EventBus
	MCP      http.Handler
	Gatherer prometheus.Gatherer
}

func NewRouter(ctx context.Context, d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware())
	r.Use(IdempotencyMiddleware(d.Idem))

	api := r.Group("/api")

	poolhandler.Register(api.Group("/pools"), d.PoolSvc)
	poolhandler.RegisterPreview(api.Group("/eligibility"), d.PoolSvc)

	hub := wshandler.NewHub()
	hub.Register(api.Group("/ws"))

	// One subscription for the pool channel; clients filter by pool_id.
	if _, err := d.EventBus.Subscribe(ctx, event.ChannelPool, func(_ context.Context, e event.Event) {
		hub.Broadcast(e)
	}); err != nil {
		slog.Error("failed to subscribe pool channel to WS hub", "error", err)
	}

	if d.MCP != nil {
		r.Any("/mcp", gin.WrapH(d.MCP))
	}
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
