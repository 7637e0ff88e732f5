package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/alanyang/robot-roster/internal/adapter/memory"
	pgdb "github.com/alanyang/robot-roster/internal/adapter/postgres"
	pgeventbus "github.com/alanyang/robot-roster/internal/adapter/postgres/eventbus"
	pgidem "github.com/alanyang/robot-roster/internal/adapter/postgres/idempotency"
	pglocker "github.com/alanyang/robot-roster/internal/adapter/postgres/locker"
	pgpool "github.com/alanyang/robot-roster/internal/adapter/postgres/pool"
	promadapter "github.com/alanyang/robot-roster/internal/adapter/prometheus"
	"github.com/alanyang/robot-roster/internal/config"
	"github.com/alanyang/robot-roster/internal/domain/eligibility"
	domainpool "github.com/alanyang/robot-roster/internal/domain/pool"
	porteventbus "github.com/alanyang/robot-roster/internal/port/eventbus"
	portidem "github.com/alanyang/robot-roster/internal/port/idempotency"
	portlocker "github.com/alanyang/robot-roster/internal/port/locker"
	portpool "github.com/alanyang/robot-roster/internal/port/pool"
	poolsvc "github.com/alanyang/robot-roster/internal/service/pool"

	"github.com/alanyang/robot-roster/internal/transport"
	mcptransport "github.com/alanyang/robot-roster/internal/transport/mcp"
)

// App holds the top-level resources needed to run and gracefully stop the server.
type App struct {
	// Pool is nil when running on the in-memory store.
	Pool      *pgxpool.Pool
	Server    *http.Server
	PoolSvc   *poolsvc.Service
	MCPServer *mcptransport.Server
	Metrics   *prometheus.Registry
}

// Close releases the database pool, if any.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

type adapters struct {
	repo   portpool.Repository
	bus    porteventbus.EventBus
	locker portlocker.AdvisoryLocker
	idem   portidem.Store
}

// Build is the composition root: the only place concrete types are wired to their
// interface dependencies.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	// ── Storage ──────────────────────────────────────────────────────────────
	var (
		db  *pgxpool.Pool
		ads adapters
	)
	switch cfg.Store {
	case config.StoreMemory:
		ads = adapters{
			repo:   memory.NewPoolRepository(),
			bus:    memory.NewEventBus(),
			locker: memory.NewLocker(),
			idem:   memory.NewIdempotencyStore(cfg.IdempotencyTTL),
		}
	default:
		var err error
		db, err = pgdb.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := pgdb.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
		ads = adapters{
			repo:   pgpool.New(db),
			bus:    pgeventbus.New(db),
			locker: pglocker.New(db),
			idem:   pgidem.New(db),
		}
	}

	// ── Metrics ──────────────────────────────────────────────────────────────
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := promadapter.New(registry, "")

	// ── Services ─────────────────────────────────────────────────────────────
	reg := mcptransport.NewSessionRegistry()
	poolSvcInstance := poolsvc.NewService(ads.repo, ads.bus, ads.locker, reg, recorder,
		poolsvc.WithDefaultCooldown(cfg.DefaultCooldown),
	)
	mcpServer := mcptransport.New(reg, poolSvcInstance)

	if cfg.SeedFile != "" {
		seeds, err := config.LoadSeeds(cfg.SeedFile)
		if err != nil {
			closeDB(db)
			return nil, err
		}
		if err := seedPools(ctx, poolSvcInstance, seeds, cfg.DefaultCooldown); err != nil {
			closeDB(db)
			return nil, err
		}
	}

	// ── Transport ─────────────────────────────────────────────────────────────
	router := transport.NewRouter(ctx, transport.Deps{
		PoolSvc:  poolSvcInstance,
		Idem:     ads.idem,
		EventBus: ads.bus,
		MCP:      mcpServer.Handler(),
		Gatherer: registry,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	slog.Info("application wired", "port", cfg.Port, "store", cfg.Store)

	startJanitor(ctx, ads.idem, cfg.IdempotencyTTL, cfg.JanitorInterval)

	return &App{
		Pool:      db,
		Server:    server,
		PoolSvc:   poolSvcInstance,
		MCPServer: mcpServer,
		Metrics:   registry,
	}, nil
}

// seedPools creates every seeded pool whose name is not taken yet, so a
// restart against the same database does not duplicate pools.
func seedPools(ctx context.Context, svc *poolsvc.Service, seeds *config.Seeds, defaultCooldown int) error {
	for _, s := range seeds.Pools {
		name := s.Name
		existing, err := svc.List(ctx, domainpool.ListFilters{Name: &name})
		if err != nil {
			return fmt.Errorf("seeding pool %q: %w", name, err)
		}
		if len(existing) > 0 {
			slog.Debug("seed pool already exists", "name", name)
			continue
		}
		cooldown := eligibility.Int(int64(s.CooldownOr(defaultCooldown)))
		if _, err := svc.Create(ctx, name, eligibility.Quotas(s.Quotas), cooldown); err != nil {
			return fmt.Errorf("seeding pool %q: %w", name, err)
		}
	}
	return nil
}

func closeDB(db *pgxpool.Pool) {
	if db != nil {
		db.Close()
	}
}
