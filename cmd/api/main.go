package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/helpdesk-tools/ticket-triage/internal/api/http"
	"github.com/helpdesk-tools/ticket-triage/internal/api/http/handlers"
	"github.com/helpdesk-tools/ticket-triage/internal/auth"
	"github.com/helpdesk-tools/ticket-triage/internal/config"
	"github.com/helpdesk-tools/ticket-triage/internal/events"
	"github.com/helpdesk-tools/ticket-triage/internal/observability"
	"github.com/helpdesk-tools/ticket-triage/internal/persistence"
	"github.com/helpdesk-tools/ticket-triage/internal/repository"
	"github.com/helpdesk-tools/ticket-triage/internal/service"
	"github.com/helpdesk-tools/ticket-triage/internal/triage"
	"github.com/helpdesk-tools/ticket-triage/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tickets, database, closeStore, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to open ticket store", zap.Error(err))
	}
	defer closeStore()

	redisStore := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redisStore.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(dispatcher, logger, cfg.Notification)

	triageDeps := service.TriageDependencies{
		Engine:   triage.LoadTriager(cfg.Model.Path, logger),
		CacheTTL: cfg.Redis.CacheTTL(),
		Metrics:  metrics,
		Logger:   logger,
	}
	healthDeps := handlers.HealthDependencies{
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
		Database:    database,
		Metrics:     metrics,
	}
	if redisStore != nil {
		triageDeps.Cache = redisStore.Cache()
		healthDeps.Redis = redisStore
	}
	triageService := service.NewTriageService(triageDeps)
	healthDeps.Model = triageService

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: tickets,
		Triage:     triageService,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	routes := httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(healthDeps),
		Tickets:   handlers.NewTicketsHandler(ticketService),
		Triage:    handlers.NewTriageHandler(triageService),
		Dashboard: handlers.NewDashboardHandler(ticketService, logger),
	}
	if cfg.Auth.AuthEnabled() {
		tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
		routes.AuthMiddleware = auth.NewAuthMiddleware(tokens)
		logger.Info("bearer auth enabled on mutating routes")
	}

	app := httptransport.NewApp(cfg.App.Name, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, routes)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		return app.Listen(cfg.App.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}

// openStore selects the ticket repository for the configured driver and
// applies migrations when enabled.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (repository.TicketRepository, handlers.Pinger, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, nil, nil, err
			}
		}
		return repository.NewPostgresTicketRepository(pg.PoolHandle()), pg, pg.Close, nil
	default:
		db, err := persistence.NewSQLite(ctx, cfg, logger, persistence.WithRetry(cfg.ConnectRetries, cfg.ConnectRetryDelay()))
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.RunMigrations {
			if err := persistence.RunSQLiteMigrations(ctx, db.DB, logger); err != nil {
				db.Close()
				return nil, nil, nil, err
			}
		}
		return repository.NewSQLiteTicketRepository(db.DB), db, db.Close, nil
	}
}
