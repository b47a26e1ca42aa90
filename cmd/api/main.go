package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/elvificent/supportdesk/internal/api/http"
	"github.com/elvificent/supportdesk/internal/api/http/handlers"
	"github.com/elvificent/supportdesk/internal/auth"
	"github.com/elvificent/supportdesk/internal/blob"
	"github.com/elvificent/supportdesk/internal/config"
	"github.com/elvificent/supportdesk/internal/events"
	"github.com/elvificent/supportdesk/internal/observability"
	"github.com/elvificent/supportdesk/internal/persistence"
	"github.com/elvificent/supportdesk/internal/repository"
	"github.com/elvificent/supportdesk/internal/service"
	"github.com/elvificent/supportdesk/internal/worker"
)

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store := repository.NewStore(pg.PoolHandle())

	if cfg.Postgres.RunSeed {
		if err := persistence.Seed(ctx, store, cfg, logger); err != nil {
			logger.Fatal("failed to seed database", zap.Error(err))
		}
	}

	blobStore, err := blob.NewLocalStore(cfg.Uploads.Dir)
	if err != nil {
		logger.Fatal("failed to init blob store", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	authService := service.NewAuthService(cfg, store)
	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
		StaleAfter: cfg.Lifecycle.StaleAfter(),
	})
	engineerService := service.NewEngineerService(store, cfg.Auth.BcryptCost)
	accountService := service.NewAccountService(store, cfg.Auth.BcryptCost)
	sessionService := service.NewSessionService(store, redis.Client, logger)
	catalogService := service.NewCatalogService(store)
	attachmentService := service.NewAttachmentService(store, blobStore, cfg.Uploads.MaxSizeBytes)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), store)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, notificationService),
		Tickets:        handlers.NewTicketsHandler(ticketService, attachmentService),
		Engineers:      handlers.NewEngineersHandler(engineerService),
		Accounts:       handlers.NewAccountsHandler(accountService),
		Sessions:       handlers.NewSessionsHandler(sessionService),
		Catalog:        handlers.NewCatalogHandler(catalogService),
		AuthMiddleware: authMiddleware,
	})

	autoClose := worker.NewAutoCloseWorker(ticketService, logger, cfg.Lifecycle.SweepInterval())
	autoClose.Start(ctx)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	autoClose.Stop()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
