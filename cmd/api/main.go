package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/complaint-portal/internal/api/http"
	"github.com/spec-kit/complaint-portal/internal/api/http/handlers"
	"github.com/spec-kit/complaint-portal/internal/auth"
	"github.com/spec-kit/complaint-portal/internal/config"
	"github.com/spec-kit/complaint-portal/internal/events"
	"github.com/spec-kit/complaint-portal/internal/observability"
	"github.com/spec-kit/complaint-portal/internal/persistence"
	"github.com/spec-kit/complaint-portal/internal/repository"
	"github.com/spec-kit/complaint-portal/internal/service"
	"github.com/spec-kit/complaint-portal/internal/worker"
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

	redisStore := persistence.NewRedis(cfg.Redis, logger)
	defer redisStore.Close()

	pool := pg.PoolHandle()
	repos := repository.NewRepositories(pool)
	uow := repository.NewUnitOfWork(pool)

	rules, err := repos.Rules.LoadRules(ctx)
	if err != nil {
		logger.Fatal("failed to load progression rules", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.AccessTokenTTLMinutes)*time.Minute)

	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		Repos:      repos,
		UnitOfWork: uow,
		Rules:      rules,
		Dispatcher: dispatcher,
	})
	approvalService := service.NewApprovalService(service.ApprovalDependencies{
		Repos:      repos,
		UnitOfWork: uow,
		Dispatcher: dispatcher,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		Repos:      repos,
		UnitOfWork: uow,
		Dispatcher: dispatcher,
	})
	lockService := service.NewLockService(service.LockDependencies{
		Repos:      repos,
		UnitOfWork: uow,
		Dispatcher: dispatcher,
	})
	reopenService := service.NewReopenService(service.ReopenDependencies{
		Repos:      repos,
		UnitOfWork: uow,
		Dispatcher: dispatcher,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Repos:    repos,
		Redis:    redisStore.ClientHandle(),
		QueueKey: cfg.Notification.QueueKey,
		Logger:   logger,
	})
	notificationService.RegisterHandlers(dispatcher)

	authService := service.NewAuthService(service.AuthDependencies{
		Repos:  repos,
		Tokens: tokens,
		Config: cfg.Auth,
	})
	accountService := service.NewAccountService(uow, logger)

	notificationWorker := worker.NewNotificationWorker(redisStore.ClientHandle(), cfg.Notification, logger)
	go notificationWorker.Run(ctx)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redisStore),
		Users:           handlers.NewUsersHandler(authService, accountService),
		Complaints:      handlers.NewComplaintsHandler(complaintService, approvalService, reopenService),
		AdminComplaints: handlers.NewAdminComplaintsHandler(complaintService, approvalService, assignmentService, lockService, reopenService),
		Notifications:   handlers.NewNotificationsHandler(notificationService),
		Tokens:          tokens,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()

	requests, errs := metrics.Totals()
	logger.Info("served", zap.Int64("requests", requests), zap.Int64("errors", errs))
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
