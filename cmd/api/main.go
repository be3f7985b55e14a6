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

	httptransport "github.com/spec-kit/stay-service/internal/api/http"
	"github.com/spec-kit/stay-service/internal/api/http/handlers"
	"github.com/spec-kit/stay-service/internal/auth"
	"github.com/spec-kit/stay-service/internal/config"
	"github.com/spec-kit/stay-service/internal/events"
	"github.com/spec-kit/stay-service/internal/observability"
	"github.com/spec-kit/stay-service/internal/persistence"
	"github.com/spec-kit/stay-service/internal/repository"
	"github.com/spec-kit/stay-service/internal/service"
	"github.com/spec-kit/stay-service/internal/worker"
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

	tracing, err := observability.InitTracing(ctx, cfg.App, cfg.Tracing)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	if pool == nil {
		logger.Fatal("POSTGRES_DSN is required")
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisClient := persistence.NewRedis(cfg.Redis, logger)
	defer redisClient.Close()

	metrics := observability.NewMetrics()
	txManager := persistence.NewTxManager(pool, cfg.Booking.TxMaxAttempts, logger, metrics)

	accountRepo := repository.NewAccountRepository(pool)
	listingRepo := repository.NewListingRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	couponRepo := repository.NewCouponRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	roleChangeRepo := repository.NewRoleChangeRepository(pool)

	dispatcher := events.NewDispatcher(logger)

	var forwarder *events.StreamForwarder
	if cfg.Events.StreamEnabled {
		publisher, err := events.NewRedisStreamPublisher(redisClient.Client, events.NewWatermillLogger(logger))
		if err != nil {
			logger.Fatal("failed to create event stream publisher", zap.Error(err))
		}
		forwarder = events.NewStreamForwarder(publisher, cfg.Events.StreamTopic)
	}
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(dispatcher, notificationService, forwarder)

	bookingService := service.NewBookingService(service.BookingDependencies{
		TxManager:       txManager,
		ListingRepo:     listingRepo,
		ReservationRepo: reservationRepo,
		Ledger:          service.NewLedgerService(accountRepo),
		Coupons:         service.NewCouponService(couponRepo, time.Now),
		Availability:    service.NewAvailabilityChecker(reservationRepo),
		Dispatcher:      dispatcher,
		Metrics:         metrics,
		Logger:          logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	roleChangeService := service.NewRoleChangeService(service.RoleChangeDependencies{
		TxManager:      txManager,
		RoleChangeRepo: roleChangeRepo,
		AccountRepo:    accountRepo,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, accountRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redisClient),
		Bookings:       handlers.NewBookingsHandler(bookingService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		RoleRequests:   handlers.NewRoleRequestsHandler(roleChangeService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics.Handler(),
		Idempotency: httptransport.Idempotency(httptransport.IdempotencyConfig{
			Redis:  redisClient.Client,
			TTL:    cfg.Booking.IdempotencyTTL(),
			Logger: logger,
		}),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	dispatcher.Wait()
	if forwarder != nil {
		if err := forwarder.Close(); err != nil {
			logger.Warn("close event forwarder", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
