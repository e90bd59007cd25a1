package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/trackflow/tracking-service/internal/api"
	"github.com/trackflow/tracking-service/internal/api/handler"
	"github.com/trackflow/tracking-service/internal/core/ports"
	"github.com/trackflow/tracking-service/internal/core/service"
	"github.com/trackflow/tracking-service/internal/infrastructure/ai/gemini"
	"github.com/trackflow/tracking-service/internal/infrastructure/config"
	"github.com/trackflow/tracking-service/internal/infrastructure/db/mongo"
	"github.com/trackflow/tracking-service/internal/infrastructure/db/redis"
	"github.com/trackflow/tracking-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/trackflow/tracking-service/internal/infrastructure/provider"
	"github.com/trackflow/tracking-service/internal/infrastructure/queue"
	"github.com/trackflow/tracking-service/pkg/logger"
)

const (
	shutdownTimeout = 15 * time.Second
	devJWTSecret    = "trackflow-dev-secret"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background refresh workers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, using the development secret")
		cfg.JWTSecret = devJWTSecret
	}

	carriers, err := loadCarriers(cfg.CarriersFile)
	if err != nil {
		return err
	}

	// --- Storage ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	shipmentRepo := mongo.NewShipmentRepository(db)
	eventRepo := mongo.NewEventRepository(db)
	authRepo := mongo.NewAuthRepository(db)
	notificationRepo := mongo.NewNotificationRepository(db)
	shopRepo := mongo.NewShopRepository(db)
	if err := mongo.EnsureIndexes(ctx, shipmentRepo, eventRepo, authRepo, notificationRepo, shopRepo); err != nil {
		return err
	}

	checks := map[string]handler.Check{
		"mongodb": func(ctx context.Context) error { return mongo.Ping(ctx, db) },
	}

	// --- Coordination (optional) ---
	var (
		locker  ports.TrackingLocker
		limiter ports.RateLimiter
	)
	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, running without distributed lock and rate limits")
	} else {
		defer rdb.Close()
		locker = redis.NewLocker(rdb, cfg.Redis.LockTTL)
		if cfg.RateLimit.Enabled {
			limiter = redis.NewRateLimiter(rdb)
		}
		checks["redis"] = redisCheck(rdb)
	}

	// --- Collaborators ---
	trackingProvider, err := provider.NewRegistry().New(cfg.Provider)
	if err != nil {
		return err
	}

	summarizer, err := gemini.New(ctx, gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout,
	}, logger.Component("gemini"))
	if err != nil {
		return err
	}

	var notifier ports.StatusNotifier
	if cfg.AMQP.URL != "" {
		amqpClient := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.AMQP.URL, Exchange: cfg.AMQP.Exchange}, logger.Component("amqp"))
		if err := amqpClient.Connect(); err != nil {
			return err
		}
		defer amqpClient.Close()
		notifier = rabbitmq.NewPublisher(amqpClient, notificationRepo, logger.Component("amqp"))
	} else {
		log.Warn().Msg("AMQP_URL not set, status-change notifications disabled")
	}

	// --- Services ---
	trackingService := service.NewTrackingService(service.TrackingDeps{
		Carriers:   carriers,
		Provider:   trackingProvider,
		Shipments:  shipmentRepo,
		Events:     eventRepo,
		Tx:         mongo.NewTxRunner(mongoClient, cfg.Mongo.Transactions),
		Summarizer: summarizer,
		Locker:     locker,
		Notifier:   notifier,
		BaseURL:    cfg.PublicBaseURL,
	}, logger.Component("tracking"))
	shipmentService := service.NewShipmentService(shipmentRepo, eventRepo, logger.Component("shipments"))
	authService := service.NewAuthService(authRepo, cfg.JWTSecret, cfg.TokenTTL)
	notificationService := service.NewNotificationService(shipmentRepo, notificationRepo, logger.Component("notifications"))

	// --- Background refresh ---
	dispatcher := queue.NewDispatcher(cfg.Refresh.Workers, cfg.Refresh.QueueSize, trackingService, logger.Component("refresh"))
	refresher := queue.NewRefresher(shipmentRepo, dispatcher, queue.RefresherConfig{
		Interval:   cfg.Refresh.Interval,
		StaleAfter: cfg.Refresh.StaleAfter,
		BatchSize:  cfg.Refresh.BatchSize,
	}, logger.Component("refresh"))

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		JWTSecret:     cfg.JWTSecret,
		Tracking:      trackingService,
		Shipments:     shipmentService,
		Auth:          authService,
		Notifications: notificationService,
		Shops:         shopRepo,
		Summarizer:    summarizer,
		Carriers:      carriers,
		Refresh:       dispatcher,
		Limiter:       limiter,
		RateLimits: api.RateLimits{
			PublicLimit:  cfg.RateLimit.PublicLimit,
			PublicWindow: cfg.RateLimit.PublicWindow,
			APILimit:     cfg.RateLimit.APILimit,
			APIWindow:    cfg.RateLimit.APIWindow,
		},
		Checks: checks,
		Logger: logger.Component("http"),
	})

	g, gctx := errgroup.WithContext(ctx)
	dispatcher.Start(gctx)

	g.Go(func() error {
		log.Info().
			Str("port", cfg.Port).
			Str("provider", trackingProvider.Name()).
			Bool("ai_summaries", summarizer.Enabled()).
			Bool("notifications", notifier != nil).
			Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		refresher.Run(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	dispatcher.Wait()
	return err
}

func redisCheck(client *goredis.Client) handler.Check {
	return func(ctx context.Context) error {
		return redis.Ping(ctx, client, 2*time.Second)
	}
}
