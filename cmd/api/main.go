package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"emailscheduler/internal/clock"
	"emailscheduler/internal/config"
	dbpkg "emailscheduler/internal/db"
	httpserver "emailscheduler/internal/http"
	"emailscheduler/internal/http/handler"
	"emailscheduler/internal/logging"
	"emailscheduler/internal/mailer"
	"emailscheduler/internal/repository"
	redisrepo "emailscheduler/internal/repository/redis"
	"emailscheduler/internal/scheduler"
	"emailscheduler/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New(logging.Config{})
		bootLogger.Fatal().Err(err).Msg("load config")
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	zone, err := clock.Load(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Msg("load timezone")
	}

	stores, err := dbpkg.Open(ctx, cfg, zone)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("open store")
	}
	defer stores.Close()

	var receipts repository.ReceiptRepository
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		receipts = redisrepo.NewReceiptRepository(redisClient, cfg.Redis.ReceiptTTL)
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, delivery receipts disabled")
	}

	sender, err := mailer.New(cfg.Mail, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("transport", cfg.Mail.Transport).Msg("build mail transport")
	}

	eventService := service.NewEventService(service.Dependencies{
		Events:     stores.Events,
		Recipients: stores.Recipients,
		Receipts:   receipts,
		Sender:     sender,
	}, service.EventServiceOptions{
		Zone:        zone,
		From:        cfg.Mail.From,
		SendTimeout: cfg.Mail.SendTimeout,
		Logger:      logger,
	})

	sched := scheduler.New(eventService, scheduler.Options{
		Interval: cfg.Scheduler.Interval,
		Location: zone.Location(),
		Logger:   logger,
	})

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Scheduler.AutoStart {
		if err := sched.Start(appCtx); err != nil {
			logger.Fatal().Err(err).Msg("start scheduler")
		}
	}

	router := httpserver.NewRouter(httpserver.Handlers{
		Control:    handler.NewControlHandler(sched, eventService),
		Events:     handler.NewEventHandler(eventService),
		Recipients: handler.NewRecipientHandler(eventService),
	}, logger)

	server := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}

	if err := sched.Stop(); err != nil && !errors.Is(err, scheduler.ErrNotRunning) {
		logger.Error().Err(err).Msg("scheduler stop error")
	}
}
