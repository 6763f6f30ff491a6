package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/healthbook/booking-api/internal/config"
	"github.com/healthbook/booking-api/internal/email"
	adminHandler "github.com/healthbook/booking-api/internal/handler/admin"
	appointmentHandler "github.com/healthbook/booking-api/internal/handler/appointment"
	authHandler "github.com/healthbook/booking-api/internal/handler/auth"
	chatHandler "github.com/healthbook/booking-api/internal/handler/chat"
	doctorHandler "github.com/healthbook/booking-api/internal/handler/doctor"
	healthHandler "github.com/healthbook/booking-api/internal/handler/health"
	profileHandler "github.com/healthbook/booking-api/internal/handler/profile"
	"github.com/healthbook/booking-api/internal/middleware"
	"github.com/healthbook/booking-api/internal/repository/postgres"
	"github.com/healthbook/booking-api/internal/router"
	accountService "github.com/healthbook/booking-api/internal/service/account"
	appointmentService "github.com/healthbook/booking-api/internal/service/appointment"
	authService "github.com/healthbook/booking-api/internal/service/auth"
	chatService "github.com/healthbook/booking-api/internal/service/chat"
	doctorService "github.com/healthbook/booking-api/internal/service/doctor"
	profileService "github.com/healthbook/booking-api/internal/service/profile"
	"github.com/healthbook/booking-api/pkg/auth"
	"github.com/healthbook/booking-api/pkg/logger"
	"github.com/healthbook/booking-api/pkg/messaging/redis"
	"github.com/healthbook/booking-api/pkg/metrics"
	"github.com/healthbook/booking-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	accountRepo := postgres.NewAccountRepository(base)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	chatRepo := postgres.NewChatRepository(base)
	familyRepo := postgres.NewFamilyRepository(base)
	tokenRepo := postgres.NewTokenRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	jwtExpiry := cfg.JWT.Expiry
	if jwtExpiry == 0 {
		jwtExpiry = auth.TokenExpiry
	}
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, jwtExpiry)

	var emailSvc email.Service
	if cfg.SMTP.Host != "" {
		emailSvc = email.NewSMTPService(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			BaseURL:  cfg.SMTP.BaseURL,
		})
	} else {
		emailSvc = email.NewNoopService(appLogger)
	}

	authSvc := authService.NewService(accountRepo, tokenRepo, jwtSvc, emailSvc, appLogger)
	accountSvc := accountService.NewService(accountRepo, appointmentRepo, appLogger)
	doctorSvc := doctorService.NewService(accountRepo, appointmentRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, accountRepo)
	chatSvc := chatService.NewService(chatRepo, accountRepo)
	profileSvc := profileService.NewService(accountRepo, familyRepo)

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Security.AllowedOrigins
	}

	r := router.NewRouter(
		authMiddleware,
		healthHandler.NewHandler(db),
		authHandler.NewHandler(authSvc),
		doctorHandler.NewHandler(doctorSvc),
		profileHandler.NewHandler(profileSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		chatHandler.NewHandler(chatSvc),
		adminHandler.NewHandler(accountSvc),
		router.Config{
			RateLimitRPS:   cfg.Security.RequestsPerSecond,
			RateLimitBurst: cfg.Security.Burst,
			CORS:           corsCfg,
			MetricsPrefix:  "booking_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	zl := appLogger.Zerolog()
	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &zl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	outboxCtx, cancelOutbox := context.WithCancel(context.Background())
	defer cancelOutbox()

	outboxProcessor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:       cfg.Outbox.BatchSize,
			PollInterval:    cfg.Outbox.PollInterval,
			RetryAttempts:   cfg.Outbox.RetryAttempts,
			RetentionPeriod: cfg.Outbox.Retention,
		},
		appLogger,
		metrics.NewMetrics("booking_api", "outbox"),
	)
	go outboxProcessor.Start(outboxCtx)

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	cancelOutbox()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
