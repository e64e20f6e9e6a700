package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/storefront/auth-system/docs" // swagger docs

	"github.com/storefront/auth-system/internal/api"
	"github.com/storefront/auth-system/internal/core/ports"
	"github.com/storefront/auth-system/internal/core/service"
	"github.com/storefront/auth-system/internal/infrastructure/config"
	mongodb "github.com/storefront/auth-system/internal/infrastructure/db/mongo"
	redisdb "github.com/storefront/auth-system/internal/infrastructure/db/redis"
	"github.com/storefront/auth-system/internal/infrastructure/mail"
	"github.com/storefront/auth-system/pkg/logger"
)

// @title Storefront Auth API
// @version 1.0
// @description Email/password authentication with email-OTP verified signup.
// @BasePath /
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Development(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	userRepo := mongodb.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("mongo index creation failed")
	}

	otpStore := redisdb.NewOTPStore(rdb)
	sessionStore := redisdb.NewSessionStore(rdb)

	// --- Mail delivery ---
	var sender ports.Mailer
	if cfg.SMTP.Host == "" {
		log.Warn().Msg("no SMTP host configured, logging codes to console")
		sender = mail.NewConsoleSender(log)
	} else {
		sender = mail.NewSMTPSender(mail.SMTPConfig{
			Host: cfg.SMTP.Host,
			Port: cfg.SMTP.Port,
			User: cfg.SMTP.User,
			Pass: cfg.SMTP.Pass,
			From: cfg.SMTP.From,
		})
	}
	dispatcher := mail.NewDispatcher(cfg.SMTP.Workers, sender, log)
	dispatcher.Start(ctx)

	// --- Services ---
	otpService := service.NewOTPService(otpStore, userRepo, dispatcher, log,
		service.WithOTPTTL(cfg.OTP.TTL),
		service.WithCooldown(cfg.OTP.Cooldown),
		service.WithMarkerTTL(cfg.OTP.MarkerTTL),
	)
	authService := service.NewSessionService(userRepo, sessionStore, otpStore, log,
		cfg.Session.TTL, cfg.Session.BcryptCost)

	e := api.NewRouter(api.Dependencies{
		OTPService:    otpService,
		AuthService:   authService,
		MongoDB:       db,
		Redis:         rdb,
		SecureCookies: !cfg.Development(),
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
