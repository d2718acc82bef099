package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/tastemap/backend/internal/audit"
	"github.com/emilythestrangee/tastemap/backend/internal/auth"
	"github.com/emilythestrangee/tastemap/backend/internal/config"
	"github.com/emilythestrangee/tastemap/backend/internal/database"
	"github.com/emilythestrangee/tastemap/backend/internal/geocode"
	"github.com/emilythestrangee/tastemap/backend/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(database.Options{DSN: cfg.DatabaseURL, Verbose: cfg.IsDevelopment()})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db.GetDB()); err != nil {
		return err
	}

	var sessions auth.Sessions = auth.NopSessions{}
	if cfg.RedisAddr != "" {
		client, err := auth.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer client.Close()
		sessions = auth.NewRedisSessions(client)
		logger.Info("session store ready", "addr", cfg.RedisAddr)
	} else {
		logger.Warn("REDIS_ADDR not set, logout cannot revoke a token before it expires")
	}

	var auditor audit.Publisher = audit.NewLogPublisher(logger)
	if len(cfg.KafkaBrokers) > 0 {
		auditor = audit.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		logger.Info("audit events go to kafka", "topic", cfg.KafkaAuditTopic)
	}
	defer auditor.Close()

	srv := server.New(server.Options{
		Config:   cfg,
		DB:       db,
		Tokens:   auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL),
		Sessions: sessions,
		Geocoder: geocode.NewClient(cfg.GeocoderURL, cfg.GeocoderAPIKey),
		Audit:    auditor,
		Logger:   logger,
	}).HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
