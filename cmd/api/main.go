package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/ngo-backend/internal/api"
	"github.com/baharkarakas/ngo-backend/internal/auth"
	"github.com/baharkarakas/ngo-backend/internal/config"
	"github.com/baharkarakas/ngo-backend/internal/db"
	"github.com/baharkarakas/ngo-backend/internal/gateway"
	"github.com/baharkarakas/ngo-backend/internal/logger"
	"github.com/baharkarakas/ngo-backend/internal/metrics"
	"github.com/baharkarakas/ngo-backend/internal/money"
	"github.com/baharkarakas/ngo-backend/internal/repository/postgres"
	"github.com/baharkarakas/ngo-backend/internal/services"
	"github.com/baharkarakas/ngo-backend/internal/worker"
)

func main() {
	cfg, err := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)
	if err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}

	// amounts go out as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := db.NewPool(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConns))
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.Migrate {
		if err := db.RunMigrations(ctx, dbPool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	metrics.Init()

	repos := postgres.NewRepositories(dbPool)
	wp := worker.NewPool(cfg.Workers, 1024)
	defer wp.Stop()

	var orders gateway.Orders
	switch cfg.Payment.Gateway {
	case "stub":
		log.Warn("using stub payment gateway")
		orders = gateway.Stub{}
	default:
		orders = gateway.NewRazorpay(cfg.Payment.KeyID, cfg.Payment.KeySecret)
	}

	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)
	audit := services.NewAuditRecorder(repos.AuditLogs, wp, log)

	userSvc := services.NewUserService(repos.Users, tm, log)
	donationSvc := services.NewDonationService(repos.Donations, orders, audit, log, services.PaymentConfig{
		KeyID:    cfg.Payment.KeyID,
		Secret:   cfg.Payment.KeySecret,
		Currency: cfg.Payment.Currency,
		Bounds:   money.Bounds{Min: cfg.Payment.MinAmount, Max: cfg.Payment.MaxAmount},
	})
	statsSvc := services.NewStatsService(repos.Users, repos.Donations, cfg.Payment.Currency)

	if err := userSvc.SeedAdmin(ctx, cfg.SuperAdminEmail, cfg.SuperAdminPassword); err != nil {
		log.Error("seed super admin", "err", err)
		os.Exit(1)
	}

	r := api.NewRouter(api.RouterDeps{
		Log:         log,
		Tokens:      tm,
		Users:       userSvc,
		Donations:   donationSvc,
		Stats:       statsSvc,
		CORSOrigins: cfg.CORSOrigins,
		RateRPS:     cfg.RateRPS,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env, "gateway", cfg.Payment.Gateway)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
}
