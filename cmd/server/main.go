// Package main is the entry point for the CivicDesk API server.
// Citizens report civic issues with a photo and location; district
// employees triage them and Super Admins manage staff, authorities and
// analytics.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DeepakPatel004/CivicDesk/internal/access"
	"github.com/DeepakPatel004/CivicDesk/internal/auth"
	"github.com/DeepakPatel004/CivicDesk/internal/config"
	"github.com/DeepakPatel004/CivicDesk/internal/database"
	"github.com/DeepakPatel004/CivicDesk/internal/handlers"
	"github.com/DeepakPatel004/CivicDesk/internal/mail"
	"github.com/DeepakPatel004/CivicDesk/internal/ratelimit"
	"github.com/DeepakPatel004/CivicDesk/internal/repository"
	"github.com/DeepakPatel004/CivicDesk/internal/services"
	"github.com/DeepakPatel004/CivicDesk/internal/storage"
	"github.com/DeepakPatel004/CivicDesk/internal/tracing"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const version = "1.0.0"

// redisPinger adapts the Redis client to the readiness probe.
type redisPinger struct{ rdb *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.rdb.Ping(ctx).Err() }

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	var logger *zap.Logger
	if cfg.IsDevelopment() {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	sugar.Infow("Starting CivicDesk server",
		"port", cfg.Port,
		"env", cfg.Environment,
		"daily_report_limit", cfg.DailyReportLimit,
	)

	tz, err := cfg.Location()
	if err != nil {
		sugar.Fatalf("Invalid time zone: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, sugar, tracing.Options{
		ServiceName: "civicdesk",
		Version:     version,
		Environment: cfg.Environment,
		Insecure:    !cfg.IsProduction(),
	})
	if err != nil {
		sugar.Warnw("Tracing disabled", "error", err)
		shutdownTracing = func(context.Context) error { return nil }
	}

	// Initialize database connection pool
	db, err := database.NewPool(ctx, cfg.DatabaseURL, database.PoolOptions{})
	if err != nil {
		sugar.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		sugar.Fatalf("Failed to apply schema: %v", err)
	}

	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{
		Secret:      cfg.JWTSecret,
		Issuer:      cfg.JWTIssuer,
		CitizenTTL:  cfg.CitizenTokenTTL,
		EmployeeTTL: cfg.EmployeeTokenTTL,
	})
	if err != nil {
		sugar.Fatalf("Failed to initialize tokens: %v", err)
	}

	// Photo storage
	var uploader services.PhotoUploader
	var uploadDir string
	if cfg.Cloudinary.Enabled() {
		cld, err := storage.NewCloudinary(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, sugar)
		if err != nil {
			sugar.Fatalf("Failed to initialize Cloudinary: %v", err)
		}
		uploader = cld
	} else {
		local, err := storage.NewLocal(cfg.LocalUploadDir, cfg.PublicBaseURL)
		if err != nil {
			sugar.Fatalf("Failed to initialize local uploads: %v", err)
		}
		sugar.Warnw("Cloudinary not configured, storing photos on local disk", "dir", local.Dir())
		uploader = local
		uploadDir = local.Dir()
	}

	// Mail
	var mailer services.Mailer
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From, sugar)
	} else {
		sugar.Warn("SMTP not configured, OTP emails will only be logged")
		mailer = mail.NewLogSender(sugar)
	}

	// Request rate limiting: Redis when available, memory otherwise
	memLimiter := ratelimit.NewMemory(cfg.RateLimitRPM, time.Minute)
	go memLimiter.Run(ctx, 5*time.Minute)
	var limiter ratelimit.Limiter = memLimiter
	var cache handlers.Pinger
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			sugar.Fatalf("Invalid REDIS_URL: %v", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		limiter = ratelimit.NewFallback(ratelimit.NewRedis(rdb, cfg.RateLimitRPM, time.Minute), memLimiter, sugar)
		cache = redisPinger{rdb: rdb}
	}

	// Repositories and services
	citizenRepo := repository.NewCitizenStore(db)
	employeeRepo := repository.NewEmployeeStore(db)
	reportRepo := repository.NewReportStore(db)
	authorityRepo := repository.NewAuthorityStore(db)
	activityRepo := repository.NewActivityStore(db)

	authz := access.NewAuthorizer(sugar)
	activitySvc := services.NewActivityLogService(activityRepo, authz, sugar)
	citizenSvc := services.NewCitizenService(citizenRepo, tokens, mailer, cfg.OTPTTL, sugar)
	employeeSvc := services.NewEmployeeService(employeeRepo, tokens, authz, activitySvc, sugar)
	reportSvc := services.NewReportService(reportRepo, citizenRepo, uploader, authz, activitySvc, services.ReportConfig{
		DailyLimit:   cfg.DailyReportLimit,
		UploadFolder: cfg.UploadFolder,
		TimeZone:     tz,
	}, sugar)
	authoritySvc := services.NewAuthorityService(authorityRepo, authz, activitySvc, sugar)
	analyticsSvc := services.NewAnalyticsService(reportRepo, authz, sugar)

	if err := employeeSvc.Bootstrap(ctx, cfg.SuperAdminName, cfg.SuperAdminEmail, cfg.SuperAdminPassword); err != nil {
		sugar.Fatalf("Failed to bootstrap Super Admin: %v", err)
	}

	router := handlers.NewRouter(handlers.Deps{
		Citizens:       citizenSvc,
		Reports:        reportSvc,
		Employees:      employeeSvc,
		Authorities:    authoritySvc,
		Analytics:      analyticsSvc,
		Activity:       activitySvc,
		Tokens:         tokens,
		Authz:          authz,
		Limiter:        limiter,
		DB:             db,
		Cache:          cache,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxUploadMB:    cfg.MaxUploadMB,
		UploadDir:      uploadDir,
		Logger:         logger,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      otelhttp.NewHandler(router, "civicdesk"),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sugar.Infof("Server listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	sugar.Info("Shutting down gracefully...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Forced shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		sugar.Warnw("Tracing shutdown failed", "error", err)
	}

	sugar.Info("Server stopped")
}
