package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/AmrAnter44/sys-body-sub000/api/swagger"
	"github.com/AmrAnter44/sys-body-sub000/internal/handler"
	"github.com/AmrAnter44/sys-body-sub000/internal/repository"
	"github.com/AmrAnter44/sys-body-sub000/internal/service"
	"github.com/AmrAnter44/sys-body-sub000/pkg/cache"
	"github.com/AmrAnter44/sys-body-sub000/pkg/config"
	"github.com/AmrAnter44/sys-body-sub000/pkg/database"
	"github.com/AmrAnter44/sys-body-sub000/pkg/jobs"
	"github.com/AmrAnter44/sys-body-sub000/pkg/logger"
)

// @title Gym Back Office API
// @version 1.0.0
// @description Subscriptions, payments, check-in and staff attendance for the front desk
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := service.NewValidator()
	metrics := service.NewMetricsService()
	gate := service.NewServiceGate(cfg.Services)
	rules := service.StatusRules{Location: cfg.Ledger.Location, ExpiringSoonWindow: cfg.Ledger.ExpiringSoonWindow}

	subscriptionRepo := repository.NewSubscriptionRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	shiftRepo := repository.NewStaffAttendanceRepository(db)
	codeRepo := repository.NewAccessCodeRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	summaries := service.NewSummaryCache(cacheRepo, metrics, cfg.Ledger.SummaryCacheTTL, logr, redisClient != nil)
	registry := service.NewCodeRegistry(nil, codeRepo, logr)
	authSvc := service.NewAuthService(validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	paymentSvc := service.NewPaymentService(paymentRepo, subscriptionRepo, memberRepo, gate, summaries, metrics,
		service.PaymentServiceConfig{Points: cfg.Points, Rules: rules}, validate, logr)
	subscriptionSvc := service.NewSubscriptionService(subscriptionRepo, paymentSvc, registry, gate, summaries, metrics,
		service.SubscriptionServiceConfig{Rules: rules}, validate, logr)

	var guard service.ScanGuard = service.NewMemoryScanGuard()
	if redisClient != nil {
		guard = repository.NewScanGuardRepository(redisClient)
	}
	shiftRules := repository.ShiftRules{MaxShift: cfg.Staff.MaxShift, Cooldown: cfg.Staff.CheckoutCooldown}
	checkInSvc := service.NewCheckInService(sessionRepo, subscriptionRepo, staffRepo, shiftRepo, registry, gate, guard, summaries, metrics,
		service.CheckInConfig{
			ScanTimeout:  cfg.CheckIn.ScanTimeout,
			DedupeWindow: cfg.CheckIn.DedupeWindow,
			Shift:        shiftRules,
			Rules:        rules,
		}, validate, logr)
	staffSvc := service.NewStaffService(staffRepo, shiftRepo, validate, logr)
	memberSvc := service.NewMemberService(memberRepo, validate, logr)
	exportSvc := service.NewExportService(shiftRepo, sessionRepo, gate, nil, cfg.Ledger.Location, logr)

	sweeper := service.NewShiftSweeper(shiftRepo, shiftRules, logr)
	sweepJob := jobs.NewPeriodic("stale-shift-sweep", sweeper.Sweep, jobs.PeriodicConfig{
		Interval:   cfg.Staff.SweepInterval,
		MaxRetries: 2,
		RetryDelay: 5 * time.Second,
		Logger:     logr,
	})
	sweepJob.Start(ctx)
	defer sweepJob.Stop()

	router := handler.NewRouter(handler.RouterConfig{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Auth:           authSvc,
		Metrics:        metrics,
		Subscriptions:  handler.NewSubscriptionHandler(subscriptionSvc, paymentSvc),
		CheckIn:        handler.NewCheckInHandler(checkInSvc, subscriptionSvc),
		Staff:          handler.NewStaffHandler(staffSvc),
		Members:        handler.NewMemberHandler(memberSvc),
		Reports:        handler.NewReportHandler(exportSvc),
		Observability: handler.NewMetricsHandler(metrics, map[string]handler.ReadinessCheck{
			"postgres": db.PingContext,
			"redis":    cacheRepo.Ping,
		}),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
