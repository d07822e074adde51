package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/exam-logistics-api/api/swagger"
	"github.com/noah-isme/exam-logistics-api/internal/handler"
	"github.com/noah-isme/exam-logistics-api/internal/middleware"
	"github.com/noah-isme/exam-logistics-api/internal/repository"
	"github.com/noah-isme/exam-logistics-api/internal/roster"
	"github.com/noah-isme/exam-logistics-api/internal/service"
	"github.com/noah-isme/exam-logistics-api/pkg/cache"
	"github.com/noah-isme/exam-logistics-api/pkg/config"
	"github.com/noah-isme/exam-logistics-api/pkg/database"
	"github.com/noah-isme/exam-logistics-api/pkg/jobs"
	"github.com/noah-isme/exam-logistics-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/exam-logistics-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/exam-logistics-api/pkg/middleware/requestid"
	"github.com/noah-isme/exam-logistics-api/pkg/storage"
)

// multipartOverhead leaves room for form boundaries and fields around an upload of MaxUploadBytes.
const multipartOverhead = 64 << 10

// @title Exam Logistics API
// @version 1.0.0
// @description Roster intake, exam seating plans and invigilator duty allocation
// @BasePath /api/v1
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	duplicates, err := roster.ParseDuplicatePolicy(cfg.Seating.DuplicatePolicy)
	if err != nil {
		logr.Fatal("invalid SEATING_DUPLICATE_POLICY", zap.Error(err))
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}
	validate := validator.New()

	var (
		db          *sqlx.DB
		redisClient *redis.Client
		planStore   *service.SeatingPlanService
	)
	if cfg.PlanStore.Enabled {
		db, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer db.Close() //nolint:errcheck
		if err := database.EnsureSchema(ctx, db); err != nil {
			logr.Fatal("failed to prepare schema", zap.Error(err))
		}

		var cacheSvc *service.CacheService
		if cfg.PlanCache.Enabled {
			redisClient, err = cache.NewRedis(ctx, cfg.Redis)
			if err != nil {
				logr.Warn("redis unavailable, plan cache disabled", zap.Error(err))
			} else {
				defer redisClient.Close() //nolint:errcheck
				cacheRepo := repository.NewCacheRepository(redisClient, "exam-logistics", logr)
				cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.PlanCache.TTL, logr, true)
			}
		}
		planStore = service.NewSeatingPlanService(repository.NewSeatingPlanRepository(db), cacheSvc, validate, logr)
	}

	rosterSvc := service.NewRosterService(nil, validate, metricsSvc, logr, service.RosterConfig{
		MaxRows:         cfg.Seating.MaxRosterRows,
		DuplicatePolicy: duplicates,
	})
	seatingCfg := service.SeatingConfig{DefaultStrategy: cfg.Seating.DefaultStrategy, DuplicateRooms: duplicates}
	var seatingSvc *service.SeatingService
	if planStore != nil {
		seatingSvc = service.NewSeatingService(rosterSvc, planStore, validate, metricsSvc, logr, seatingCfg)
	} else {
		seatingSvc = service.NewSeatingService(rosterSvc, nil, validate, metricsSvc, logr, seatingCfg)
	}
	dutySvc := service.NewDutyService(validate, nil, metricsSvc, logr)

	routes := handler.Routes{
		Roster:  handler.NewRosterHandler(rosterSvc, cfg.Seating.MaxUploadBytes),
		Seating: handler.NewSeatingHandler(seatingSvc),
		Duties:  handler.NewDutyHandler(dutySvc),
	}

	if planStore != nil {
		routes.SeatingPlan = handler.NewSeatingPlanHandler(planStore)

		if cfg.Exports.Enabled {
			files, err := storage.NewDiskStore(cfg.Exports.StorageDir)
			if err != nil {
				logr.Fatal("failed to prepare export storage", zap.Error(err))
			}
			signer := storage.NewTokenSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
			exportSvc := service.NewPlanExportService(planStore, files, signer, validate, metricsSvc, logr, service.PlanExportConfig{
				APIPrefix: cfg.APIPrefix,
				ResultTTL: cfg.Exports.SignedURLTTL,
			})
			queue := jobs.NewQueue("seating-exports", exportSvc.Handle, jobs.QueueConfig{
				Workers:    cfg.Exports.WorkerConcurrency,
				MaxRetries: cfg.Exports.WorkerRetries,
				RetryDelay: 2 * time.Second,
				DeadLetter: exportSvc.DeadLetter,
				Logger:     logr,
			})
			queue.Start(ctx)
			defer queue.Stop()
			if err := metricsSvc.TrackQueueDepth("seating-exports", queue.Depth); err != nil {
				logr.Warn("queue depth metric unavailable", zap.Error(err))
			}
			exportSvc.AttachQueue(queue)
			exportSvc.StartCleanup(ctx, cfg.Exports.CleanupInterval)
			routes.Exports = handler.NewExportHandler(exportSvc)
		}
	}

	deps := map[string]handler.Pinger{}
	if db != nil {
		deps["postgres"] = db
	}
	if redisClient != nil {
		deps["redis"] = handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}
	routes.Health = handler.NewHealthHandler(metricsSvc, deps)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc, "/metrics"))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", routes.Health.Health)
	r.GET("/ready", routes.Health.Ready)
	if metricsSvc != nil {
		r.GET("/metrics", routes.Health.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(strings.TrimRight(cfg.APIPrefix, "/"))
	api.Use(middleware.BodyLimit(cfg.Seating.MaxUploadBytes + multipartOverhead))
	routes.Register(api)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.Bool("plan_store", planStore != nil),
			zap.Bool("exports", routes.Exports != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
