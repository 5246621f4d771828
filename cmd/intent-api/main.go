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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/commune-chat/intent-api/api/swagger"
	"github.com/commune-chat/intent-api/internal/detector"
	"github.com/commune-chat/intent-api/internal/handler"
	"github.com/commune-chat/intent-api/internal/middleware"
	"github.com/commune-chat/intent-api/internal/models"
	"github.com/commune-chat/intent-api/internal/repository"
	"github.com/commune-chat/intent-api/internal/service"
	"github.com/commune-chat/intent-api/pkg/cache"
	"github.com/commune-chat/intent-api/pkg/config"
	"github.com/commune-chat/intent-api/pkg/database"
	"github.com/commune-chat/intent-api/pkg/jobs"
	"github.com/commune-chat/intent-api/pkg/logger"
	corsmiddleware "github.com/commune-chat/intent-api/pkg/middleware/cors"
	reqidmiddleware "github.com/commune-chat/intent-api/pkg/middleware/requestid"
)

// @title Commune Intent API
// @version 1.0.0
// @description Message intent detection and event scheduling pipeline
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Redis only narrows the duplicate-detection window and caches the
		// roster; the unique constraint still holds without it.
		logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	}

	intentRepo := repository.NewIntentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	postRepo := repository.NewPostRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	validate := validator.New()
	metrics := service.NewMetricsService()
	detectorClient := detector.NewClient(cfg.Detector, cfg.Enrichment, logr)

	authSvc := service.NewAuthService(cfg.JWT, logr)
	membershipSvc := service.NewMembershipService(membershipRepo, cacheRepo, cfg.Notifications.RosterCacheTTL, logr)
	detectionSvc := service.NewDetectionService(intentRepo, cacheRepo, detectorClient, metrics, validate, logr, cfg.Pipeline.DedupLockTTL)
	notificationSvc := service.NewNotificationService(notificationRepo, membershipSvc, metrics, logr)
	materializeSvc := service.NewMaterializeService(intentRepo, calendarRepo, postRepo, membershipSvc, metrics, logr, cfg.Pipeline.DefaultDuration)
	workflowSvc := service.NewWorkflowService(detectionSvc, notificationSvc, intentRepo, jobs.QueueConfig{
		Workers:    cfg.Notifications.WorkerConcurrency,
		MaxRetries: cfg.Notifications.WorkerRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	}, logr)
	digestSvc := service.NewDigestService(intentRepo, nil, cfg.Digest.MaxIntents, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workflowSvc.Start(ctx)
	defer workflowSvc.Stop()

	messageHandler := handler.NewMessageHandler(workflowSvc)
	intentHandler := handler.NewIntentHandler(workflowSvc, materializeSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	calendarHandler := handler.NewCalendarHandler(materializeSvc)
	digestHandler := handler.NewDigestHandler(digestSvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))
	{
		api.POST("/messages", messageHandler.Ingest)

		admin := api.Group("")
		admin.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleCoAdmin))
		{
			community := admin.Group("/communities/:communityId")
			community.Use(middleware.CommunityScope())
			{
				community.GET("/intents", intentHandler.ListPending)
				community.GET("/events", calendarHandler.List)
				if cfg.Digest.Enabled {
					community.GET("/digest/pending-events", digestHandler.PendingEvents)
				}
			}

			admin.PATCH("/intents/:id", intentHandler.Edit)
			admin.POST("/intents/:id/confirm", intentHandler.Confirm)
			admin.POST("/intents/:id/dismiss", intentHandler.Dismiss)
			admin.GET("/notifications", notificationHandler.List)
			admin.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
		}

		api.GET("/events/:id", calendarHandler.Get)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
