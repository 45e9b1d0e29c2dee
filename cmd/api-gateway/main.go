package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/thesis-hub-api/api/swagger"
	"github.com/noah-isme/thesis-hub-api/internal/handler"
	"github.com/noah-isme/thesis-hub-api/internal/lifecycle"
	"github.com/noah-isme/thesis-hub-api/internal/middleware"
	"github.com/noah-isme/thesis-hub-api/internal/repository"
	"github.com/noah-isme/thesis-hub-api/internal/service"
	"github.com/noah-isme/thesis-hub-api/pkg/cache"
	"github.com/noah-isme/thesis-hub-api/pkg/config"
	"github.com/noah-isme/thesis-hub-api/pkg/database"
	"github.com/noah-isme/thesis-hub-api/pkg/jobs"
	"github.com/noah-isme/thesis-hub-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/thesis-hub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/thesis-hub-api/pkg/middleware/requestid"
)

// @title Thesis Hub API
// @version 0.1.0
// @description Authorization and lifecycle backend for thesis/capstone management
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, role cache disabled", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()

	// Repositories.
	principalRepo := repository.NewPrincipalRepository(db)
	roleRepo := repository.NewRoleAssignmentRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	lifecycleRepo := repository.NewLifecycleRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, cfg.Lifecycle.RoleCacheTTL, logr)

	// Audit service plus its fallback queue for writes that fail inline.
	auditSvc := service.NewAuditService(auditRepo, logr)
	auditQueue := jobs.NewQueue("audit-fallback", auditSvc.RetryJob, jobs.QueueConfig{
		Workers:    cfg.Audit.QueueWorkers,
		BufferSize: cfg.Audit.QueueBuffer,
		MaxRetries: cfg.Audit.MaxRetries,
		RetryDelay: cfg.Audit.RetryDelay,
		Logger:     logr,
	})
	auditSvc.AttachFallback(auditQueue)
	auditQueue.Start(ctx)
	defer auditQueue.Stop()

	coordinator := lifecycle.NewCoordinator(lifecycleRepo, auditSvc, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(principalRepo, auditSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	principalSvc := service.NewPrincipalService(principalRepo, coordinator, auditSvc, cacheRepo, validate, logr)
	semesterSvc := service.NewSemesterService(semesterRepo, coordinator, auditSvc, cacheRepo, validate, logr)
	topicSvc := service.NewTopicService(topicRepo, coordinator, auditSvc, validate, logr)
	roleSvc := service.NewRoleService(roleRepo, semesterRepo, cacheRepo, auditSvc, validate, logr)

	// Semester status sweeper on the jobs queue.
	if cfg.Sweeper.Enabled {
		sweepQueue := jobs.NewQueue("semester-sweeper", func(ctx context.Context, _ jobs.Job) error {
			changed, err := semesterSvc.SweepStatuses(ctx)
			if err != nil {
				return err
			}
			if changed > 0 {
				logr.Sugar().Infow("semester sweep complete", "changed", changed)
			}
			return nil
		}, jobs.QueueConfig{Workers: 1, Logger: logr})
		sweepQueue.Start(ctx)
		defer sweepQueue.Stop()
		go jobs.Tick(ctx, sweepQueue, "semester_sweep", cfg.Sweeper.Interval)
	}

	rbac := middleware.NewRBAC(roleRepo, cacheRepo, auditSvc, metricsSvc)

	handlers := handler.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Principal: handler.NewPrincipalHandler(principalSvc),
		Semester:  handler.NewSemesterHandler(semesterSvc),
		Topic:     handler.NewTopicHandler(topicSvc),
		Role:      handler.NewRoleHandler(roleSvc),
		Audit:     handler.NewAuditHandler(auditSvc),
		Metrics:   handler.NewMetricsHandler(metricsSvc, db, cacheRepo),
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(corsmiddleware.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		MaxAge:           cfg.CORS.MaxAge,
		AllowCredentials: cfg.CORS.AllowCredentials,
	}))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", handlers.Metrics.Health)
	r.GET("/ready", handlers.Metrics.Ready)
	r.GET("/metrics", handlers.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	handler.RegisterRoutes(api, handlers, authSvc, auditSvc, rbac)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
