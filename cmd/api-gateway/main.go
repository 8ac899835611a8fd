package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/pmolab/gpd-api/api/swagger"
	"github.com/pmolab/gpd-api/internal/handler"
	"github.com/pmolab/gpd-api/internal/middleware"
	"github.com/pmolab/gpd-api/internal/repository"
	"github.com/pmolab/gpd-api/internal/service"
	"github.com/pmolab/gpd-api/pkg/cache"
	"github.com/pmolab/gpd-api/pkg/config"
	"github.com/pmolab/gpd-api/pkg/database"
	"github.com/pmolab/gpd-api/pkg/jobs"
	"github.com/pmolab/gpd-api/pkg/logger"
	corsmiddleware "github.com/pmolab/gpd-api/pkg/middleware/cors"
	reqidmiddleware "github.com/pmolab/gpd-api/pkg/middleware/requestid"
)

// @title GPD API
// @version 1.0.0
// @description Demand portfolio approval and signature workflow API
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
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	var cacheRepo *repository.CacheRepository
	if cfg.Timeline.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, timeline name cache disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	demandRepo := repository.NewDemandRepository(db)
	recordRepo := repository.NewApprovalRecordRepository(db)
	requirementRepo := repository.NewRequirementRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	userRepo := repository.NewUserRepository(db)
	workflowRepo := repository.NewWorkflowRepository(db)

	metricsSvc := service.NewMetricsService()

	notifier := service.NewNotifierService(logr, jobs.QueueConfig{
		Workers:    cfg.Notifier.Workers,
		MaxRetries: cfg.Notifier.MaxRetries,
		RetryDelay: cfg.Notifier.RetryDelay,
	})
	notifier.Start(context.Background())
	defer notifier.Stop()
	metricsSvc.RegisterQueueDepth("workflow-notifications", notifier.QueueDepth)

	authSvc := service.NewAuthService(userRepo, auditRepo, validator.New(), logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	roleSvc := service.NewRoleService(roleRepo, logr)
	queueSvc := service.NewApprovalQueueService(roleSvc, demandRepo, logr)
	decisionSvc := service.NewDecisionService(demandRepo, recordRepo, roleRepo, workflowRepo, roleSvc, metricsSvc, notifier, logr)
	demandSvc := service.NewDemandService(demandRepo, workflowRepo, cfg.Workflow.DemandCodePrefix, logr)
	signer := service.NewTokenSigner(cfg.Workflow.SignatureSecret)
	requirementSvc := service.NewRequirementService(requirementRepo, workflowRepo, signer, metricsSvc, notifier, logr)

	var timelineSvc *service.TimelineService
	if cacheRepo != nil {
		timelineSvc = service.NewTimelineService(auditRepo, recordRepo, requirementRepo, userRepo, cacheRepo, cfg.Timeline.ProfileCacheTTL, logr)
	} else {
		timelineSvc = service.NewTimelineService(auditRepo, recordRepo, requirementRepo, userRepo, nil, cfg.Timeline.ProfileCacheTTL, logr)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	public := r.Group(cfg.APIPrefix)
	handler.NewAuthHandler(authSvc).RegisterRoutes(public)

	protected := r.Group(cfg.APIPrefix)
	protected.Use(middleware.JWT(authSvc))
	handler.NewApprovalHandler(queueSvc, decisionSvc).RegisterRoutes(protected)
	handler.NewDemandHandler(demandSvc, timelineSvc).RegisterRoutes(protected)
	handler.NewRequirementHandler(requirementSvc, timelineSvc).RegisterRoutes(protected)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
