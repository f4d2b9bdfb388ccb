package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/medrota/clerkship-api/api/swagger"
	"github.com/medrota/clerkship-api/internal/handler"
	"github.com/medrota/clerkship-api/internal/middleware"
	"github.com/medrota/clerkship-api/internal/models"
	"github.com/medrota/clerkship-api/internal/repository"
	"github.com/medrota/clerkship-api/internal/service"
	"github.com/medrota/clerkship-api/pkg/cache"
	"github.com/medrota/clerkship-api/pkg/config"
	"github.com/medrota/clerkship-api/pkg/database"
	"github.com/medrota/clerkship-api/pkg/jobs"
	"github.com/medrota/clerkship-api/pkg/logger"
	corsmiddleware "github.com/medrota/clerkship-api/pkg/middleware/cors"
	reqidmiddleware "github.com/medrota/clerkship-api/pkg/middleware/requestid"
	"github.com/medrota/clerkship-api/pkg/storage"
)

// @title Clerkship Scheduling API
// @version 1.0.0
// @description Scheduling engine assigning medical students to preceptors across clerkship date ranges.
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		cacheSvc = service.NewCacheService(nil, metrics, cfg.Engine.AvailabilityCacheTTL, logr, false)
	} else {
		defer redisClient.Close() //nolint:errcheck
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Engine.AvailabilityCacheTTL, logr, true)
	}

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	clerkshipRepo := repository.NewClerkshipRepository(db)
	preceptorRepo := repository.NewPreceptorRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	capacityRepo := repository.NewCapacityRuleRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	blackoutRepo := repository.NewBlackoutRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	runRepo := repository.NewRunRepository(db)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "clerkship-api",
		Audience:           []string{"clerkship-api"},
	})

	userSvc := service.NewUserService(userRepo, nil, logr)

	availabilitySvc := service.NewAvailabilityService(availabilityRepo, cacheSvc, logr, service.AvailabilityConfig{
		CacheTTL: cfg.Engine.AvailabilityCacheTTL,
	})

	engineSvc := service.NewScheduleEngineService(
		studentRepo,
		clerkshipRepo,
		preceptorRepo,
		teamRepo,
		capacityRepo,
		blackoutRepo,
		assignmentRepo,
		runRepo,
		availabilitySvc,
		db,
		metrics,
		nil,
		logr,
		service.EngineConfig{DefaultFallbackPasses: cfg.Engine.MaxRetriesPerStudent},
	)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	scheduleHandler := handler.NewScheduleHandler(engineSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	var exportHandler *handler.ExportHandler
	var exportJobSvc *service.ExportJobService
	var exportQueue *jobs.Queue
	if cfg.Exports.Enabled {
		store, storeErr := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if storeErr != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", storeErr)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportJobRepo := repository.NewExportJobRepository(db)
		exportSvc := service.NewExportService(assignmentRepo, store, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr, nil, nil)
		worker := service.NewExportWorker(exportJobRepo, exportSvc, cfg.Exports.WorkerRetries, logr)
		exportQueue = jobs.NewQueue("roster-exports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		exportQueue.Start(ctx)
		exportJobSvc = service.NewExportJobService(exportJobRepo, exportQueue, exportSvc, logr, service.ExportJobConfig{
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
			MaxRetries:      cfg.Exports.WorkerRetries,
		})
		exportJobSvc.RecoverPendingJobs(ctx)
		exportJobSvc.StartCleanup(ctx)
		exportHandler = handler.NewExportHandler(exportJobSvc)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)

		authed := auth.Group("", middleware.JWT(authSvc))
		authed.POST("/logout", authHandler.Logout)
		authed.POST("/change-password", authHandler.ChangePassword)
		authed.GET("/me", authHandler.Me)
	}

	protected := api.Group("", middleware.JWT(authSvc))

	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator, models.RoleViewer)
	writeRole := middleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator)

	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	users := protected.Group("/users", adminOnly)
	{
		users.GET("", userHandler.List)
		users.GET("/:id", userHandler.Get)
		users.POST("", userHandler.Create)
		users.PUT("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)
	}

	schedule := protected.Group("/schedule")
	{
		schedule.POST("/runs", writeRole, middleware.Audit(userRepo, models.AuditActionRunCreate, "scheduling_runs"), scheduleHandler.CreateRun)
		schedule.GET("/runs", anyRole, scheduleHandler.ListRuns)
		schedule.GET("/runs/:id", anyRole, scheduleHandler.GetRun)
		schedule.GET("/runs/:id/assignments", anyRole, scheduleHandler.RunAssignments)
		schedule.DELETE("/runs/:id", writeRole, middleware.Audit(userRepo, models.AuditActionRunDelete, "scheduling_runs"), scheduleHandler.DeleteRun)
	}

	protected.GET("/preceptors/:id/availability", anyRole, availabilityHandler.Preview)

	if exportHandler != nil {
		protected.POST("/exports", writeRole, middleware.Audit(userRepo, models.AuditActionExportCreate, "export_jobs"), exportHandler.CreateExport)
		protected.GET("/exports/:id", anyRole, exportHandler.ExportStatus)
		// Token-authenticated, the signed URL is the credential.
		api.GET("/exports/download/:token", exportHandler.DownloadExport)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("graceful shutdown failed", "error", err)
	}
	if exportQueue != nil {
		exportQueue.Stop()
	}
}
