package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/ait-ops/cmms-api/api/swagger"
	"github.com/ait-ops/cmms-api/internal/handler"
	"github.com/ait-ops/cmms-api/internal/middleware"
	"github.com/ait-ops/cmms-api/internal/models"
	"github.com/ait-ops/cmms-api/internal/repository"
	"github.com/ait-ops/cmms-api/internal/service"
	"github.com/ait-ops/cmms-api/pkg/cache"
	"github.com/ait-ops/cmms-api/pkg/config"
	"github.com/ait-ops/cmms-api/pkg/database"
	"github.com/ait-ops/cmms-api/pkg/jobs"
	"github.com/ait-ops/cmms-api/pkg/logger"
	corsmiddleware "github.com/ait-ops/cmms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ait-ops/cmms-api/pkg/middleware/requestid"
	"github.com/ait-ops/cmms-api/pkg/storage"
)

// @title AIT CMMS API
// @version 1.0.0
// @description Preventive maintenance scheduling and CMMS backend
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	validate := validator.New()
	metrics := service.NewMetricsService()

	// Redis is optional: when unavailable the dashboard simply recomputes.
	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, dashboard caching disabled", zap.Error(err))
	} else {
		defer redisClient.Close() //nolint:errcheck
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.Enabled)
	}

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	datasetRepo := repository.NewPMDatasetRepository(db, logr)
	scheduleRepo := repository.NewPMScheduleRepository(db)
	priorityRepo := repository.NewPriorityListRepository(logr)
	workOrderRepo := repository.NewWorkOrderRepository(db)
	partRepo := repository.NewPartRepository(db)
	kpiRepo := repository.NewKPIRepository(db)
	reportRepo := repository.NewReportJobRepository(db)

	priorities := priorityRepo.Load(cfg.Scheduler.PriorityFiles)

	// Services.
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "cmms-api",
		Audience:          []string{"cmms-clients"},
	})
	schedulingSvc := service.NewPMSchedulingService(
		equipmentRepo, datasetRepo, priorities, cfg.Scheduler.CompletionWindowDays, metrics, logr)
	scheduleSvc := service.NewPMScheduleService(scheduleRepo, equipmentRepo, db, cfg.Scheduler.Technicians, logr)
	equipmentSvc := service.NewEquipmentService(equipmentRepo, validate, logr)
	workOrderSvc := service.NewWorkOrderService(workOrderRepo, equipmentRepo, validate, logr)
	partSvc := service.NewPartService(partRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(kpiRepo, workOrderRepo, partRepo, cacheSvc, logr,
		service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL})

	exportStore, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Export.SigningSecret, cfg.Export.ResultTTL)
	exportSvc := service.NewExportService(
		scheduleRepo, equipmentRepo, workOrderRepo, partRepo, exportStore, signer,
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Export.ResultTTL}, logr)

	reportWorker := service.NewReportWorker(reportRepo, exportSvc, logr)
	reportQueue := jobs.NewQueue("reports", reportWorker.Handle, jobs.QueueConfig{
		Workers: cfg.Export.Workers,
		Logger:  logr,
	})
	reportSvc := service.NewReportService(reportRepo, reportQueue, exportSvc, validate, service.ReportServiceConfig{
		ResultTTL:       cfg.Export.ResultTTL,
		CleanupInterval: cfg.Export.CleanupInterval,
	}, logr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reportQueue.Start(ctx)
	defer reportQueue.Stop()
	if err := reportSvc.RecoverPendingJobs(ctx); err != nil {
		logr.Warn("failed to recover pending report jobs", zap.Error(err))
	}
	reportSvc.StartCleanup(ctx)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	scheduleHandler := handler.NewScheduleHandler(schedulingSvc, scheduleSvc, dashboardSvc)
	equipmentHandler := handler.NewEquipmentHandler(equipmentSvc)
	workOrderHandler := handler.NewWorkOrderHandler(workOrderSvc)
	partHandler := handler.NewPartHandler(partSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, metrics)
	reportHandler := handler.NewReportHandler(reportSvc, exportStore)
	metricsHandler := handler.NewMetricsHandler(metrics, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	// Download links carry their own HMAC token instead of a JWT so they can
	// be handed to a browser.
	api.GET("/export/:token", reportHandler.Download)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/auth/me", authHandler.Me)

		planners := authed.Group("")
		planners.Use(middleware.RequireRoles(models.RoleAdmin, models.RolePlanner))
		{
			planners.POST("/schedule/generate", scheduleHandler.Generate)
			planners.POST("/schedule",
				middleware.Audit(logr, "persist", "schedule"), scheduleHandler.Persist)
			planners.DELETE("/schedule/:id/stale",
				middleware.Audit(logr, "clear_stale", "schedule"), scheduleHandler.ClearStale)

			planners.POST("/equipment", equipmentHandler.Create)
			planners.PUT("/equipment/:bfmNo", equipmentHandler.Update)
			planners.PATCH("/equipment/:bfmNo/status",
				middleware.Audit(logr, "status_change", "equipment"), equipmentHandler.UpdateStatus)

			planners.POST("/parts", partHandler.Create)
		}

		authed.GET("/schedule", scheduleHandler.ListWeek)
		authed.POST("/schedule/:id/complete",
			middleware.Audit(logr, "complete", "schedule"), scheduleHandler.Complete)

		authed.GET("/equipment", equipmentHandler.List)
		authed.GET("/equipment/:bfmNo", equipmentHandler.Get)

		authed.GET("/work-orders", workOrderHandler.List)
		authed.GET("/work-orders/:id", workOrderHandler.Get)
		authed.POST("/work-orders", workOrderHandler.Create)
		authed.PATCH("/work-orders/:id/status", workOrderHandler.UpdateStatus)
		authed.POST("/work-orders/:id/close",
			middleware.Audit(logr, "close", "work_order"), workOrderHandler.Close)

		authed.GET("/parts", partHandler.List)
		authed.GET("/parts/:id", partHandler.Get)
		authed.POST("/parts/:id/stock",
			middleware.Audit(logr, "stock_adjust", "part"), partHandler.AdjustStock)

		authed.GET("/dashboard/kpi", dashboardHandler.WeeklyKPI)
		authed.GET("/dashboard/system", dashboardHandler.System)

		authed.POST("/reports", reportHandler.Create)
		authed.GET("/reports/:id", reportHandler.Status)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
