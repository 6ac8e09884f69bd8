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
	"go.uber.org/zap"

	_ "github.com/brainspot/timesheet-api/api/swagger"
	"github.com/brainspot/timesheet-api/internal/handler"
	"github.com/brainspot/timesheet-api/internal/middleware"
	"github.com/brainspot/timesheet-api/internal/models"
	"github.com/brainspot/timesheet-api/internal/repository"
	"github.com/brainspot/timesheet-api/internal/service"
	"github.com/brainspot/timesheet-api/pkg/cache"
	"github.com/brainspot/timesheet-api/pkg/config"
	"github.com/brainspot/timesheet-api/pkg/database"
	"github.com/brainspot/timesheet-api/pkg/export"
	"github.com/brainspot/timesheet-api/pkg/jobs"
	"github.com/brainspot/timesheet-api/pkg/logger"
	corsmiddleware "github.com/brainspot/timesheet-api/pkg/middleware/cors"
	reqidmiddleware "github.com/brainspot/timesheet-api/pkg/middleware/requestid"
	"github.com/brainspot/timesheet-api/pkg/storage"
)

// @title Brainspot Timesheet API
// @version 1.0.0
// @description Agency timesheet backend: monthly reports, time entries, edit requests and client rollups
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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories.
	employeeRepo := repository.NewEmployeeRepository(db)
	clientRepo := repository.NewClientRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	clientServiceRepo := repository.NewClientServiceRepository(db)
	reportRepo := repository.NewReportRepository(db)
	entryRepo := repository.NewTimeEntryRepository(db)
	editRequestRepo := repository.NewEditRequestRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)

	var cacheRepo *repository.CacheRepository
	if cfg.Rollups.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect to redis", zap.Error(err))
		}
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
	}

	// Services.
	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	auditSvc := service.NewAuditService(auditRepo, logr)
	tokenSvc := service.NewTokenService(cfg.Auth)

	rollupSvc := service.NewRollupService(
		clientRepo, reportRepo, entryRepo, employeeRepo, serviceRepo, taskRepo,
		cacheRepo, cfg.Rollups.CacheTTL, cfg.Rollups.CacheEnabled, metricsSvc, logr,
	)
	employeeSvc := service.NewEmployeeService(employeeRepo, auditSvc, cfg.Payroll.WorkingDaysPerMonth, validate, logr)
	clientSvc := service.NewClientService(clientRepo, clientServiceRepo, serviceRepo, rollupSvc, logr)
	catalogSvc := service.NewCatalogService(serviceRepo, taskRepo, logr)
	reportSvc := service.NewReportService(reportRepo, entryRepo, clientServiceRepo, employeeRepo, auditSvc, rollupSvc, metricsSvc, validate, logr)
	editRequestSvc := service.NewEditRequestService(editRequestRepo, reportRepo, auditSvc, rollupSvc, logr)

	var exportSvc *service.ExportService
	var exportQueue *jobs.Queue
	if cfg.Exports.Enabled {
		artifacts, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Fatal("failed to init export storage", zap.Error(err))
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		renderers := map[models.ExportFormat]service.DetailRenderer{
			models.ExportFormatCSV: export.NewCSVExporter(),
			models.ExportFormatPDF: export.NewPDFExporter(),
		}
		exportQueue = jobs.NewQueue("exports", func(ctx context.Context, job jobs.Job) error {
			return exportSvc.Process(ctx, job)
		}, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			RetryDelay: 5 * time.Second,
			Logger:     logr,
		})
		exportSvc = service.NewExportService(exportJobRepo, rollupSvc, renderers, exportQueue, artifacts, signer, metricsSvc, logr)
		exportQueue.Start(ctx)
		defer exportQueue.Stop()
	}

	// Handlers.
	employeeHandler := handler.NewEmployeeHandler(employeeSvc)
	clientHandler := handler.NewClientHandler(clientSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	editRequestHandler := handler.NewEditRequestHandler(editRequestSvc)
	rollupHandler := handler.NewRollupHandler(rollupSvc)
	auditHandler := handler.NewAuditHandler(auditSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	var exportHandler *handler.ExportHandler
	if cfg.Exports.Enabled {
		exportHandler = handler.NewExportHandler(exportSvc)
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
	api.Use(middleware.JWT(tokenSvc))

	admin := api.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/employees", middleware.Audit(auditSvc, models.AuditActionEmployeeCreate, "employee"), employeeHandler.Create)
		admin.PUT("/employees/:id", middleware.Audit(auditSvc, models.AuditActionEmployeeUpdate, "employee"), employeeHandler.Update)
		admin.DELETE("/employees/:id", middleware.Audit(auditSvc, models.AuditActionEmployeeDeactivate, "employee"), employeeHandler.Deactivate)

		admin.POST("/clients", clientHandler.Create)
		admin.PUT("/clients/:id", clientHandler.Update)
		admin.DELETE("/clients/:id", clientHandler.Delete)
		admin.POST("/clients/:id/services", clientHandler.AttachService)
		admin.PUT("/clients/:id/services/:assignmentId", clientHandler.UpdateAssignment)
		admin.DELETE("/clients/:id/services/:assignmentId", clientHandler.DetachService)

		admin.POST("/services", catalogHandler.CreateService)
		admin.PUT("/services/:id", catalogHandler.UpdateService)
		admin.DELETE("/services/:id", catalogHandler.DeleteService)
		admin.POST("/services/:id/tasks", catalogHandler.CreateTask)
		admin.PUT("/tasks/:id", catalogHandler.UpdateTask)
		admin.DELETE("/tasks/:id", catalogHandler.DeleteTask)

		admin.GET("/admin/reports", reportHandler.MonthOverview)
		admin.PATCH("/reports/:id/spend", reportHandler.UpdateSpend)
		admin.POST("/edit-requests/:id/approve", editRequestHandler.Approve)
		admin.POST("/edit-requests/:id/deny", editRequestHandler.Deny)

		admin.GET("/rollups/clients", rollupHandler.ClientRows)
		admin.GET("/rollups/clients/:id", rollupHandler.ClientDetail)

		admin.GET("/admin/audit", auditHandler.Trail)
		admin.GET("/admin/audit/employees/:id", auditHandler.ActorTrail)

		if exportHandler != nil {
			admin.POST("/exports", exportHandler.Create)
			admin.GET("/exports/:id", exportHandler.Status)
		}
	}

	authed := api.Group("")
	{
		authed.GET("/employees", employeeHandler.List)
		authed.GET("/employees/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), employeeHandler.Get)

		authed.GET("/clients", clientHandler.List)
		authed.GET("/clients/:id", clientHandler.Get)
		authed.GET("/clients/:id/services", clientHandler.ListServices)
		authed.GET("/services", catalogHandler.ListServices)
		authed.GET("/services/:id", catalogHandler.GetService)
		authed.GET("/services/:id/tasks", catalogHandler.ListTasks)

		authed.GET("/reports", reportHandler.ListMine)
		authed.GET("/reports/current", reportHandler.Current)
		authed.GET("/reports/:id", reportHandler.Get)
		authed.POST("/reports/:id/submit", reportHandler.Submit)
		authed.GET("/reports/:id/entries", reportHandler.ListEntries)
		authed.POST("/reports/:id/entries", reportHandler.AddEntry)
		authed.PUT("/entries/:id", reportHandler.UpdateEntry)
		authed.DELETE("/entries/:id", reportHandler.DeleteEntry)

		authed.POST("/reports/:id/edit-requests", editRequestHandler.Create)
		authed.GET("/edit-requests", editRequestHandler.List)
		authed.GET("/edit-requests/:id", editRequestHandler.Get)

		authed.GET("/rollups/employees/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), rollupHandler.EmployeeSummary)
	}

	if exportHandler != nil {
		// Download is authenticated by the signed token itself.
		r.GET(cfg.APIPrefix+"/exports/download", exportHandler.Download)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
