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

	_ "github.com/ciet-hostel/gatepass-api/api/swagger"
	"github.com/ciet-hostel/gatepass-api/internal/handler"
	"github.com/ciet-hostel/gatepass-api/internal/middleware"
	"github.com/ciet-hostel/gatepass-api/internal/models"
	"github.com/ciet-hostel/gatepass-api/internal/notify"
	"github.com/ciet-hostel/gatepass-api/internal/repository"
	"github.com/ciet-hostel/gatepass-api/internal/service"
	"github.com/ciet-hostel/gatepass-api/pkg/cache"
	"github.com/ciet-hostel/gatepass-api/pkg/config"
	"github.com/ciet-hostel/gatepass-api/pkg/database"
	"github.com/ciet-hostel/gatepass-api/pkg/logger"
	corsmiddleware "github.com/ciet-hostel/gatepass-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ciet-hostel/gatepass-api/pkg/middleware/requestid"
)

// @title Hostel Gate Pass API
// @version 1.0.0
// @description Gate-pass request and approval service for hostel residents
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
		logr.Sugar().Fatalw("postgres connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The dashboard cache degrades to pass-through without redis.
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	userRepo := repository.NewUserRepository(db)
	gatePassRepo := repository.NewGatePassRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)
	defer cacheRepo.Close() //nolint:errcheck

	validate := validator.New()

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && redisClient != nil)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})

	dispatcher := notify.NewDispatcher(
		notify.NewSMSLogNotifier(logr, cfg.Notify.SenderID),
		notify.DispatcherConfig{Workers: cfg.Notify.Workers, BufferSize: cfg.Notify.BufferSize},
		logr,
	)
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()

	gatePassSvc := service.NewGatePassService(service.GatePassServiceParams{
		Repo:     gatePassRepo,
		Users:    userRepo,
		Auditor:  userRepo,
		Notifier: dispatcher,
		Cache:    cacheSvc,
		Metrics:  metricsSvc,
		Validate: validate,
		Logger:   logr,
	})

	dashboardSvc := service.NewDashboardService(gatePassRepo, cacheSvc, logr, service.DashboardServiceConfig{
		CacheTTL: cfg.Dashboard.CacheTTL,
	})

	authHandler := handler.NewAuthHandler(authSvc)
	gatePassHandler := handler.NewGatePassHandler(gatePassSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

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
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.POST("/auth/logout", authHandler.Logout)
	authed.GET("/auth/me", authHandler.Me)
	authed.POST("/auth/change-password", authHandler.ChangePassword)

	passes := authed.Group("/gate-passes")
	passes.POST("", middleware.RequireRoles(models.RoleStudent), gatePassHandler.Create)
	passes.GET("", gatePassHandler.List)
	passes.GET("/pending", middleware.RequireRoles(models.RoleWarden, models.RoleAdmin), gatePassHandler.ListPending)
	passes.GET("/export", middleware.RequireRoles(models.RoleWarden, models.RoleAdmin), gatePassHandler.ExportCSV)
	passes.GET("/:id", gatePassHandler.Get)
	passes.POST("/:id/review", middleware.RequireRoles(models.RoleWarden, models.RoleAdmin), gatePassHandler.Review)
	passes.GET("/:id/pdf", gatePassHandler.PassPDF)

	authed.GET("/dashboard/summary", dashboardHandler.Summary)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
