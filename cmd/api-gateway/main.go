package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/teachflow/teachflow-api/api/swagger"
	"github.com/teachflow/teachflow-api/internal/handler"
	"github.com/teachflow/teachflow-api/internal/middleware"
	"github.com/teachflow/teachflow-api/internal/repository"
	"github.com/teachflow/teachflow-api/internal/service"
	"github.com/teachflow/teachflow-api/internal/timetable"
	"github.com/teachflow/teachflow-api/pkg/cache"
	"github.com/teachflow/teachflow-api/pkg/config"
	"github.com/teachflow/teachflow-api/pkg/database"
	"github.com/teachflow/teachflow-api/pkg/logger"
	corsmiddleware "github.com/teachflow/teachflow-api/pkg/middleware/cors"
	reqidmiddleware "github.com/teachflow/teachflow-api/pkg/middleware/requestid"
)

// @title TeachFlow API
// @version 0.1.0
// @description Weekly school timetable service
// @BasePath /
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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The API works without Redis; lookups just skip the cache.
		logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()

	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Lookup.CacheTTL, logr, cfg.Lookup.CacheEnabled && redisClient != nil)

	occupancy := timetable.NewOccupancy()
	classSvc := service.NewClassService(classRepo, cacheSvc, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, classRepo, cacheSvc, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, cacheSvc, nil, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, classRepo, teacherRepo, occupancy, cfg.Timetable, logr)
	buildSvc := service.NewAutoBuildService(classRepo, subjectRepo, teacherRepo, scheduleRepo, occupancy, metricsSvc, cfg.Timetable, logr)

	classHandler := handler.NewClassHandler(classSvc, subjectSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, buildSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

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
	{
		api.GET("/classes", classHandler.List)
		api.GET("/classes/:id/subjects", classHandler.Subjects)

		api.GET("/teachers", teacherHandler.List)
		api.GET("/teachers/:id", teacherHandler.Get)
		api.PUT("/teachers/:id/availability", teacherHandler.UpdateAvailability)

		api.GET("/schedule", scheduleHandler.Get)
		api.PUT("/schedule", scheduleHandler.Save)
		api.DELETE("/schedule", scheduleHandler.Clear)
		api.POST("/schedule/auto", scheduleHandler.AutoBuild)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
