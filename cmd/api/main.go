package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/siakad-dev/presensi-kuliah-api/api/swagger"
	"github.com/siakad-dev/presensi-kuliah-api/internal/handler"
	"github.com/siakad-dev/presensi-kuliah-api/internal/middleware"
	"github.com/siakad-dev/presensi-kuliah-api/internal/models"
	"github.com/siakad-dev/presensi-kuliah-api/internal/repository"
	"github.com/siakad-dev/presensi-kuliah-api/internal/service"
	"github.com/siakad-dev/presensi-kuliah-api/pkg/cache"
	"github.com/siakad-dev/presensi-kuliah-api/pkg/config"
	"github.com/siakad-dev/presensi-kuliah-api/pkg/database"
	"github.com/siakad-dev/presensi-kuliah-api/pkg/logger"
	corsmiddleware "github.com/siakad-dev/presensi-kuliah-api/pkg/middleware/cors"
	reqidmiddleware "github.com/siakad-dev/presensi-kuliah-api/pkg/middleware/requestid"
)

// @title Presensi Kuliah API
// @version 1.0.0
// @description Academic calendar and attendance reconciliation service
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Dashboard.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, dashboard cache disabled", "error", err)
		}
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := buildRouter(cfg, logr, db, redisClient)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func buildRouter(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client) *gin.Engine {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := middleware.NewHTTPMetrics(registry)
	domainMetrics := service.NewMetrics(registry)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	authSvc := service.NewAuthService(userRepo, cfg.JWT, validate, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)
	calendarSvc := service.NewCalendarService(calendarRepo, validate, logr, cfg.Attendance.LocatorCandidates, domainMetrics)
	scheduleSvc := service.NewScheduleService(scheduleRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, scheduleRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, enrollmentRepo, scheduleRepo, userRepo, calendarSvc, validate, logr, domainMetrics)
	dashboardSvc := service.NewDashboardService(userRepo, attendanceRepo, calendarSvc, cacheRepo, cfg.Dashboard.CacheTTL, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, nil)
	if cfg.Exports.Enabled {
		exportSvc := service.NewExportService(attendanceSvc, scheduleRepo, cfg.Attendance.MeetingCount, logr)
		attendanceHandler = handler.NewAttendanceHandler(attendanceSvc, exportSvc)
	}
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(httpMetrics.Handler())

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
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWTAuth(authSvc))
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.GET("/auth/me", authHandler.Me)

		authed.GET("/calendar", calendarHandler.List)
		authed.GET("/calendar/active", calendarHandler.ActiveMeeting)

		authed.GET("/schedule", scheduleHandler.List)
		authed.GET("/schedule/mine", scheduleHandler.Mine)
		authed.GET("/schedule/:id", scheduleHandler.Get)
	}

	admin := authed.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/calendar/meetings", calendarHandler.GenerateMeetings)
		admin.PUT("/calendar/meetings/:id", calendarHandler.ShiftMeeting)
		admin.POST("/calendar/entries", calendarHandler.CreateEntry)
		admin.DELETE("/calendar/:id", calendarHandler.Delete)

		admin.POST("/schedule", scheduleHandler.Create)
		admin.PUT("/schedule/:id", scheduleHandler.Update)
		admin.DELETE("/schedule/:id", scheduleHandler.Delete)

		admin.POST("/users", userHandler.Create)
		admin.GET("/users", userHandler.List)
		admin.PATCH("/users/:id/active", userHandler.SetActive)
		admin.PATCH("/users/:id/kelas", userHandler.SetKelas)

		admin.GET("/dashboard/summary", dashboardHandler.Summary)
	}

	student := authed.Group("")
	student.Use(middleware.RequireRoles(models.RoleMahasiswa))
	{
		student.GET("/attendance/today", attendanceHandler.Today)
		student.POST("/attendance", attendanceHandler.Submit)
		student.GET("/attendance/history/:sessionId", attendanceHandler.History)

		student.GET("/enrollments", enrollmentHandler.List)
		student.PUT("/enrollments", enrollmentHandler.Set)
		student.DELETE("/enrollments/:sessionId", enrollmentHandler.Clear)
	}

	lecturer := authed.Group("")
	lecturer.Use(middleware.RequireRoles(models.RoleDosen))
	{
		lecturer.PUT("/attendance/matrix", attendanceHandler.SaveMatrix)
		lecturer.GET("/attendance/matrix/:sessionId", attendanceHandler.Matrix)
		lecturer.GET("/attendance/matrix/:sessionId/export", attendanceHandler.ExportCard)
	}

	return r
}
