package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/examgen/examgen/internal/breaker"
	"github.com/examgen/examgen/internal/cloudconvert"
	"github.com/examgen/examgen/internal/config"
	"github.com/examgen/examgen/internal/handler"
	"github.com/examgen/examgen/internal/middleware"
	"github.com/examgen/examgen/internal/ratelimit"
	"github.com/examgen/examgen/internal/repository"
	"github.com/examgen/examgen/internal/service"
	"github.com/examgen/examgen/internal/storage"
)

type Server struct {
	router   *gin.Engine
	config   *config.Config
	redis    *storage.RedisClient
	postgres *storage.Postgres
	logger   *zap.Logger

	geminiBreaker  *breaker.Breaker
	convertBreaker *breaker.Breaker

	pdfHandler       *handler.PDFHandler
	examHandler      *handler.ExamHandler
	usageHandler     *handler.UsageHandler
	analyticsHandler *handler.AnalyticsHandler

	httpServer *http.Server
}

// New wires the rate gate, provider clients and services into a router.
// postgres may be nil; request logging and analytics are skipped then.
func New(cfg *config.Config, redis *storage.RedisClient, postgres *storage.Postgres, generator service.Generator, logger *zap.Logger) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	gate := ratelimit.NewGate(redis, map[string]int{
		ratelimit.ProviderGemini:       cfg.Quota.Gemini,
		ratelimit.ProviderCloudConvert: cfg.Quota.CloudConvert,
	}, cfg.Quota.Window)

	converter := cloudconvert.NewClient(cfg.Providers.CloudConvertAPIKey, cfg.Providers.CloudConvertURL, logger)

	pollSettings := cloudconvert.PollSettings{
		Interval:         cfg.Poll.Interval,
		MaxAttempts:      cfg.Poll.MaxAttempts,
		MaxFetchFailures: cfg.Poll.MaxFetchFail,
	}

	geminiBreaker := breaker.New(5, 30*time.Second)
	convertBreaker := breaker.New(5, 30*time.Second)

	pdfService := service.NewPDFService(converter, gate, convertBreaker, pollSettings, logger)
	examService := service.NewExamService(generator, gate, geminiBreaker, logger)

	s := &Server{
		router:         router,
		config:         cfg,
		redis:          redis,
		postgres:       postgres,
		logger:         logger,
		geminiBreaker:  geminiBreaker,
		convertBreaker: convertBreaker,
		pdfHandler:     handler.NewPDFHandler(pdfService),
		examHandler:    handler.NewExamHandler(examService),
		usageHandler:   handler.NewUsageHandler(gate),
	}

	if postgres != nil {
		logRepo := repository.NewRequestLogRepository(postgres)
		middleware.InitRequestLogger(logRepo, 1000, logger)
		s.analyticsHandler = handler.NewAnalyticsHandler(service.NewAnalyticsService(logRepo))
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery(s.logger))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.CORS())

	if s.postgres != nil {
		s.router.Use(middleware.RequestLogger())
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	api := s.router.Group("/api")
	{
		api.POST("/generate-pdf", s.pdfHandler.Generate)
		api.GET("/generate-pdf", s.pdfHandler.Usage)

		api.POST("/generate-quiz", s.examHandler.GenerateQuiz)
		api.GET("/generate-quiz", s.examHandler.Ping)

		api.POST("/generate-test", s.examHandler.GenerateTestPaper)
		api.GET("/generate-test", s.examHandler.Ping)
	}

	admin := s.router.Group("/admin")
	{
		admin.GET("/usage", s.usageHandler.GetUsage)

		if s.analyticsHandler != nil {
			admin.GET("/analytics", s.analyticsHandler.GetSummary)
			admin.GET("/analytics/timeseries", s.analyticsHandler.GetTimeSeries)
			admin.GET("/logs", s.analyticsHandler.GetLogs)
		}
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	redisHealthy := true
	if err := s.redis.Ping(c.Request.Context()); err != nil {
		redisHealthy = false
		s.logger.Warn("redis health check failed", zap.Error(err))
	}

	dbHealthy := true
	if s.postgres != nil {
		if err := s.postgres.Ping(c.Request.Context()); err != nil {
			dbHealthy = false
			s.logger.Warn("database health check failed", zap.Error(err))
		}
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !redisHealthy || !dbHealthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"service":   "examgen",
		"version":   "1.0.0",
		"timestamp": time.Now().Unix(),
		"checks": gin.H{
			"redis":    redisHealthy,
			"database": dbHealthy,
		},
		"providers": gin.H{
			"gemini":       s.geminiBreaker.State().String(),
			"cloudconvert": s.convertBreaker.State().String(),
		},
	})
}

func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		// Long enough for a full polling session plus the download.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting server",
		zap.String("addr", addr),
		zap.String("environment", s.config.Server.Environment))

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
