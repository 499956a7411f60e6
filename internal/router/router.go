package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-insights/internal/config"
	"github.com/stemsi/exstem-insights/internal/handler"
	"github.com/stemsi/exstem-insights/internal/middleware"
	"github.com/stemsi/exstem-insights/internal/response"
	"github.com/stemsi/exstem-insights/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Analytics *handler.AnalyticsHandler
	System    *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log := response.Logger(c)
		log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("handler panicked")
		response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
	}))
	if cfg.GinMode != gin.TestMode {
		router.Use(gin.Logger())
	}

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware(log))

	router.Use(middleware.Brotli(5, middleware.DefaultBrotliMinLength))

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)

	// ─── Analytics Group (JWT + Rate Limited) ──────────────────────────
	analytics := router.Group("/api/v1/analytics")
	analytics.Use(
		limiter.Middleware(),
		middleware.RequireAnalyticsJWT(authService),
		middleware.CacheControl(int(cfg.SnapshotTTL.Seconds())),
	)
	{
		analytics.GET("/students/max-exam", handlers.Analytics.GetMaxExamStudent)
		analytics.GET("/students/passing", handlers.Analytics.ListPassingStudents)
		analytics.GET("/students/exam-count", handlers.Analytics.ListByExamCount)
		analytics.GET("/students/exam-rating", handlers.Analytics.ListByExamAndRating)
		analytics.GET("/students/top", handlers.Analytics.ListTopScored)
		analytics.GET("/students/above-average", handlers.Analytics.ListAboveAverage)
		analytics.GET("/exams/average", handlers.Analytics.GetAverageScore)
		analytics.GET("/reports", handlers.Analytics.ListReports)
		analytics.GET("/system", handlers.System.GetStatus)
	}

	return router
}
