package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"claimrisk/internal/config"
	"claimrisk/internal/handler"
	"claimrisk/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	log logrus.FieldLogger,
	claimH *handler.ClaimHandler,
	healthH *handler.HealthHandler,
	pageH *handler.PageHandler,
) *gin.Engine {
	r := gin.New()

	// Multipart parts beyond this are spooled to disk by net/http.
	r.MaxMultipartMemory = 8 << 20

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	r.GET("/", pageH.Index)
	r.GET("/health", healthH.Health)

	r.POST("/analyze",
		middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		claimH.Analyze,
	)

	return r
}
