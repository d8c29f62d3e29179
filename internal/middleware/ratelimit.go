package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"claimrisk/internal/domain"
)

// RateLimit throttles requests with a process-wide token bucket. A
// non-positive rps disables it.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	retryAfter := strconv.Itoa(int(math.Ceil(1 / rps)))

	return func(c *gin.Context) {
		if !limiter.Allow() {
			GetLogger(c).WithField("path", c.Request.URL.Path).Warn("middleware.RateLimit: request throttled")
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, &domain.AnalysisResult{
				RiskScore:      0,
				Recommendation: domain.RecommendationError,
				Reasoning:      "Too many requests. Please retry later.",
				Error:          "Rate limit exceeded",
				ErrorKind:      domain.ErrorKindRateLimited,
			})
			return
		}
		c.Next()
	}
}
