package server

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
)

// requireAdminToken guards operator endpoints with a shared header
// token. Requests fail closed when no token is configured.
func (s *Server) requireAdminToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		configured := strings.TrimSpace(s.cfg.AdminToken)
		presented := strings.TrimSpace(c.GetHeader("X-Admin-Token"))

		if configured == "" || presented == "" ||
			subtle.ConstantTimeCompare([]byte(configured), []byte(presented)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

func (s *Server) rateLimitGenerate() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.ToLower(strings.TrimSpace(c.Query("email")))
		if key == "" {
			key = c.ClientIP()
		}

		result, err := s.limiter.AllowGenerate(c.Request.Context(), key)
		if err != nil {
			s.log.Warn("rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if !result.Allowed {
			s.metrics.RecordRateLimitDenied(c.Request.Context(), "generate", "bucket_empty")
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		s.metrics.RecordRateLimitAllowed(c.Request.Context(), "generate")
		c.Next()
	}
}

func (s *Server) rateLimitWebhook() gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := strings.ToLower(strings.TrimSpace(c.Param("provider")))

		result, err := s.limiter.AllowWebhook(c.Request.Context(), provider)
		if err != nil {
			s.log.Warn("rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if !result.Allowed {
			s.metrics.RecordRateLimitDenied(c.Request.Context(), "webhook", "bucket_empty")
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		s.metrics.RecordRateLimitAllowed(c.Request.Context(), "webhook")
		c.Next()
	}
}
