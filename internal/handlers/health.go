package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports that the process is serving
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "storefront-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readiness reports the backend in use and whether the remote store answers.
// A down remote does not fail readiness since reads fall back locally.
func Readiness(backendMode string, ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		remote := "disabled"
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			remote = "up"
			if err := ping(ctx); err != nil {
				remote = "down"
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "ready",
			"backend": backendMode,
			"remote":  remote,
		})
	}
}
