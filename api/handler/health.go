package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/relcis/models"
	"github.com/use-agent/relcis/session"
)

// Health returns a handler for GET /api/health.
//
// Reports lease utilisation and degrades status when > 80% of the lease
// budget is in use.
func Health(sessions *session.Manager, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := sessions.Stats()

		status := "healthy"
		if stats.MaxLeases > 0 && stats.ActiveLeases > int(float64(stats.MaxLeases)*0.8) {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:     status,
			Uptime:     time.Since(startTime).Round(time.Second).String(),
			LeaseStats: stats,
			Version:    "0.1.0",
		})
	}
}
