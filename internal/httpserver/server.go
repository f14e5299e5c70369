package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/PratikDhanave/event-collector/internal/handlers"
)

// Pinger reports whether the routing-config database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter wires public endpoints and the events API.
// Public: /health, /ready, /metrics
// Events: POST /datasets/:datasetId/versions/:version/events (authorized per request)
func NewRouter(db Pinger, svc handlers.EventPoster, metrics prometheus.Gatherer) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the DB dependency is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	handlers.RegisterMetricRoutes(r, metrics)
	handlers.RegisterEventRoutes(r, svc)

	return r
}
