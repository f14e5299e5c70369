package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterMetricRoutes exposes the Prometheus registry.
//
// GET /metrics
// - Public, like /health
func RegisterMetricRoutes(r gin.IRoutes, g prometheus.Gatherer) {
	h := promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	r.GET("/metrics", gin.WrapH(h))
}
