package app

import (
	"time"
	"wiki_quiz_client/internal/controller"
	"wiki_quiz_client/pkg/monitoring"
	"wiki_quiz_client/pkg/security"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires the side server. The quiz itself runs on the
// console; this only serves scraping and probes.
func (a *App) registerRoutes(router *gin.Engine, health *controller.HealthController) {
	router.Use(security.Secure())

	router.GET("/metrics", monitoring.PrometheusHandler())
	// 每次探活都会请求后端
	router.GET("/health", security.RateLimiter(30, time.Minute), health.HealthCheck)
}
