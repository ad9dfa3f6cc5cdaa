package controller

import (
	"context"
	"net/http"
	"time"
	"wiki_quiz_client/internal/util"
	"wiki_quiz_client/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthChecker is implemented by service.QuizService.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type HealthController struct {
	Backend HealthChecker
	Timeout time.Duration
}

func NewHealthController(backend HealthChecker) *HealthController {
	return &HealthController{Backend: backend, Timeout: 5 * time.Second}
}

// HealthCheck 检查客户端及后端可达性
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	probeCtx, cancel := context.WithTimeout(ctx.Request.Context(), c.Timeout)
	defer cancel()

	if err := c.Backend.Health(probeCtx); err != nil {
		logger.Log.Warn("Backend health probe failed", zap.Error(err))
		util.Error(ctx, http.StatusServiceUnavailable, "Backend unavailable: "+err.Error())
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"backend": "up",
		},
	})
}
