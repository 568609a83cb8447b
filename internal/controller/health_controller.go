package controller

import (
	"ai_mentor_client/internal/util"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger 本地存储的连通性检查
type Pinger func(ctx context.Context) error

type HealthController struct {
	Storage    Pinger
	BackendURL func() string
}

func NewHealthController(storage Pinger, backendURL func() string) *HealthController {
	return &HealthController{Storage: storage, BackendURL: backendURL}
}

// @Summary 健康检查
// @Description 检查服务状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	// 检查本地存储
	if err := c.Storage(pingCtx); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Storage unavailable", nil)
		return
	}

	util.Success(ctx, gin.H{
		"status":  "ok",
		"backend": c.BackendURL(),
		"components": gin.H{
			"storage": "up",
		},
	})
}
