package controller

import (
	"ai_mentor_client/internal/service"
	"ai_mentor_client/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// GetView godoc
// @Summary 获取当前视图
// @Description 返回当前应渲染的页面以及渲染所需的全部数据
// @Tags 仪表盘
// @Produce  json
// @Success 200 {object} util.Response{data=service.ViewState}
// @Router /api/view [get]
func (c *DashboardController) GetView(ctx *gin.Context) {
	util.Success(ctx, c.DashboardService.View())
}

// Reload 重新拉取计划列表与资料
func (c *DashboardController) Reload(ctx *gin.Context) {
	err := c.DashboardService.Load(ctx.Request.Context())
	respondView(ctx, c.DashboardService, err)
}

func (c *DashboardController) ClearError(ctx *gin.Context) {
	c.DashboardService.ClearError()
	util.Success(ctx, c.DashboardService.View())
}
