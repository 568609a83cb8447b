package controller

import (
	"ai_mentor_client/internal/service"
	"ai_mentor_client/internal/util"

	"github.com/gin-gonic/gin"
)

// LearningController 计划、周、日三级导航
type LearningController struct {
	DashboardService *service.DashboardService
}

func NewLearningController(dashboardService *service.DashboardService) *LearningController {
	return &LearningController{DashboardService: dashboardService}
}

// CreatePlanRequest 目标设置表单
// swagger:model CreatePlanRequest
type CreatePlanRequest struct {
	Goal            string `json:"goal" binding:"required"`
	TotalWeeks      int    `json:"total_weeks" binding:"required,min=1"`
	DailyCommitment int    `json:"daily_commitment" binding:"required,min=1"`
}

func (c *LearningController) StartCreatePlan(ctx *gin.Context) {
	c.DashboardService.StartCreatePlan()
	util.Success(ctx, c.DashboardService.View())
}

func (c *LearningController) CancelCreatePlan(ctx *gin.Context) {
	c.DashboardService.CancelCreatePlan()
	util.Success(ctx, c.DashboardService.View())
}

// CreatePlan godoc
// @Summary 创建学习计划
// @Description 目标先由后端校验，不合适时返回 422 与原因
// @Tags 学习计划
// @Accept  json
// @Produce  json
// @Param   body body CreatePlanRequest true "学习目标"
// @Success 200 {object} util.Response{data=service.ViewState}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 422 {object} util.Response{data=service.ViewState} "目标不合适"
// @Router /api/plans [post]
func (c *LearningController) CreatePlan(ctx *gin.Context) {
	var req CreatePlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	_, err := c.DashboardService.CreatePlan(ctx.Request.Context(), service.PlanInput{
		Goal:            req.Goal,
		TotalWeeks:      req.TotalWeeks,
		DailyCommitment: req.DailyCommitment,
	})
	respondView(ctx, c.DashboardService, err)
}

func (c *LearningController) SelectPlan(ctx *gin.Context) {
	id, ok := intParam(ctx, "id")
	if !ok {
		return
	}
	err := c.DashboardService.SelectPlan(ctx.Request.Context(), id)
	respondView(ctx, c.DashboardService, err)
}

// @Summary 删除学习计划
// @Tags 学习计划
// @Produce json
// @Param id path int true "计划ID"
// @Success 200 {object} util.Response{data=service.ViewState}
// @Router /api/plans/{id} [delete]
func (c *LearningController) DeletePlan(ctx *gin.Context) {
	id, ok := intParam(ctx, "id")
	if !ok {
		return
	}
	err := c.DashboardService.DeletePlan(ctx.Request.Context(), id)
	respondView(ctx, c.DashboardService, err)
}

func (c *LearningController) BackToPlans(ctx *gin.Context) {
	c.DashboardService.BackToPlans()
	util.Success(ctx, c.DashboardService.View())
}

// OpenWeek 周内容不存在时会先生成，请求可能持续较长时间
func (c *LearningController) OpenWeek(ctx *gin.Context) {
	week, ok := intParam(ctx, "week")
	if !ok {
		return
	}
	err := c.DashboardService.OpenWeek(ctx.Request.Context(), week)
	respondView(ctx, c.DashboardService, err)
}

func (c *LearningController) CompleteWeek(ctx *gin.Context) {
	week, ok := intParam(ctx, "week")
	if !ok {
		return
	}
	err := c.DashboardService.MarkWeekComplete(week)
	respondView(ctx, c.DashboardService, err)
}

func (c *LearningController) BackToPlan(ctx *gin.Context) {
	c.DashboardService.BackToPlan()
	util.Success(ctx, c.DashboardService.View())
}

func (c *LearningController) OpenDay(ctx *gin.Context) {
	day, ok := intParam(ctx, "day")
	if !ok {
		return
	}
	err := c.DashboardService.SelectDay(ctx.Request.Context(), day)
	respondView(ctx, c.DashboardService, err)
}

func (c *LearningController) BackToWeek(ctx *gin.Context) {
	c.DashboardService.BackToWeek()
	util.Success(ctx, c.DashboardService.View())
}
