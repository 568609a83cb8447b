package controller

import (
	"ai_mentor_client/internal/model"
	"ai_mentor_client/internal/service"
	"ai_mentor_client/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	DashboardService *service.DashboardService
}

func NewProfileController(dashboardService *service.DashboardService) *ProfileController {
	return &ProfileController{DashboardService: dashboardService}
}

// ProfileRequest 资料设置表单，age、level、background 为必填
type ProfileRequest struct {
	Age               int    `json:"age" binding:"required,min=1,max=120"`
	Level             string `json:"level" binding:"required"`
	Background        string `json:"background" binding:"required"`
	PreferredLanguage string `json:"preferred_language"`
	Interests         string `json:"interests"`
	Country           string `json:"country"`
}

// UpdateProfile godoc
// @Summary 保存个人资料
// @Tags 用户
// @Accept  json
// @Produce  json
// @Param   body body ProfileRequest true "个人资料"
// @Success 200 {object} util.Response{data=service.ViewState}
// @Router /api/profile [put]
func (c *ProfileController) UpdateProfile(ctx *gin.Context) {
	var req ProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	update := model.ProfileUpdate{
		Age:               &req.Age,
		Level:             optional(req.Level),
		Background:        optional(req.Background),
		PreferredLanguage: optional(req.PreferredLanguage),
		Interests:         optional(req.Interests),
		Country:           optional(req.Country),
	}
	_, err := c.DashboardService.UpdateProfile(ctx.Request.Context(), update)
	respondView(ctx, c.DashboardService, err)
}

func (c *ProfileController) DismissWelcome(ctx *gin.Context) {
	c.DashboardService.DismissWelcome()
	util.Success(ctx, c.DashboardService.View())
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
