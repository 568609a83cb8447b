package controller

import (
	"ai_mentor_client/internal/service"
	"ai_mentor_client/internal/util"
	"ai_mentor_client/pkg/logger"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthController struct {
	AuthService      *service.AuthService
	DashboardService *service.DashboardService
}

func NewAuthController(authService *service.AuthService, dashboardService *service.DashboardService) *AuthController {
	return &AuthController{
		AuthService:      authService,
		DashboardService: dashboardService,
	}
}

// SignupRequest 注册表单
// swagger:model SignupRequest
type SignupRequest struct {
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type GoogleLoginRequest struct {
	Credential string `json:"credential" binding:"required"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email" binding:"required,email"`
	OTP             string `json:"otp" binding:"required,len=6,numeric"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

// Signup godoc
// @Summary 注册账号
// @Description 创建账号并发送邮箱验证码，验证前不会登录
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body SignupRequest true "注册信息"
// @Success 200 {object} util.Response "验证码已发送"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/auth/signup [post]
func (c *AuthController) Signup(ctx *gin.Context) {
	var req SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	msg, err := c.AuthService.Signup(ctx.Request.Context(), service.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	respondAck(ctx, msg, err)
}

func (c *AuthController) VerifyOTP(ctx *gin.Context) {
	var req VerifyOTPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	_, err := c.AuthService.VerifyOTP(ctx.Request.Context(), req.Email, req.OTP)
	c.afterLogin(ctx, err)
}

func (c *AuthController) ResendOTP(ctx *gin.Context) {
	var req EmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	msg, err := c.AuthService.ResendOTP(ctx.Request.Context(), req.Email)
	respondAck(ctx, msg, err)
}

// Login godoc
// @Summary 邮箱密码登录
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "登录信息"
// @Success 200 {object} util.Response{data=service.ViewState} "登录成功，返回首页视图"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "邮箱或密码错误"
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	_, err := c.AuthService.Login(ctx.Request.Context(), req.Email, req.Password)
	c.afterLogin(ctx, err)
}

func (c *AuthController) GoogleLogin(ctx *gin.Context) {
	var req GoogleLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	_, err := c.AuthService.GoogleLogin(ctx.Request.Context(), req.Credential)
	c.afterLogin(ctx, err)
}

func (c *AuthController) ForgotPassword(ctx *gin.Context) {
	var req EmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	msg, err := c.AuthService.ForgotPassword(ctx.Request.Context(), req.Email)
	respondAck(ctx, msg, err)
}

func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var req ResetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	msg, err := c.AuthService.ResetPassword(ctx.Request.Context(), req.Email, req.OTP, req.Password)
	respondAck(ctx, msg, err)
}

func (c *AuthController) Logout(ctx *gin.Context) {
	c.DashboardService.Logout(ctx.Request.Context())
	util.Success(ctx, c.DashboardService.View())
}

// afterLogin 会话建立后加载首页；加载失败只体现在视图的错误提示里
func (c *AuthController) afterLogin(ctx *gin.Context, err error) {
	if err != nil {
		respondAck(ctx, "", err)
		return
	}
	c.DashboardService.Reset()
	if err := c.DashboardService.Load(ctx.Request.Context()); err != nil && !errors.Is(err, util.ErrStaleResult) {
		logger.Log.Warn("dashboard load after login failed", zap.Error(err))
	}
	util.Success(ctx, c.DashboardService.View())
}
