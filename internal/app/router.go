package app

import (
	"ai_mentor_client/internal/middleware"
	"ai_mentor_client/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要会话的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.SessionRequired(a.services.session))
	{
		a.registerDashboardRoutes(authGroup, c)
		a.registerLearningRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.GET("/view", c.dashboard.GetView)
	}

	auth := router.Group("/api/auth")
	{
		auth.POST("/signup", c.auth.Signup)
		auth.POST("/verify-otp", c.auth.VerifyOTP)
		auth.POST("/resend-otp", c.auth.ResendOTP)
		auth.POST("/login", c.auth.Login)
		auth.POST("/google", c.auth.GoogleLogin)
		auth.POST("/forgot-password", c.auth.ForgotPassword)
		auth.POST("/reset-password", c.auth.ResetPassword)
		auth.POST("/logout", c.auth.Logout)
	}
}

func (a *App) registerDashboardRoutes(group *gin.RouterGroup, c *controllers) {
	group.POST("/view/reload", c.dashboard.Reload)
	group.DELETE("/view/error", c.dashboard.ClearError)
	group.PUT("/profile", c.profile.UpdateProfile)
	group.POST("/welcome/dismiss", c.profile.DismissWelcome)
}

func (a *App) registerLearningRoutes(group *gin.RouterGroup, c *controllers) {
	plans := group.Group("/plans")
	{
		plans.POST("/new", c.learning.StartCreatePlan)
		plans.DELETE("/new", c.learning.CancelCreatePlan)
		plans.POST("", c.learning.CreatePlan)
		plans.POST("/back", c.learning.BackToPlans)
		plans.POST("/:id/select", c.learning.SelectPlan)
		plans.DELETE("/:id", c.learning.DeletePlan)
	}

	weeks := group.Group("/weeks")
	{
		weeks.POST("/back", c.learning.BackToPlan)
		weeks.POST("/:week/open", c.learning.OpenWeek)
		weeks.POST("/:week/complete", c.learning.CompleteWeek)
	}

	days := group.Group("/days")
	{
		days.POST("/back", c.learning.BackToWeek)
		days.POST("/:day/open", c.learning.OpenDay)
	}
}
