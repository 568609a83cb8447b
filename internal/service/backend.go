package service

import (
	"ai_mentor_client/internal/gateway"
	"ai_mentor_client/internal/model"
	"context"
)

// AuthBackend 认证相关的远程接口
type AuthBackend interface {
	Signup(ctx context.Context, req gateway.SignupRequest) (string, error)
	VerifyOTP(ctx context.Context, email, otp string) (*gateway.AuthResult, error)
	ResendOTP(ctx context.Context, email string) (string, error)
	Login(ctx context.Context, email, password string) (*gateway.AuthResult, error)
	GoogleLogin(ctx context.Context, credential string) (*gateway.AuthResult, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, req gateway.ResetPasswordRequest) (string, error)
}

// ProfileBackend 用户资料读写
type ProfileBackend interface {
	GetProfile(ctx context.Context, token string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, token string, update model.ProfileUpdate) (*model.Profile, error)
}

// LearningBackend 学习计划与内容
type LearningBackend interface {
	ValidateGoal(ctx context.Context, token, goal string) (*model.GoalVerdict, error)
	ListPlans(ctx context.Context, token string) ([]model.LearningPlanSummary, error)
	CreatePlanStructure(ctx context.Context, token string, req model.PlanRequest) (*gateway.PlanResult, error)
	GetPlanStructure(ctx context.Context, token string, planID int) (*gateway.PlanResult, error)
	GetWeekContent(ctx context.Context, token string, planID, week int) (*model.WeeklyContent, error)
	GenerateWeekContent(ctx context.Context, token string, req model.ContentRequest) (*gateway.GeneratedWeek, error)
	GetDayContent(ctx context.Context, token string, planID, week, day int) (*model.DailyContent, error)
	DeletePlan(ctx context.Context, token string, planID int) error
}

// Backend 远程后端的完整能力，*gateway.Client 实现了它
type Backend interface {
	AuthBackend
	ProfileBackend
	LearningBackend
}

var _ Backend = (*gateway.Client)(nil)
