package service

import (
	"ai_mentor_client/internal/gateway"
	"ai_mentor_client/internal/model"
	"ai_mentor_client/pkg/logger"
	"context"
	"strings"

	"go.uber.org/zap"
)

type AuthService struct {
	Backend AuthBackend
	Session *SessionService
}

func NewAuthService(backend AuthBackend, session *SessionService) *AuthService {
	return &AuthService{
		Backend: backend,
		Session: session,
	}
}

type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Signup 只创建账号，需等待 OTP 验证后才会登录
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (string, error) {
	return s.Backend.Signup(ctx, gateway.SignupRequest{
		Email:     normalizeEmail(in.Email),
		Password:  in.Password,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	})
}

func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) (*model.Profile, error) {
	res, err := s.Backend.VerifyOTP(ctx, normalizeEmail(email), strings.TrimSpace(otp))
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, "verify_otp", res)
}

func (s *AuthService) ResendOTP(ctx context.Context, email string) (string, error) {
	return s.Backend.ResendOTP(ctx, normalizeEmail(email))
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.Profile, error) {
	res, err := s.Backend.Login(ctx, normalizeEmail(email), password)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, "login", res)
}

// GoogleLogin credential 为 Google 身份服务签发的 ID token
func (s *AuthService) GoogleLogin(ctx context.Context, credential string) (*model.Profile, error) {
	res, err := s.Backend.GoogleLogin(ctx, credential)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, "google_login", res)
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	return s.Backend.ForgotPassword(ctx, normalizeEmail(email))
}

func (s *AuthService) ResetPassword(ctx context.Context, email, otp, password string) (string, error) {
	return s.Backend.ResetPassword(ctx, gateway.ResetPasswordRequest{
		Email:    normalizeEmail(email),
		OTP:      strings.TrimSpace(otp),
		Password: password,
	})
}

func (s *AuthService) establish(ctx context.Context, method string, res *gateway.AuthResult) (*model.Profile, error) {
	if err := s.Session.Establish(ctx, res.Token, res.User); err != nil {
		logger.Log.Error("failed to persist session", zap.String("method", method), zap.Error(err))
		return nil, err
	}
	return s.Session.User(), nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
