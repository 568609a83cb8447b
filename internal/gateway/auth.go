package gateway

import (
	"ai_mentor_client/internal/model"
	"ai_mentor_client/internal/util"
	"context"
	"net/http"
	"strings"
)

// AuthResult 登录类接口的结果
type AuthResult struct {
	Token string
	User  *model.Profile
}

type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email"`
	OTP      string `json:"otp"`
	Password string `json:"password"`
}

// Signup 只返回确认信息，账号在 OTP 验证前不可用
func (c *Client) Signup(ctx context.Context, req SignupRequest) (string, error) {
	env, err := c.do(ctx, call{
		op: "signup", method: http.MethodPost, path: "/signup", body: req,
		fallback: "Failed to create account. Please try again.",
	})
	if err != nil {
		return "", err
	}
	return ackMessage(env, "Account created. Check your email for the verification code."), nil
}

func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (*AuthResult, error) {
	env, err := c.do(ctx, call{
		op: "verify_otp", method: http.MethodPost, path: "/verify-otp",
		body:     map[string]string{"email": email, "otp": otp},
		fallback: "Failed to verify OTP. Please try again.",
	})
	if err != nil {
		return nil, err
	}
	return authResult("verify_otp", env, email)
}

func (c *Client) ResendOTP(ctx context.Context, email string) (string, error) {
	env, err := c.do(ctx, call{
		op: "resend_otp", method: http.MethodPost, path: "/resend-otp",
		body:     map[string]string{"email": email},
		fallback: "Failed to resend OTP. Please try again.",
	})
	if err != nil {
		return "", err
	}
	return ackMessage(env, "A new verification code has been sent."), nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	env, err := c.do(ctx, call{
		op: "login", method: http.MethodPost, path: "/login",
		body:     map[string]string{"email": email, "password": password},
		fallback: "Failed to log in. Please try again.",
	})
	if err != nil {
		return nil, err
	}
	return authResult("login", env, email)
}

// GoogleLogin 用外部凭据换取平台令牌
func (c *Client) GoogleLogin(ctx context.Context, credential string) (*AuthResult, error) {
	env, err := c.do(ctx, call{
		op: "google_login", method: http.MethodPost, path: "/auth/google/login",
		body:     map[string]string{"token": credential},
		fallback: "Failed to login with Google",
	})
	if err != nil {
		return nil, err
	}
	return authResult("google_login", env, "")
}

func (c *Client) GetProfile(ctx context.Context, token string) (*model.Profile, error) {
	env, err := c.do(ctx, call{
		op: "get_profile", method: http.MethodGet, path: "/profile", token: token,
		fallback: "Failed to get user profile",
	})
	if err != nil {
		return nil, err
	}
	var p model.Profile
	if err := decodeObject("get_profile", env, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, update model.ProfileUpdate) (*model.Profile, error) {
	env, err := c.do(ctx, call{
		op: "update_profile", method: http.MethodPut, path: "/profile", token: token,
		body:     update,
		fallback: "Failed to update profile",
	})
	if err != nil {
		return nil, err
	}
	var p model.Profile
	if err := decodeData("update_profile", env, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	env, err := c.do(ctx, call{
		op: "forgot_password", method: http.MethodPost, path: "/forgot-password",
		body:     map[string]string{"email": email},
		fallback: "Failed to send password reset email",
	})
	if err != nil {
		return "", err
	}
	return ackMessage(env, "Password reset code sent."), nil
}

func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (string, error) {
	env, err := c.do(ctx, call{
		op: "reset_password", method: http.MethodPost, path: "/reset-password",
		body:     req,
		fallback: "Failed to reset password",
	})
	if err != nil {
		return "", err
	}
	return ackMessage(env, "Password has been reset."), nil
}

func authResult(op string, env *envelope, email string) (*AuthResult, error) {
	var payload struct {
		Token string         `json:"token"`
		User  *model.Profile `json:"user"`
	}
	if err := decodeData(op, env, &payload); err != nil {
		return nil, err
	}
	if payload.Token == "" {
		return nil, invalidResponse(op, nil)
	}
	user := payload.User
	if user == nil {
		user = profileFromToken(payload.Token, email)
	}
	return &AuthResult{Token: payload.Token, User: user}, nil
}

// profileFromToken 响应缺少 user 时，从令牌声明中恢复 id/email/姓名
func profileFromToken(token, email string) *model.Profile {
	p := &model.Profile{Email: email, FirstName: "User"}
	claims, err := util.DecodeToken(token)
	if err != nil {
		return p
	}
	p.ID = claims.UserID
	if claims.Email != "" {
		p.Email = claims.Email
	}
	if claims.Name != "" {
		first, last, _ := strings.Cut(strings.TrimSpace(claims.Name), " ")
		p.FirstName = first
		p.LastName = strings.TrimSpace(last)
	}
	return p
}
