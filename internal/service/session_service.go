package service

import (
	"ai_mentor_client/internal/model"
	"ai_mentor_client/internal/repository"
	"ai_mentor_client/internal/util"
	"ai_mentor_client/pkg/logger"
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionService 持有当前会话：令牌持久化在本地槽位中，用户资料只在内存里
type SessionService struct {
	Store    repository.TokenStore
	Profiles ProfileBackend
	TokenKey string

	now func() time.Time

	mu    sync.RWMutex
	token string
	user  *model.Profile
}

func NewSessionService(store repository.TokenStore, profiles ProfileBackend, tokenKey string) *SessionService {
	return &SessionService{
		Store:    store,
		Profiles: profiles,
		TokenKey: tokenKey,
		now:      time.Now,
	}
}

// Restore 启动时恢复会话。资料获取失败时保持登录并使用占位用户；
// 已过期的 JWT 直接清掉
func (s *SessionService) Restore(ctx context.Context) error {
	token, err := s.Store.Get(ctx, s.TokenKey)
	if errors.Is(err, repository.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	if claims, err := util.DecodeToken(token); err == nil && claims.Expired(s.now()) {
		logger.Log.Info("stored token expired, clearing session", zap.Time("expires_at", claims.ExpiresAt))
		if err := s.Store.Delete(ctx, s.TokenKey); err != nil {
			return err
		}
		return util.ErrTokenExpired
	}

	user, err := s.Profiles.GetProfile(ctx, token)
	if err != nil {
		logger.Log.Warn("profile fetch failed on restore, using placeholder", zap.Error(err))
		user = model.PlaceholderProfile()
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	return nil
}

// Establish 登录成功后写入令牌与用户
func (s *SessionService) Establish(ctx context.Context, token string, user *model.Profile) error {
	if user == nil {
		user = model.PlaceholderProfile()
	}
	if err := s.Store.Set(ctx, s.TokenKey, token); err != nil {
		return err
	}
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	logger.Log.Info("session established", zap.Int("user_id", user.ID))
	return nil
}

// Clear 清空内存会话并删除持久化令牌，本地删除失败只记录日志
func (s *SessionService) Clear(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	if err := s.Store.Delete(ctx, s.TokenKey); err != nil {
		logger.Log.Error("failed to delete stored token", zap.Error(err))
	}
}

func (s *SessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User 返回用户副本
func (s *SessionService) User() *model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *SessionService) SetUser(user *model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" || user == nil {
		return
	}
	s.user = user
}

func (s *SessionService) Authenticated() bool {
	return s.Token() != ""
}
