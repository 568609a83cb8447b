package service

import (
	"ai_mentor_client/internal/config"
	"ai_mentor_client/internal/gateway"
	"ai_mentor_client/internal/model"
	"ai_mentor_client/internal/util"
	"ai_mentor_client/pkg/logger"
	"ai_mentor_client/pkg/monitoring"
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var ErrGoalRejected = errors.New("goal rejected")

// GoalRejectedError 后端判定目标不适合生成计划，Reason 原样展示给用户
type GoalRejectedError struct {
	Reason string
}

func (e *GoalRejectedError) Error() string { return e.Reason }

func (e *GoalRejectedError) Is(target error) bool { return target == ErrGoalRejected }

const defaultRejectReason = "This goal is not suitable for a learning plan."

type PlanInput struct {
	Goal            string
	TotalWeeks      int
	DailyCommitment int
}

type dashboardState struct {
	plansLoaded      bool
	profileComplete  bool
	welcomeDismissed bool
	wantsCreateNew   bool

	plans        []model.LearningPlanSummary
	selectedPlan *model.LearningPlanSummary
	planDetail   *model.LearningPlanDetail
	selectedWeek *model.WeeklyTheme
	weekly       *model.WeeklyContent
	selectedDay  *int
	daily        *model.DailyContent

	// 每个槽位记录最近一次请求的序号，结果返回时序号不一致即为过期
	loadReq uint64
	planReq uint64
	weekReq uint64
	dayReq  uint64

	loadingPlans bool
	loadingPlan  bool
	loadingWeek  bool
	generating   bool
	loadingDay   bool
	creating     bool
	saving       bool
	deletingID   int

	errMsg       string
	success      string
	successUntil time.Time
}

// DashboardService 单用户的导航与视图状态控制器。
// 网络请求期间不持有锁，提交结果前重新校验当前选择
type DashboardService struct {
	Backend Backend
	Session *SessionService
	Cfg     config.DashboardConfig

	now    func() time.Time
	flight singleflight.Group

	mu        sync.Mutex
	seq       uint64
	st        dashboardState
	completed map[int]map[int]struct{}
}

func NewDashboardService(backend Backend, session *SessionService, cfg config.DashboardConfig) *DashboardService {
	if cfg.SuccessBannerTTL <= 0 {
		cfg.SuccessBannerTTL = 3 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 2 * time.Minute
	}
	return &DashboardService{
		Backend:   backend,
		Session:   session,
		Cfg:       cfg,
		now:       time.Now,
		completed: make(map[int]map[int]struct{}),
	}
}

func (s *DashboardService) next() uint64 {
	s.seq++
	return s.seq
}

// detach 后端调用不随调用方断开而中止，只受 RequestTimeout 约束；
// 离开页面后返回的结果由请求序号丢弃
func (s *DashboardService) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.Cfg.RequestTimeout)
}

// shared 合并同一 key 的并发调用；共享的请求运行在脱离调用方的上下文上，
// 任一调用方取消只影响它自己的等待
func (s *DashboardService) shared(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := s.flight.DoChan(key, func() (interface{}, error) {
		work, cancel := s.detach(ctx)
		defer cancel()
		return fn(work)
	})
	select {
	case res := <-ch:
		if res.Shared {
			logger.Log.Debug("request coalesced", zap.String("op", key))
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *DashboardService) tokenLocked() (string, error) {
	token := s.Session.Token()
	if token == "" {
		return "", util.ErrNotAuthenticated
	}
	return token, nil
}

// Load 拉取计划列表与用户资料，登录或恢复会话后调用
func (s *DashboardService) Load(ctx context.Context) error {
	ctx, cancel := s.detach(ctx)
	defer cancel()

	s.mu.Lock()
	token, err := s.tokenLocked()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	req := s.next()
	s.st.loadReq = req
	s.st.loadingPlans = true
	s.st.plansLoaded = false
	s.st.errMsg = ""
	s.mu.Unlock()

	var (
		plans      []model.LearningPlanSummary
		profile    *model.Profile
		plansErr   error
		profileErr error
		g          errgroup.Group
	)
	g.Go(func() error {
		plans, plansErr = s.Backend.ListPlans(ctx, token)
		return nil
	})
	g.Go(func() error {
		profile, profileErr = s.Backend.GetProfile(ctx, token)
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if req != s.st.loadReq {
		return util.ErrStaleResult
	}
	s.st.loadingPlans = false
	s.st.plansLoaded = true

	if plansErr != nil {
		return s.failLocked(ctx, plansErr, util.MsgLoadDashboard)
	}
	s.st.plans = plans

	switch {
	case profileErr == nil:
		s.Session.SetUser(profile)
		s.st.profileComplete = profile.IsComplete()
	case gateway.IsUnauthorized(profileErr):
		return s.failLocked(ctx, profileErr, util.MsgLoadDashboard)
	default:
		logger.Log.Warn("profile fetch failed, keeping session user", zap.Error(profileErr))
		s.st.profileComplete = s.Session.User().IsComplete()
	}

	logger.Log.Debug("dashboard loaded",
		zap.Int("plans", len(plans)),
		zap.Bool("profile_complete", s.st.profileComplete),
	)
	return nil
}

// Reset 丢弃全部内存中的计划、周、日状态，进行中的请求结果随之失效
func (s *DashboardService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *DashboardService) resetLocked() {
	s.st = dashboardState{}
	s.completed = make(map[int]map[int]struct{})
}

func (s *DashboardService) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutLocked(ctx)
}

func (s *DashboardService) logoutLocked(ctx context.Context) {
	s.Session.Clear(ctx)
	s.resetLocked()
}

// failLocked 记录错误提示；后端返回 401 时强制登出
func (s *DashboardService) failLocked(ctx context.Context, err error, fallback string) error {
	if gateway.IsUnauthorized(err) {
		logger.Log.Info("backend rejected token, logging out")
		s.logoutLocked(ctx)
		s.st.errMsg = util.MsgSessionExpired
		return err
	}
	s.st.errMsg = gateway.Message(err, fallback)
	return err
}

func (s *DashboardService) clearDayLocked() {
	s.st.selectedDay = nil
	s.st.daily = nil
	s.st.dayReq = 0
	s.st.loadingDay = false
}

func (s *DashboardService) clearWeekLocked() {
	s.clearDayLocked()
	s.st.selectedWeek = nil
	s.st.weekly = nil
	s.st.weekReq = 0
	s.st.loadingWeek = false
	s.st.generating = false
}

func (s *DashboardService) clearPlanLocked() {
	s.clearWeekLocked()
	s.st.selectedPlan = nil
	s.st.planDetail = nil
	s.st.planReq = 0
	s.st.loadingPlan = false
}

// SelectPlan 进入计划详情；同一计划的详情已加载时不再请求
func (s *DashboardService) SelectPlan(ctx context.Context, planID int) error {
	ctx, cancel := s.detach(ctx)
	defer cancel()

	s.mu.Lock()
	token, err := s.tokenLocked()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	var plan *model.LearningPlanSummary
	for i := range s.st.plans {
		if s.st.plans[i].ID == planID {
			p := s.st.plans[i]
			plan = &p
			break
		}
	}
	if plan == nil {
		s.mu.Unlock()
		return util.ErrPlanNotFound
	}

	s.st.wantsCreateNew = false
	s.st.errMsg = ""
	if s.st.selectedPlan != nil && s.st.selectedPlan.ID == planID && (s.st.planDetail != nil || s.st.loadingPlan) {
		s.clearWeekLocked()
		s.mu.Unlock()
		return nil
	}
	s.clearPlanLocked()
	s.st.selectedPlan = plan
	req := s.next()
	s.st.planReq = req
	s.st.loadingPlan = true
	s.mu.Unlock()

	res, err := s.Backend.GetPlanStructure(ctx, token, planID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if req != s.st.planReq {
		return util.ErrStaleResult
	}
	s.st.loadingPlan = false
	if err != nil {
		return s.failLocked(ctx, err, "Failed to load plan details")
	}
	s.st.planDetail = res.Plan
	return nil
}

// OpenWeek 进入某一周。周内容未生成时切换到生成中状态并只调用一次生成接口，
// 其余错误直接展示，不做生成回退
func (s *DashboardService) OpenWeek(ctx context.Context, week int) error {
	ctx, cancel := s.detach(ctx)
	defer cancel()

	s.mu.Lock()
	token, err := s.tokenLocked()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if s.st.selectedPlan == nil || s.st.planDetail == nil {
		s.mu.Unlock()
		return util.ErrNoPlanSelected
	}
	theme, ok := s.st.planDetail.Week(week)
	if !ok {
		s.mu.Unlock()
		return util.ErrWeekNotFound
	}
	planID := s.st.selectedPlan.ID

	s.clearWeekLocked()
	s.st.selectedWeek = &theme
	s.st.errMsg = ""
	req := s.next()
	s.st.weekReq = req
	s.st.loadingWeek = true
	s.mu.Unlock()

	content, err := s.Backend.GetWeekContent(ctx, token, planID, week)
	if gateway.IsNotGenerated(err) {
		s.mu.Lock()
		if req != s.st.weekReq {
			s.mu.Unlock()
			return util.ErrStaleResult
		}
		s.st.generating = true
		progress := s.progressLocked(planID, week)
		s.mu.Unlock()

		logger.Log.Info("weekly content missing, generating", zap.Int("plan_id", planID), zap.Int("week", week))
		var gen *gateway.GeneratedWeek
		gen, err = s.Backend.GenerateWeekContent(ctx, token, model.ContentRequest{
			PlanID:       planID,
			WeekNumber:   week,
			UserProgress: progress,
		})
		if err == nil {
			monitoring.ContentGenerations.Inc()
			content = gen.Content
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if req != s.st.weekReq {
		return util.ErrStaleResult
	}
	s.st.loadingWeek = false
	s.st.generating = false
	if err != nil {
		return s.failLocked(ctx, err, "Failed to load weekly content")
	}
	s.st.weekly = content
	return nil
}

// progressLocked 生成周内容时随请求提交的学习进度
func (s *DashboardService) progressLocked(planID, week int) map[string]any {
	return map[string]any{
		"current_week":    week,
		"completed_weeks": s.completedLocked(planID),
	}
}

// SelectDay 进入某一天；日内容没有生成回退，缺失时展示错误
func (s *DashboardService) SelectDay(ctx context.Context, day int) error {
	ctx, cancel := s.detach(ctx)
	defer cancel()

	s.mu.Lock()
	token, err := s.tokenLocked()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if s.st.selectedPlan == nil {
		s.mu.Unlock()
		return util.ErrNoPlanSelected
	}
	if s.st.selectedWeek == nil || s.st.weekly == nil {
		s.mu.Unlock()
		return util.ErrNoWeekSelected
	}
	if _, ok := s.st.weekly.Day(day); !ok {
		s.mu.Unlock()
		return util.ErrDayNotFound
	}
	planID, week := s.st.selectedPlan.ID, s.st.selectedWeek.WeekNumber

	s.clearDayLocked()
	d := day
	s.st.selectedDay = &d
	s.st.errMsg = ""
	req := s.next()
	s.st.dayReq = req
	s.st.loadingDay = true
	s.mu.Unlock()

	content, err := s.Backend.GetDayContent(ctx, token, planID, week, day)

	s.mu.Lock()
	defer s.mu.Unlock()
	if req != s.st.dayReq {
		return util.ErrStaleResult
	}
	s.st.loadingDay = false
	if gateway.IsNotGenerated(err) {
		s.st.errMsg = util.MsgDailyNotAvailable
		return err
	}
	if err != nil {
		return s.failLocked(ctx, err, "Failed to load daily content")
	}
	s.st.daily = content
	return nil
}

func (s *DashboardService) BackToWeek() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearDayLocked()
	s.st.errMsg = ""
}

func (s *DashboardService) BackToPlan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearWeekLocked()
	s.st.errMsg = ""
}

func (s *DashboardService) BackToPlans() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearPlanLocked()
	s.st.errMsg = ""
}

// StartCreatePlan 用户主动要求新建计划
func (s *DashboardService) StartCreatePlan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearPlanLocked()
	s.st.wantsCreateNew = true
	s.st.errMsg = ""
}

func (s *DashboardService) CancelCreatePlan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.wantsCreateNew = false
	s.st.errMsg = ""
}

func (s *DashboardService) DismissWelcome() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.welcomeDismissed = true
}

// MarkWeekComplete 只记录在本地，按计划分别保存；重复标记不改变集合
func (s *DashboardService) MarkWeekComplete(week int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.selectedPlan == nil {
		return util.ErrNoPlanSelected
	}
	if s.st.planDetail != nil {
		if _, ok := s.st.planDetail.Week(week); !ok {
			return util.ErrWeekNotFound
		}
	}
	planID := s.st.selectedPlan.ID
	weeks, ok := s.completed[planID]
	if !ok {
		weeks = make(map[int]struct{})
		s.completed[planID] = weeks
	}
	weeks[week] = struct{}{}
	s.clearWeekLocked()
	s.st.errMsg = ""
	return nil
}

func (s *DashboardService) completedLocked(planID int) []int {
	weeks := make([]int, 0, len(s.completed[planID]))
	for w := range s.completed[planID] {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	return weeks
}

// CreatePlan 先由后端校验目标，通过后生成计划结构、刷新列表并选中新计划。
// 并发的重复提交共享同一次请求
func (s *DashboardService) CreatePlan(ctx context.Context, in PlanInput) (*model.LearningPlanSummary, error) {
	v, err := s.shared(ctx, "create-plan", func(ctx context.Context) (interface{}, error) {
		return s.createPlan(ctx, in)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.LearningPlanSummary), nil
}

func (s *DashboardService) createPlan(ctx context.Context, in PlanInput) (*model.LearningPlanSummary, error) {
	s.mu.Lock()
	token, err := s.tokenLocked()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.st.creating = true
	s.st.errMsg = ""
	s.mu.Unlock()

	goal := strings.TrimSpace(in.Goal)
	verdict, err := s.Backend.ValidateGoal(ctx, token, goal)
	if err != nil {
		return nil, s.finishCreate(ctx, err, "Failed to validate goal")
	}
	if !verdict.Appropriate {
		reason := verdict.Reason
		if reason == "" {
			reason = defaultRejectReason
		}
		s.mu.Lock()
		s.st.creating = false
		s.st.errMsg = reason
		s.mu.Unlock()
		return nil, &GoalRejectedError{Reason: reason}
	}

	res, err := s.Backend.CreatePlanStructure(ctx, token, model.PlanRequest{
		Goal:            goal,
		TotalWeeks:      in.TotalWeeks,
		DailyCommitment: in.DailyCommitment,
	})
	if err != nil {
		return nil, s.finishCreate(ctx, err, "Failed to create learning plan")
	}

	plans, listErr := s.Backend.ListPlans(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.creating = false
	if !s.Session.Authenticated() {
		return nil, util.ErrNotAuthenticated
	}
	if listErr != nil {
		if gateway.IsUnauthorized(listErr) {
			return nil, s.failLocked(ctx, listErr, util.MsgLoadDashboard)
		}
		logger.Log.Warn("plan list refresh failed after create", zap.Error(listErr))
		plans = append(append([]model.LearningPlanSummary(nil), s.st.plans...), summaryOf(res))
	}
	s.st.plans = plans

	created := summaryOf(res)
	for _, p := range plans {
		if p.ID == res.ID {
			created = p
			break
		}
	}

	s.clearPlanLocked()
	s.st.wantsCreateNew = false
	s.st.selectedPlan = &created
	s.st.planDetail = res.Plan
	s.st.success = util.MsgPlanCreated
	s.st.successUntil = s.now().Add(s.Cfg.SuccessBannerTTL)

	logger.Log.Info("learning plan created", zap.Int("plan_id", res.ID), zap.Int("total_weeks", res.Plan.TotalWeeks))
	out := created
	return &out, nil
}

func (s *DashboardService) finishCreate(ctx context.Context, err error, fallback string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.creating = false
	return s.failLocked(ctx, err, fallback)
}

func summaryOf(res *gateway.PlanResult) model.LearningPlanSummary {
	return model.LearningPlanSummary{
		ID:         res.ID,
		Goal:       res.Plan.Goal,
		TotalWeeks: res.Plan.TotalWeeks,
	}
}

// DeletePlan 成功后直接从内存列表移除，不重新拉取
func (s *DashboardService) DeletePlan(ctx context.Context, planID int) error {
	ctx, cancel := s.detach(ctx)
	defer cancel()

	s.mu.Lock()
	token, err := s.tokenLocked()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.st.deletingID = planID
	s.st.errMsg = ""
	s.mu.Unlock()

	err = s.Backend.DeletePlan(ctx, token, planID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.deletingID == planID {
		s.st.deletingID = 0
	}
	if err != nil {
		return s.failLocked(ctx, err, "Failed to delete plan")
	}

	kept := make([]model.LearningPlanSummary, 0, len(s.st.plans))
	for _, p := range s.st.plans {
		if p.ID != planID {
			kept = append(kept, p)
		}
	}
	s.st.plans = kept
	delete(s.completed, planID)
	if s.st.selectedPlan != nil && s.st.selectedPlan.ID == planID {
		s.clearPlanLocked()
		s.st.wantsCreateNew = false
	}
	logger.Log.Info("learning plan deleted", zap.Int("plan_id", planID))
	return nil
}

// UpdateProfile 保存成功后离开资料设置页进入欢迎页；失败时停留并展示错误
func (s *DashboardService) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (*model.Profile, error) {
	v, err := s.shared(ctx, "update-profile", func(ctx context.Context) (interface{}, error) {
		return s.updateProfile(ctx, update)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Profile), nil
}

func (s *DashboardService) updateProfile(ctx context.Context, update model.ProfileUpdate) (*model.Profile, error) {
	s.mu.Lock()
	token, err := s.tokenLocked()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.st.saving = true
	s.st.errMsg = ""
	s.mu.Unlock()

	updated, err := s.Backend.UpdateProfile(ctx, token, update)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.saving = false
	if err != nil {
		return nil, s.failLocked(ctx, err, "Failed to update profile")
	}

	merged := mergeProfile(s.Session.User(), update, updated)
	s.Session.SetUser(merged)
	s.st.profileComplete = true
	s.st.welcomeDismissed = false
	return merged, nil
}

// mergeProfile 后端返回的资料为准；缺失的身份字段和本次提交的字段从本地补齐
func mergeProfile(current *model.Profile, update model.ProfileUpdate, updated *model.Profile) *model.Profile {
	var p model.Profile
	if updated != nil {
		p = *updated
	}
	if current != nil {
		if p.ID == 0 {
			p.ID = current.ID
		}
		if p.Email == "" {
			p.Email = current.Email
		}
		if p.FirstName == "" {
			p.FirstName = current.FirstName
		}
		if p.LastName == "" {
			p.LastName = current.LastName
		}
	}
	if p.Age == nil {
		p.Age = update.Age
	}
	if p.Level == nil {
		p.Level = update.Level
	}
	if p.Background == nil {
		p.Background = update.Background
	}
	if p.PreferredLanguage == nil {
		p.PreferredLanguage = update.PreferredLanguage
	}
	if p.Interests == nil {
		p.Interests = update.Interests
	}
	if p.Country == nil {
		p.Country = update.Country
	}
	return &p
}
