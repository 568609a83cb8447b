package service

import (
	"ai_mentor_client/internal/model"
	"ai_mentor_client/internal/util"
)

// PlanCard 计划列表中的一项
type PlanCard struct {
	model.LearningPlanSummary
	Duration string `json:"duration"`
}

// PlanDetailView 计划详情及格式化后的时长文本
type PlanDetailView struct {
	*model.LearningPlanDetail
	Commitment     string `json:"commitment"`
	Duration       string `json:"duration"`
	CompletedWeeks []int  `json:"completed_weeks"`
}

type LoadingState struct {
	Plans          bool `json:"plans"`
	PlanDetail     bool `json:"plan_detail"`
	WeekContent    bool `json:"week_content"`
	GeneratingWeek bool `json:"generating_week"`
	DailyContent   bool `json:"daily_content"`
	CreatingPlan   bool `json:"creating_plan"`
	SavingProfile  bool `json:"saving_profile"`
	DeletingPlanID int  `json:"deleting_plan_id,omitempty"`
}

// ViewState 渲染当前页面所需的全部数据快照
type ViewState struct {
	Screen        Screen               `json:"screen"`
	User          *model.Profile       `json:"user"`
	Plans         []PlanCard           `json:"plans"`
	SelectedPlan  *PlanCard            `json:"selected_plan,omitempty"`
	PlanDetail    *PlanDetailView      `json:"plan_detail,omitempty"`
	SelectedWeek  *model.WeeklyTheme   `json:"selected_week,omitempty"`
	WeeklyContent *model.WeeklyContent `json:"weekly_content,omitempty"`
	SelectedDay   *int                 `json:"selected_day,omitempty"`
	DailyContent  *model.DailyContent  `json:"daily_content,omitempty"`
	Loading       LoadingState         `json:"loading"`
	Error         string               `json:"error,omitempty"`
	Success       string               `json:"success,omitempty"`
}

func planCard(p model.LearningPlanSummary) PlanCard {
	return PlanCard{LearningPlanSummary: p, Duration: util.FormatDuration(p.TotalWeeks)}
}

func (s *DashboardService) screenInputLocked() ScreenInput {
	return ScreenInput{
		Authenticated:    s.Session.Authenticated(),
		PlansLoading:     s.st.loadingPlans || !s.st.plansLoaded,
		HasSelectedPlan:  s.st.selectedPlan != nil,
		HasSelectedWeek:  s.st.selectedWeek != nil,
		HasSelectedDay:   s.st.selectedDay != nil,
		WantsCreateNew:   s.st.wantsCreateNew,
		PlanCount:        len(s.st.plans),
		ProfileComplete:  s.st.profileComplete,
		WelcomeDismissed: s.st.welcomeDismissed,
	}
}

// Screen 当前应渲染的页面
func (s *DashboardService) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SelectScreen(s.screenInputLocked())
}

// View 返回状态快照，返回值与内部状态不共享可变数据
func (s *DashboardService) View() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := ViewState{
		Screen: SelectScreen(s.screenInputLocked()),
		User:   s.Session.User(),
		Plans:  make([]PlanCard, 0, len(s.st.plans)),
		Loading: LoadingState{
			Plans:          s.st.loadingPlans,
			PlanDetail:     s.st.loadingPlan,
			WeekContent:    s.st.loadingWeek,
			GeneratingWeek: s.st.generating,
			DailyContent:   s.st.loadingDay,
			CreatingPlan:   s.st.creating,
			SavingProfile:  s.st.saving,
			DeletingPlanID: s.st.deletingID,
		},
		Error: s.st.errMsg,
	}
	for _, p := range s.st.plans {
		v.Plans = append(v.Plans, planCard(p))
	}
	if s.st.selectedPlan != nil {
		card := planCard(*s.st.selectedPlan)
		v.SelectedPlan = &card
		if d := s.st.planDetail; d != nil {
			detail := *d
			v.PlanDetail = &PlanDetailView{
				LearningPlanDetail: &detail,
				Commitment:         util.FormatCommitment(d.DailyCommitmentMinutes),
				Duration:           util.FormatDuration(d.TotalWeeks),
				CompletedWeeks:     s.completedLocked(s.st.selectedPlan.ID),
			}
		}
	}
	if s.st.selectedWeek != nil {
		w := *s.st.selectedWeek
		v.SelectedWeek = &w
	}
	if s.st.weekly != nil {
		wc := *s.st.weekly
		v.WeeklyContent = &wc
	}
	if s.st.selectedDay != nil {
		d := *s.st.selectedDay
		v.SelectedDay = &d
	}
	if s.st.daily != nil {
		dc := *s.st.daily
		v.DailyContent = &dc
	}
	if s.st.success != "" {
		if s.now().Before(s.st.successUntil) {
			v.Success = s.st.success
		} else {
			s.st.success = ""
		}
	}
	return v
}

// CompletedWeeks 某计划在本地标记为已完成的周
func (s *DashboardService) CompletedWeeks(planID int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completedLocked(planID)
}

// ClearError 关闭错误提示
func (s *DashboardService) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.errMsg = ""
}
