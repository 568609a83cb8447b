package service

import "fmt"

// Screen 当前应渲染的页面
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenLoading
	ScreenDailyContent
	ScreenWeekContent
	ScreenPlanDetail
	ScreenGoalSetup
	ScreenPlanList
	ScreenProfileSetup
	ScreenWelcome
)

var screenNames = map[Screen]string{
	ScreenLogin:        "login",
	ScreenLoading:      "loading",
	ScreenDailyContent: "daily_content",
	ScreenWeekContent:  "week_content",
	ScreenPlanDetail:   "plan_detail",
	ScreenGoalSetup:    "goal_setup",
	ScreenPlanList:     "plan_list",
	ScreenProfileSetup: "profile_setup",
	ScreenWelcome:      "welcome",
}

func (s Screen) String() string {
	if name, ok := screenNames[s]; ok {
		return name
	}
	return fmt.Sprintf("screen(%d)", int(s))
}

func (s Screen) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ScreenInput 页面选择所依赖的全部条件
type ScreenInput struct {
	Authenticated    bool
	PlansLoading     bool
	HasSelectedPlan  bool
	HasSelectedWeek  bool
	HasSelectedDay   bool
	WantsCreateNew   bool
	PlanCount        int
	ProfileComplete  bool
	WelcomeDismissed bool
}

// SelectScreen 按固定优先级选择页面，第一条满足的规则生效。
// 已有计划时计划列表优先于欢迎页，即使欢迎页尚未关闭。
func SelectScreen(in ScreenInput) Screen {
	switch {
	case !in.Authenticated:
		return ScreenLogin
	case in.PlansLoading:
		return ScreenLoading
	case in.HasSelectedPlan && in.HasSelectedWeek && in.HasSelectedDay:
		return ScreenDailyContent
	case in.HasSelectedPlan && in.HasSelectedWeek:
		return ScreenWeekContent
	case in.HasSelectedPlan:
		return ScreenPlanDetail
	case in.WantsCreateNew:
		return ScreenGoalSetup
	case in.PlanCount > 0:
		return ScreenPlanList
	case !in.ProfileComplete:
		return ScreenProfileSetup
	case !in.WelcomeDismissed:
		return ScreenWelcome
	default:
		return ScreenGoalSetup
	}
}
