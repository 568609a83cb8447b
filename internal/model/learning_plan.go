package model

import "time"

// swagger:model LearningPlanSummary
type LearningPlanSummary struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	Goal       string    `json:"goal"`
	TotalWeeks int       `json:"total_weeks"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// WeeklyTheme 计划中某一周的主题，week_number 从 1 开始且连续
type WeeklyTheme struct {
	WeekNumber    int      `json:"week_number"`
	Theme         string   `json:"theme"`
	Objectives    []string `json:"objectives"`
	KeyConcepts   []string `json:"key_concepts"`
	Prerequisites []string `json:"prerequisites"`
}

// LearningPlanDetail 展开后的计划结构
type LearningPlanDetail struct {
	ID                     int                 `json:"id"`
	Goal                   string              `json:"goal"`
	TotalWeeks             int                 `json:"total_weeks"`
	DailyCommitmentMinutes int                 `json:"daily_commitment_minutes"`
	WeeklyThemes           []WeeklyTheme       `json:"weekly_themes"`
	Prerequisites          map[string][]string `json:"prerequisites"`
	AdaptiveRules          map[string]string   `json:"adaptive_rules"`
}

func (d *LearningPlanDetail) Week(number int) (WeeklyTheme, bool) {
	if d == nil {
		return WeeklyTheme{}, false
	}
	for _, w := range d.WeeklyThemes {
		if w.WeekNumber == number {
			return w, true
		}
	}
	return WeeklyTheme{}, false
}

// PlanRequest POST /learnings/structure
type PlanRequest struct {
	Goal            string `json:"goal"`
	TotalWeeks      int    `json:"total_weeks"`
	DailyCommitment int    `json:"daily_commitment"`
}

// GoalVerdict 目标是否适合生成计划，由后端判断
type GoalVerdict struct {
	Appropriate bool   `json:"appropriate"`
	Reason      string `json:"reason"`
}
