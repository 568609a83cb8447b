package model

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

type DailyMilestone struct {
	DayNumber       int        `json:"day_number"`
	Topic           string     `json:"topic"`
	Description     string     `json:"description"`
	DurationMinutes int        `json:"duration_minutes"`
	Difficulty      Difficulty `json:"difficulty"`
}

// WeeklyContent 按需生成的周内容，首次请求前不存在
type WeeklyContent struct {
	Theme           string           `json:"theme"`
	Objectives      []string         `json:"objectives"`
	KeyConcepts     []string         `json:"key_concepts"`
	Prerequisites   []string         `json:"prerequisites"`
	DailyMilestones []DailyMilestone `json:"daily_milestones"`
	AdaptiveNotes   string           `json:"adaptive_notes"`
}

func (w *WeeklyContent) Day(number int) (DailyMilestone, bool) {
	if w == nil {
		return DailyMilestone{}, false
	}
	for _, d := range w.DailyMilestones {
		if d.DayNumber == number {
			return d, true
		}
	}
	return DailyMilestone{}, false
}

type Lesson struct {
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Explanation string   `json:"explanation"`
	KeyPoints   []string `json:"key_points"`
}

type Resource struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// DailyContent 某一天的课程、练习与资源；练习结构对客户端不透明
type DailyContent struct {
	ID         int            `json:"id"`
	PlanID     int            `json:"plan_id"`
	WeekNumber int            `json:"week_number"`
	DayNumber  int            `json:"day_number"`
	Lesson     Lesson         `json:"content"`
	Exercises  map[string]any `json:"exercises"`
	Resources  []Resource     `json:"resources"`
}

// ContentRequest POST /learnings/weekly-content
type ContentRequest struct {
	PlanID       int            `json:"plan_id"`
	WeekNumber   int            `json:"week_number"`
	UserProgress map[string]any `json:"user_progress"`
}
