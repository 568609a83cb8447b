package gateway

import (
	"ai_mentor_client/internal/model"
	"context"
	"fmt"
	"net/http"
)

// PlanResult 计划结构接口返回 {id, plan}
type PlanResult struct {
	ID   int
	Plan *model.LearningPlanDetail
}

// GeneratedWeek 生成周内容接口返回 {id, content}
type GeneratedWeek struct {
	ID      int
	Content *model.WeeklyContent
}

// ValidateGoal 目标是否合适完全由后端判断
func (c *Client) ValidateGoal(ctx context.Context, token, goal string) (*model.GoalVerdict, error) {
	env, err := c.do(ctx, call{
		op: "validate_goal", method: http.MethodPost, path: "/learnings/validate-goal", token: token,
		body:     map[string]string{"goal": goal},
		fallback: "Failed to validate goal",
	})
	if err != nil {
		return nil, err
	}
	var payload struct {
		Appropriate *bool  `json:"appropriate"`
		Reason      string `json:"reason"`
	}
	if err := decodeData("validate_goal", env, &payload); err != nil {
		return nil, err
	}
	if payload.Appropriate == nil {
		return nil, invalidResponse("validate_goal", nil)
	}
	return &model.GoalVerdict{Appropriate: *payload.Appropriate, Reason: payload.Reason}, nil
}

func (c *Client) ListPlans(ctx context.Context, token string) ([]model.LearningPlanSummary, error) {
	env, err := c.do(ctx, call{
		op: "list_plans", method: http.MethodGet, path: "/learnings", token: token,
		fallback: "Failed to fetch learning plans",
	})
	if err != nil {
		return nil, err
	}
	// data 为 null 表示还没有计划
	if string(env.Data) == "null" {
		return []model.LearningPlanSummary{}, nil
	}
	var plans []model.LearningPlanSummary
	if err := decodeData("list_plans", env, &plans); err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []model.LearningPlanSummary{}
	}
	return plans, nil
}

func (c *Client) CreatePlanStructure(ctx context.Context, token string, req model.PlanRequest) (*PlanResult, error) {
	env, err := c.do(ctx, call{
		op: "create_plan", method: http.MethodPost, path: "/learnings/structure", token: token,
		body:     req,
		fallback: "Failed to generate learning plan structure",
	})
	if err != nil {
		return nil, err
	}
	res, err := planResult("create_plan", env)
	if err != nil {
		return nil, err
	}
	if res.ID == 0 {
		return nil, invalidResponse("create_plan", nil)
	}
	return res, nil
}

func (c *Client) GetPlanStructure(ctx context.Context, token string, planID int) (*PlanResult, error) {
	env, err := c.do(ctx, call{
		op: "get_plan", method: http.MethodGet, path: fmt.Sprintf("/learnings/structure/%d", planID), token: token,
		fallback: "Failed to fetch plan structure",
	})
	if err != nil {
		return nil, err
	}
	res, err := planResult("get_plan", env)
	if err != nil {
		return nil, err
	}
	if res.ID == 0 {
		res.ID = planID
	}
	return res, nil
}

// GetWeekContent 内容尚未生成时返回 KindNotGenerated
func (c *Client) GetWeekContent(ctx context.Context, token string, planID, week int) (*model.WeeklyContent, error) {
	env, err := c.do(ctx, call{
		op: "get_week_content", method: http.MethodGet, path: fmt.Sprintf("/learnings/weekly-content/%d/%d", week, planID), token: token,
		missOn404: true,
		fallback:  "Failed to fetch weekly content",
	})
	if err != nil {
		return nil, err
	}
	var wc model.WeeklyContent
	if err := decodeObject("get_week_content", env, &wc); err != nil {
		return nil, err
	}
	return &wc, nil
}

func (c *Client) GenerateWeekContent(ctx context.Context, token string, req model.ContentRequest) (*GeneratedWeek, error) {
	if req.UserProgress == nil {
		req.UserProgress = map[string]any{}
	}
	env, err := c.do(ctx, call{
		op: "generate_week_content", method: http.MethodPost, path: "/learnings/weekly-content", token: token,
		body:     req,
		fallback: "Failed to generate weekly content",
	})
	if err != nil {
		return nil, err
	}
	var payload struct {
		ID      int                  `json:"id"`
		Content *model.WeeklyContent `json:"content"`
	}
	if err := decodeData("generate_week_content", env, &payload); err != nil {
		return nil, err
	}
	if payload.Content == nil {
		return nil, invalidResponse("generate_week_content", nil)
	}
	return &GeneratedWeek{ID: payload.ID, Content: payload.Content}, nil
}

func (c *Client) GetDayContent(ctx context.Context, token string, planID, week, day int) (*model.DailyContent, error) {
	env, err := c.do(ctx, call{
		op: "get_day_content", method: http.MethodGet, path: fmt.Sprintf("/learnings/daily-content/%d/%d/%d", day, week, planID), token: token,
		missOn404: true,
		fallback:  "Failed to fetch daily content",
	})
	if err != nil {
		return nil, err
	}
	var dc model.DailyContent
	if err := decodeObject("get_day_content", env, &dc); err != nil {
		return nil, err
	}
	return &dc, nil
}

func (c *Client) DeletePlan(ctx context.Context, token string, planID int) error {
	_, err := c.do(ctx, call{
		op: "delete_plan", method: http.MethodDelete, path: fmt.Sprintf("/learnings/plan/%d", planID), token: token,
		fallback: "Failed to delete plan",
	})
	return err
}

func planResult(op string, env *envelope) (*PlanResult, error) {
	var payload struct {
		ID   int                       `json:"id"`
		Plan *model.LearningPlanDetail `json:"plan"`
	}
	if err := decodeData(op, env, &payload); err != nil {
		return nil, err
	}
	if payload.Plan == nil {
		return nil, invalidResponse(op, nil)
	}
	return &PlanResult{ID: payload.ID, Plan: payload.Plan}, nil
}
