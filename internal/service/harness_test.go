package service

import (
	"ai_mentor_client/internal/config"
	"ai_mentor_client/internal/gateway"
	"ai_mentor_client/internal/model"
	"ai_mentor_client/internal/repository"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore { return &memStore{data: map[string]string{}} }

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", repository.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// fakeBackend 内存实现的学习平台后端，记录每个接口的调用次数
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	profile       *model.Profile
	profileStatus int
	updateStatus  int
	plans         []model.LearningPlanSummary
	details       map[int]*model.LearningPlanDetail
	weekly        map[string]*model.WeeklyContent
	weekStatus    int
	daily         map[string]*model.DailyContent
	verdict       model.GoalVerdict
	nextPlanID    int
	listStatus    int
	createDelay   time.Duration
	rejectToken   bool

	generateStarted chan struct{}
	generateRelease chan struct{}
}

func newFakeBackend() *fakeBackend {
	age := 30
	level, background := "beginner", "student"
	return &fakeBackend{
		calls:   map[string]int{},
		profile: &model.Profile{ID: 1, Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace", Age: &age, Level: &level, Background: &background},
		details: map[int]*model.LearningPlanDetail{},
		weekly:  map[string]*model.WeeklyContent{},
		daily:   map[string]*model.DailyContent{},
		verdict: model.GoalVerdict{Appropriate: true},

		nextPlanID: 100,
	}
}

func (f *fakeBackend) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeBackend) addPlan(id, weeks int) {
	f.plans = append(f.plans, model.LearningPlanSummary{ID: id, UserID: 1, Goal: fmt.Sprintf("goal %d", id), TotalWeeks: weeks})
	detail := &model.LearningPlanDetail{ID: id, Goal: fmt.Sprintf("goal %d", id), TotalWeeks: weeks, DailyCommitmentMinutes: 90}
	for w := 1; w <= weeks; w++ {
		detail.WeeklyThemes = append(detail.WeeklyThemes, model.WeeklyTheme{WeekNumber: w, Theme: fmt.Sprintf("theme %d", w)})
	}
	f.details[id] = detail
}

func weekContent(theme string) *model.WeeklyContent {
	return &model.WeeklyContent{
		Theme: theme,
		DailyMilestones: []model.DailyMilestone{
			{DayNumber: 1, Topic: "intro", DurationMinutes: 30, Difficulty: model.DifficultyEasy},
			{DayNumber: 2, Topic: "practice", DurationMinutes: 45, Difficulty: model.DifficultyMedium},
		},
	}
}

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status >= 300 {
		_ = json.NewEncoder(w).Encode(map[string]any{"error_code": status, "error_message": fmt.Sprintf("backend error %d", status)})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "message": "ok", "data": data})
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	track := func(pattern string, h func(w http.ResponseWriter, r *http.Request)) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			f.calls[pattern]++
			reject := f.rejectToken
			f.mu.Unlock()
			if reject && r.Header.Get("Authorization") != "" {
				writeEnvelope(w, http.StatusUnauthorized, nil)
				return
			}
			h(w, r)
		})
	}
	pathInt := func(r *http.Request, name string) int {
		n, _ := strconv.Atoi(r.PathValue(name))
		return n
	}

	track("POST /login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"token": "tok-login", "user": f.profile})
	})
	track("GET /profile", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		status, p := f.profileStatus, f.profile
		f.mu.Unlock()
		if status != 0 {
			writeEnvelope(w, status, nil)
			return
		}
		writeEnvelope(w, http.StatusOK, p)
	})
	track("PUT /profile", func(w http.ResponseWriter, r *http.Request) {
		var upd model.ProfileUpdate
		_ = json.NewDecoder(r.Body).Decode(&upd)
		if f.updateStatus != 0 {
			writeEnvelope(w, f.updateStatus, nil)
			return
		}
		f.mu.Lock()
		p := *f.profile
		p.Age, p.Level, p.Background = upd.Age, upd.Level, upd.Background
		f.profile = &p
		f.mu.Unlock()
		time.Sleep(f.createDelay)
		writeEnvelope(w, http.StatusOK, p)
	})
	track("GET /learnings", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		status := f.listStatus
		plans := append([]model.LearningPlanSummary(nil), f.plans...)
		f.mu.Unlock()
		if status != 0 {
			writeEnvelope(w, status, nil)
			return
		}
		writeEnvelope(w, http.StatusOK, plans)
	})
	track("POST /learnings/validate-goal", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, f.verdict)
	})
	track("POST /learnings/structure", func(w http.ResponseWriter, r *http.Request) {
		var req model.PlanRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		time.Sleep(f.createDelay)
		f.mu.Lock()
		id := f.nextPlanID
		f.nextPlanID++
		f.addPlan(id, req.TotalWeeks)
		f.plans[len(f.plans)-1].Goal = req.Goal
		f.details[id].Goal = req.Goal
		f.details[id].DailyCommitmentMinutes = req.DailyCommitment
		detail := f.details[id]
		f.mu.Unlock()
		writeEnvelope(w, http.StatusOK, map[string]any{"id": id, "plan": detail})
	})
	track("GET /learnings/structure/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := pathInt(r, "id")
		f.mu.Lock()
		detail, ok := f.details[id]
		f.mu.Unlock()
		if !ok {
			writeEnvelope(w, http.StatusNotFound, nil)
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"id": id, "plan": detail})
	})
	track("GET /learnings/weekly-content/{week}/{plan}", func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("%d/%d", pathInt(r, "plan"), pathInt(r, "week"))
		f.mu.Lock()
		status := f.weekStatus
		wc, ok := f.weekly[key]
		f.mu.Unlock()
		switch {
		case status != 0:
			writeEnvelope(w, status, nil)
		case !ok:
			writeEnvelope(w, http.StatusNotFound, nil)
		default:
			writeEnvelope(w, http.StatusOK, wc)
		}
	})
	track("POST /learnings/weekly-content", func(w http.ResponseWriter, r *http.Request) {
		var req model.ContentRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if f.generateStarted != nil {
			f.generateStarted <- struct{}{}
			<-f.generateRelease
		}
		wc := weekContent(fmt.Sprintf("generated %d", req.WeekNumber))
		f.mu.Lock()
		f.weekly[fmt.Sprintf("%d/%d", req.PlanID, req.WeekNumber)] = wc
		f.mu.Unlock()
		writeEnvelope(w, http.StatusCreated, map[string]any{"id": 55, "content": wc})
	})
	track("GET /learnings/daily-content/{day}/{week}/{plan}", func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("%d/%d/%d", pathInt(r, "plan"), pathInt(r, "week"), pathInt(r, "day"))
		f.mu.Lock()
		dc, ok := f.daily[key]
		f.mu.Unlock()
		if !ok {
			writeEnvelope(w, http.StatusNotFound, nil)
			return
		}
		writeEnvelope(w, http.StatusOK, dc)
	})
	track("DELETE /learnings/plan/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := pathInt(r, "id")
		f.mu.Lock()
		delete(f.details, id)
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

type harness struct {
	backend   *fakeBackend
	store     *memStore
	client    *gateway.Client
	session   *SessionService
	dashboard *DashboardService
	auth      *AuthService
}

func newHarness(t *testing.T, fb *fakeBackend) *harness {
	t.Helper()
	srv := httptest.NewServer(fb.handler())
	t.Cleanup(srv.Close)

	client := gateway.New(config.BackendConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	store := newMemStore()
	session := NewSessionService(store, client, "token")
	return &harness{
		backend:   fb,
		store:     store,
		client:    client,
		session:   session,
		dashboard: NewDashboardService(client, session, config.DashboardConfig{SuccessBannerTTL: 3 * time.Second}),
		auth:      NewAuthService(client, session),
	}
}

// loggedIn 建立会话并加载首页数据
func (h *harness) loggedIn(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.session.Establish(ctx, "tok-1", &model.Profile{ID: 1, FirstName: "Ada"}))
	require.NoError(t, h.dashboard.Load(ctx))
}
