package controller

import (
	"ai_mentor_client/internal/config"
	"ai_mentor_client/internal/gateway"
	"ai_mentor_client/internal/middleware"
	"ai_mentor_client/internal/repository"
	"ai_mentor_client/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

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

func envelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "data": data})
}

// fakeBackend 只实现登录、资料、计划列表和目标校验
func fakeBackend(t *testing.T, verdict map[string]any) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	creates := &atomic.Int32{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error_code":401,"error_message":"Invalid email or password"}`))
			return
		}
		envelope(w, http.StatusOK, map[string]any{"token": "tok", "user": map[string]any{"id": 1, "first_name": "Ada"}})
	})
	mux.HandleFunc("GET /profile", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusOK, map[string]any{"id": 1, "first_name": "Ada", "age": 30, "level": "beginner", "background": "student"})
	})
	mux.HandleFunc("GET /learnings", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusOK, []any{})
	})
	mux.HandleFunc("POST /learnings/validate-goal", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusOK, verdict)
	})
	mux.HandleFunc("POST /learnings/structure", func(w http.ResponseWriter, r *http.Request) {
		creates.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, creates
}

func newRouter(t *testing.T, backendURL string) (*gin.Engine, *service.SessionService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	client := gateway.New(config.BackendConfig{BaseURL: backendURL, Timeout: 5 * time.Second})
	session := service.NewSessionService(&memStore{data: map[string]string{}}, client, "token")
	auth := service.NewAuthService(client, session)
	dashboard := service.NewDashboardService(client, session, config.DashboardConfig{})

	authCtl := NewAuthController(auth, dashboard)
	profileCtl := NewProfileController(dashboard)
	dashboardCtl := NewDashboardController(dashboard)
	learningCtl := NewLearningController(dashboard)
	healthCtl := NewHealthController(func(context.Context) error { return nil }, client.BaseURL)

	r := gin.New()
	r.GET("/api/health", healthCtl.HealthCheck)
	r.GET("/api/view", dashboardCtl.GetView)
	r.POST("/api/auth/login", authCtl.Login)
	r.POST("/api/auth/signup", authCtl.Signup)
	r.POST("/api/auth/verify-otp", authCtl.VerifyOTP)
	r.POST("/api/auth/logout", authCtl.Logout)

	g := r.Group("/api", middleware.SessionRequired(session))
	g.PUT("/profile", profileCtl.UpdateProfile)
	g.POST("/plans", learningCtl.CreatePlan)
	g.POST("/plans/new", learningCtl.StartCreatePlan)
	g.POST("/plans/:id/select", learningCtl.SelectPlan)
	g.POST("/weeks/:week/open", learningCtl.OpenWeek)
	return r, session
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func screenOf(t *testing.T, resp apiResponse) string {
	t.Helper()
	var v struct {
		Screen string `json:"screen"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	return v.Screen
}

func login(t *testing.T, r *gin.Engine) {
	t.Helper()
	w, _ := do(t, r, http.MethodPost, "/api/auth/login", gin.H{"email": "ada@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestLoginValidation(t *testing.T) {
	srv, _ := fakeBackend(t, nil)
	r, _ := newRouter(t, srv.URL)

	cases := []gin.H{
		{"email": "not-an-email", "password": "secret1"},
		{"email": "ada@example.com", "password": "123"},
		{"email": "ada@example.com"},
	}
	for _, body := range cases {
		w, _ := do(t, r, http.MethodPost, "/api/auth/login", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%v", body)
	}
}

func TestSignupRequiresMatchingPasswords(t *testing.T) {
	srv, _ := fakeBackend(t, nil)
	r, _ := newRouter(t, srv.URL)

	w, _ := do(t, r, http.MethodPost, "/api/auth/signup", gin.H{
		"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com",
		"password": "secret1", "confirm_password": "secret2",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyOTPMustBeSixDigits(t *testing.T) {
	srv, _ := fakeBackend(t, nil)
	r, _ := newRouter(t, srv.URL)

	for _, otp := range []string{"12345", "1234567", "12a456"} {
		w, _ := do(t, r, http.MethodPost, "/api/auth/verify-otp", gin.H{"email": "ada@example.com", "otp": otp})
		assert.Equal(t, http.StatusBadRequest, w.Code, otp)
	}
}

func TestLoginReturnsView(t *testing.T) {
	srv, _ := fakeBackend(t, nil)
	r, session := newRouter(t, srv.URL)

	w, resp := do(t, r, http.MethodPost, "/api/auth/login", gin.H{"email": "ada@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "welcome", screenOf(t, resp))
	assert.True(t, session.Authenticated())
}

func TestLoginRejectedPassesThroughStatus(t *testing.T) {
	srv, _ := fakeBackend(t, nil)
	r, session := newRouter(t, srv.URL)

	w, resp := do(t, r, http.MethodPost, "/api/auth/login", gin.H{"email": "ada@example.com", "password": "wrong12"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", resp.Message)
	assert.False(t, session.Authenticated())
}

func TestSessionRequired(t *testing.T) {
	srv, _ := fakeBackend(t, nil)
	r, _ := newRouter(t, srv.URL)

	w, _ := do(t, r, http.MethodPut, "/api/profile", gin.H{"age": 20, "level": "beginner", "background": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, resp := do(t, r, http.MethodGet, "/api/view", nil)
	assert.Equal(t, "login", screenOf(t, resp))
}

func TestCreatePlanRejectedGoal(t *testing.T) {
	srv, creates := fakeBackend(t, map[string]any{"appropriate": false, "reason": "too broad"})
	r, _ := newRouter(t, srv.URL)
	login(t, r)
	do(t, r, http.MethodPost, "/api/plans/new", nil)

	w, resp := do(t, r, http.MethodPost, "/api/plans", gin.H{"goal": "everything", "total_weeks": 4, "daily_commitment": 30})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "too broad", resp.Message)
	assert.Equal(t, "goal_setup", screenOf(t, resp))
	assert.Equal(t, int32(0), creates.Load())
}

func TestCreatePlanValidation(t *testing.T) {
	srv, creates := fakeBackend(t, map[string]any{"appropriate": true})
	r, _ := newRouter(t, srv.URL)
	login(t, r)

	for _, body := range []gin.H{
		{"goal": "", "total_weeks": 4, "daily_commitment": 30},
		{"goal": "Learn Go", "total_weeks": 0, "daily_commitment": 30},
		{"goal": "Learn Go", "total_weeks": 4, "daily_commitment": 0},
	} {
		w, _ := do(t, r, http.MethodPost, "/api/plans", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%v", body)
	}
	assert.Equal(t, int32(0), creates.Load())
}

func TestCreatePlanBackendFailureIsBadGateway(t *testing.T) {
	srv, creates := fakeBackend(t, map[string]any{"appropriate": true})
	r, _ := newRouter(t, srv.URL)
	login(t, r)

	w, resp := do(t, r, http.MethodPost, "/api/plans", gin.H{"goal": "Learn Go", "total_weeks": 4, "daily_commitment": 30})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Failed to generate learning plan structure", resp.Message)
	assert.Equal(t, int32(1), creates.Load())
}

func TestSelectUnknownPlanAndBadParams(t *testing.T) {
	srv, _ := fakeBackend(t, nil)
	r, _ := newRouter(t, srv.URL)
	login(t, r)

	w, _ := do(t, r, http.MethodPost, "/api/plans/42/select", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/plans/abc/select", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/weeks/1/open", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogoutReturnsLoginScreen(t *testing.T) {
	srv, _ := fakeBackend(t, nil)
	r, session := newRouter(t, srv.URL)
	login(t, r)

	w, resp := do(t, r, http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "login", screenOf(t, resp))
	assert.False(t, session.Authenticated())
}

func TestHealthCheck(t *testing.T) {
	srv, _ := fakeBackend(t, nil)
	r, _ := newRouter(t, srv.URL)

	w, resp := do(t, r, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(resp.Data), srv.URL)
}
