package util

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h gin.HandlerFunc) (int, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) { c.Set("request_id", "req-1") }, h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestErrorCarriesViewAndRequestID(t *testing.T) {
	code, resp := serve(t, func(c *gin.Context) {
		Error(c, http.StatusConflict, "no plan selected", gin.H{"screen": "plan_list"})
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "no plan selected", resp.Message)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, map[string]any{"screen": "plan_list"}, resp.Data)
}

func TestInternalErrorHidesCause(t *testing.T) {
	code, resp := serve(t, func(c *gin.Context) {
		LogInternalError(c, errors.New("disk on fire"))
	})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", resp.Message)
	assert.Nil(t, resp.Data)
}
