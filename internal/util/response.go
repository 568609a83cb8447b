package util

import (
	"ai_mentor_client/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构；出错时 Data 仍可携带当前视图
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func write(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Code:      code,
		Message:   message,
		Data:      data,
		RequestID: c.GetString("request_id"),
	})
}

func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, "success", data)
}

// Error data 可以为 nil
func Error(c *gin.Context, code int, message string, data interface{}) {
	write(c, code, message, data)
}

func BadRequest(c *gin.Context, message string) {
	write(c, http.StatusBadRequest, message, nil)
}

func Unauthorized(c *gin.Context) {
	write(c, http.StatusUnauthorized, "Unauthorized", nil)
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.String("request_id", c.GetString("request_id")),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	write(c, http.StatusInternalServerError, "Internal server error", nil)
}
