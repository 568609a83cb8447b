package middleware

import (
	"ai_mentor_client/internal/service"
	"ai_mentor_client/internal/util"

	"github.com/gin-gonic/gin"
)

// SessionRequired 未登录时拒绝访问需要会话的接口
func SessionRequired(session *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !session.Authenticated() {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
