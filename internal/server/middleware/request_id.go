package middleware

import (
	"github.com/gin-gonic/gin"

	"rushbot/internal/pkg/id"
)

const requestIDHeader = "X-Request-ID"

// RequestID 请求 ID 中间件
// 优先沿用客户端带来的 ID，便于跨服务串联日志。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = id.New()
		}

		c.Set("request_id", requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)

		c.Next()
	}
}
