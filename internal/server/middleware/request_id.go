package middleware

import (
	"github.com/gin-gonic/gin"

	"yuzu/internal/pkg/id"
)

const requestIDHeader = "X-Request-ID"

// RequestID 为每个请求注入 request_id
// 优先沿用上游传入的 X-Request-ID，便于跨服务追踪
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = id.New()
		}

		c.Set("request_id", rid)
		c.Writer.Header().Set(requestIDHeader, rid)

		c.Next()
	}
}
