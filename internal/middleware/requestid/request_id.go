package requestid

import (
	"strings"

	"QuillLink/pkg/util"

	"github.com/gin-gonic/gin"
)

const (
	// Header 请求 ID 的请求头 / 响应头
	Header = "X-Request-ID"
	// ContextKey gin.Context 中保存请求 ID 的 key
	ContextKey = "request_id"

	maxLen = 128
)

// RequestID 透传或生成请求 ID，写入 context 和响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(Header))
		if id == "" || len(id) > maxLen {
			id = util.GenerateUUID()
		}

		c.Set(ContextKey, id)
		c.Header(Header, id)
		c.Next()
	}
}

// Get 读取当前请求 ID
func Get(c *gin.Context) string {
	return c.GetString(ContextKey)
}
