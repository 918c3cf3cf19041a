package ssl

import (
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
)

// TlsHandler 安全响应头中间件；redirect 为 true 时把 HTTP 请求重定向到 sslHost 的 HTTPS
//
// sslHost 是对外可访问的主机名（可带端口），为空时沿用请求的 Host。
func TlsHandler(sslHost string, redirect bool, isDevelopment bool) gin.HandlerFunc {
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect:        redirect,
		SSLHost:            sslHost,
		FrameDeny:          true,
		ContentTypeNosniff: true,
		ReferrerPolicy:     "no-referrer",
		IsDevelopment:      isDevelopment,
	})

	return func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)

		// If there was an error, do not continue.
		if err != nil {
			// Process 已经写入了响应（重定向），只中止 Gin 处理链
			c.Abort()
			return
		}

		c.Next()
	}
}
