package accesslog

import (
	"net/http"
	"time"

	"QuillLink/internal/middleware/requestid"
	"QuillLink/pkg/back"
	"QuillLink/pkg/xerr"
	"QuillLink/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessLog 每个请求一行结构化日志，不记录请求体
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestid.Get(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("client_ip", c.ClientIP()),
		}
		switch {
		case status >= http.StatusInternalServerError:
			zlog.Error("request", fields...)
		case status >= http.StatusBadRequest:
			zlog.Warn("request", fields...)
		default:
			zlog.Info("request", fields...)
		}
	}
}

// Recovery 捕获 handler panic，返回 500 {"detail": ...}
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				zlog.Error("handler panic",
					zap.Any("panic", r),
					zap.String("request_id", requestid.Get(c)),
					zap.String("path", c.Request.URL.Path))
				back.Error(c, xerr.ErrServerError.Code, xerr.ErrServerError.Message)
			}
		}()
		c.Next()
	}
}
