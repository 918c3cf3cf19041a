package http

import (
	"context"
	"errors"
	"net/http"

	"QuillLink/internal/modules/rewrite/application/dto/request"
	"QuillLink/internal/modules/rewrite/application/service"
	"QuillLink/internal/modules/rewrite/infrastructure/pipeline"
	"QuillLink/pkg/back"
	"QuillLink/pkg/xerr"
	"QuillLink/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// bodySlack 除 text 外其余字段与 JSON 结构的余量
const bodySlack = 16 << 10

// RewriteHandler 改写服务 HTTP Handler
type RewriteHandler struct {
	svc          service.RewriteService
	maxBodyBytes int64
}

// NewRewriteHandler maxTextLength 为 text 字符上限，用于限制请求体大小
func NewRewriteHandler(svc service.RewriteService, maxTextLength int) *RewriteHandler {
	if maxTextLength <= 0 {
		maxTextLength = 8000
	}
	// 单个字符在 JSON 中最多 6 字节（\uXXXX）
	return &RewriteHandler{svc: svc, maxBodyBytes: int64(maxTextLength)*6 + bodySlack}
}

// Healthz GET /healthz
func (h *RewriteHandler) Healthz(c *gin.Context) {
	back.Success(c, h.svc.Health())
}

// Presets GET /presets
func (h *RewriteHandler) Presets(c *gin.Context) {
	back.Success(c, h.svc.Presets())
}

// Rewrite POST /rewrite
func (h *RewriteHandler) Rewrite(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	var req request.RewriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			zlog.Warn("rewrite request body too large", zap.Int64("limit", tooLarge.Limit))
			back.Error(c, xerr.ErrBodyTooLarge.Code, xerr.ErrBodyTooLarge.Message)
			return
		}
		zlog.Warn("invalid rewrite request", zap.Error(err))
		back.Error(c, xerr.ErrParam.Code, xerr.ErrParam.Message)
		return
	}

	// 客户端断开不取消上游调用，结果直接丢弃
	ctx := context.WithoutCancel(c.Request.Context())

	data, err := h.svc.Rewrite(ctx, req)
	if err != nil {
		back.Result(c, nil, toCodeError(err))
		return
	}
	back.Success(c, data)
}

// toCodeError 把服务层错误映射为对外的状态码和 detail
func toCodeError(err error) error {
	var upErr *pipeline.UpstreamError
	switch {
	case errors.Is(err, service.ErrTextRequired), errors.Is(err, service.ErrTextTooLong):
		return xerr.New(xerr.Unprocessable, err.Error())
	case errors.Is(err, service.ErrEmptyOutput):
		return xerr.ErrEmptyOutput
	case errors.As(err, &upErr):
		return xerr.Upstream(upErr.Last)
	default:
		zlog.Error("rewrite failed", zap.Error(err))
		return xerr.ErrServerError
	}
}
