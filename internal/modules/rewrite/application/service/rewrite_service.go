package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"QuillLink/internal/metrics"
	"QuillLink/internal/modules/rewrite/application/dto/request"
	"QuillLink/internal/modules/rewrite/application/dto/respond"
	"QuillLink/internal/modules/rewrite/domain/preset"
	"QuillLink/internal/modules/rewrite/domain/prompt"
	"QuillLink/internal/modules/rewrite/domain/style"
	"QuillLink/internal/modules/rewrite/infrastructure/plugins"
	"QuillLink/pkg/zlog"

	"go.uber.org/zap"
)

var (
	// ErrTextRequired text 为空
	ErrTextRequired = errors.New("text is required")
	// ErrTextTooLong text 超过长度上限
	ErrTextTooLong = errors.New("text is too long")
	// ErrEmptyOutput 上游成功返回但文本为空
	ErrEmptyOutput = errors.New("empty response from model")
)

// UpstreamCaller 上游调用（由 pipeline.RewritePipeline 实现）
type UpstreamCaller interface {
	Execute(ctx context.Context, pair prompt.Pair) (string, error)
}

// RewriteService 改写服务
type RewriteService interface {
	Rewrite(ctx context.Context, req request.RewriteRequest) (*respond.RewriteRespond, error)
	Presets() *respond.PresetsRespond
	Health() *respond.HealthRespond
}

// Options 服务依赖
type Options struct {
	Catalog       *preset.Catalog
	Template      plugins.PromptTemplate
	Caller        UpstreamCaller
	ModelName     string
	MaxTextLength int
	Metrics       *metrics.Exporter // 可为 nil
}

type rewriteServiceImpl struct {
	catalog   *preset.Catalog
	resolver  *style.Resolver
	template  plugins.PromptTemplate
	caller    UpstreamCaller
	modelName string
	maxLen    int
	metrics   *metrics.Exporter
}

// NewRewriteService 创建改写服务
func NewRewriteService(opts Options) RewriteService {
	catalog := opts.Catalog
	if catalog == nil {
		catalog = preset.Builtin()
	}
	tmpl := opts.Template
	if tmpl == nil {
		tmpl = plugins.NewRewriteTemplate()
	}
	maxLen := opts.MaxTextLength
	if maxLen <= 0 {
		maxLen = 8000
	}
	return &rewriteServiceImpl{
		catalog:   catalog,
		resolver:  style.NewResolver(catalog),
		template:  tmpl,
		caller:    opts.Caller,
		modelName: opts.ModelName,
		maxLen:    maxLen,
		metrics:   opts.Metrics,
	}
}

// Rewrite 校验 → 解析风格 → 构建 Prompt → 调用上游 → 映射结果
func (s *rewriteServiceImpl) Rewrite(ctx context.Context, req request.RewriteRequest) (*respond.RewriteRespond, error) {
	startTime := time.Now()

	if err := s.validate(req); err != nil {
		s.metrics.RecordRewrite(metrics.OutcomeInvalid)
		return nil, err
	}

	styleDesc := s.resolver.Resolve(style.Input{
		Preset: req.Preset,
		Style:  req.Style,
		Tone:   req.Tone,
		Tags:   req.Tags,
	})
	pair := s.template.BuildPrompt(req.Text, styleDesc)

	rewritten, err := s.caller.Execute(ctx, pair)
	if err != nil {
		s.metrics.RecordRewrite(metrics.OutcomeUpstream)
		return nil, err
	}
	if rewritten == "" {
		s.metrics.RecordRewrite(metrics.OutcomeEmptyOutput)
		zlog.Warn("upstream returned empty text",
			zap.String("mode", s.template.GetMode()),
			zap.String("preset", req.Preset))
		return nil, ErrEmptyOutput
	}

	s.metrics.RecordRewrite(metrics.OutcomeSuccess)
	zlog.Info("rewrite done",
		zap.String("mode", s.template.GetMode()),
		zap.String("preset", req.Preset),
		zap.Int("input_len", utf8.RuneCountInString(req.Text)),
		zap.Int("output_len", utf8.RuneCountInString(rewritten)),
		zap.Int64("latency_ms", time.Since(startTime).Milliseconds()))

	return &respond.RewriteRespond{Rewritten: rewritten}, nil
}

func (s *rewriteServiceImpl) validate(req request.RewriteRequest) error {
	n := utf8.RuneCountInString(req.Text)
	if n == 0 {
		return ErrTextRequired
	}
	if n > s.maxLen {
		return fmt.Errorf("%w: %d characters, at most %d allowed", ErrTextTooLong, n, s.maxLen)
	}
	return nil
}

func (s *rewriteServiceImpl) Presets() *respond.PresetsRespond {
	return &respond.PresetsRespond{Presets: s.catalog.Keys()}
}

func (s *rewriteServiceImpl) Health() *respond.HealthRespond {
	return &respond.HealthRespond{OK: true, Model: s.modelName}
}
