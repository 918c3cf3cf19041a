package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"QuillLink/internal/modules/rewrite/domain/prompt"
	"QuillLink/internal/modules/rewrite/infrastructure/llm"
	"QuillLink/pkg/zlog"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Recorder 上游调用指标（可选）
type Recorder interface {
	RecordAttempt(success bool, d time.Duration)
	AddInflight(delta float64)
}

// UpstreamError 重试耗尽后的终止错误，Last 为最后一次失败原因
type UpstreamError struct {
	Attempts int
	Last     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream failed after %d attempt(s): %v", e.Attempts, e.Last)
}

func (e *UpstreamError) Unwrap() error {
	return e.Last
}

// Options 上游调用参数
type Options struct {
	Timeout        time.Duration // 单次尝试超时
	MaxAttempts    int           // 总尝试次数（含第一次），最少 1
	MaxConcurrency int           // 同时占用 worker 的上游调用数
	BackoffBase    time.Duration
	BackoffJitter  time.Duration

	// 以下用于测试注入，nil 时使用默认实现
	Rand     func() float64
	Sleep    func(ctx context.Context, d time.Duration) error
	Recorder Recorder
}

// RewritePipeline 上游调用器
//
// 职责：
// 1. 把阻塞的 SDK 调用放到独立 goroutine 执行，worker 数量受信号量限制
// 2. 每次尝试有独立超时，超时后不再等待该 goroutine
// 3. 传输错误 / 超时按 base + jitter 退避后重试，最多 MaxAttempts 次
// 4. 空输出不重试，原样返回给上层处理
type RewritePipeline struct {
	generator llm.Generator
	opts      Options
	workers   *semaphore.Weighted
}

// NewRewritePipeline 创建上游调用器
func NewRewritePipeline(generator llm.Generator, opts Options) *RewritePipeline {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	return &RewritePipeline{
		generator: generator,
		opts:      opts,
		workers:   semaphore.NewWeighted(int64(opts.MaxConcurrency)),
	}
}

// Execute 调用上游并返回去掉首尾空白的文本
//
// 返回 ("", nil) 表示上游成功但输出为空；所有尝试失败时返回 *UpstreamError。
func (p *RewritePipeline) Execute(ctx context.Context, pair prompt.Pair) (string, error) {
	startTime := time.Now()

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= p.opts.MaxAttempts; attempt++ {
		attempts = attempt

		text, err := p.attempt(ctx, pair)
		if err == nil {
			zlog.Info("upstream call done",
				zap.Int("attempt", attempt),
				zap.Int64("total_latency_ms", time.Since(startTime).Milliseconds()),
				zap.Int("output_len", len(text)))
			return text, nil
		}
		lastErr = err

		if attempt == p.opts.MaxAttempts {
			break
		}
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}

		delay := p.backoff()
		zlog.Warn("upstream attempt failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.opts.MaxAttempts),
			zap.Duration("backoff", delay))

		if err := p.opts.Sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	zlog.Error("upstream call failed",
		zap.Error(lastErr),
		zap.Int("attempts", attempts),
		zap.Int64("total_latency_ms", time.Since(startTime).Milliseconds()))

	return "", &UpstreamError{Attempts: attempts, Last: lastErr}
}

type attemptResult struct {
	text string
	err  error
}

// attempt 单次尝试：等待 worker 名额 → 后台调用 → 等结果或超时
func (p *RewritePipeline) attempt(ctx context.Context, pair prompt.Pair) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	start := time.Now()
	if err := p.workers.Acquire(attemptCtx, 1); err != nil {
		p.record(false, time.Since(start))
		return "", fmt.Errorf("wait for upstream worker: %w", err)
	}

	done := make(chan attemptResult, 1)
	p.inflight(1)
	go func() {
		defer p.workers.Release(1)
		defer p.inflight(-1)
		defer func() {
			if r := recover(); r != nil {
				done <- attemptResult{err: fmt.Errorf("upstream generator panic: %v", r)}
			}
		}()

		text, err := p.generator.Generate(attemptCtx, pair)
		done <- attemptResult{text: text, err: err}
	}()

	select {
	case r := <-done:
		p.record(r.err == nil, time.Since(start))
		if r.err != nil {
			return "", r.err
		}
		return strings.TrimSpace(r.text), nil
	case <-attemptCtx.Done():
		p.record(false, time.Since(start))
		// 父 ctx 先结束时按取消上报，不算本次超时
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("upstream attempt cancelled: %w", err)
		}
		return "", fmt.Errorf("upstream attempt timed out after %s: %w", p.opts.Timeout, attemptCtx.Err())
	}
}

// backoff base + [0, jitter) 的随机退避
func (p *RewritePipeline) backoff() time.Duration {
	return p.opts.BackoffBase + time.Duration(p.opts.Rand()*float64(p.opts.BackoffJitter))
}

func (p *RewritePipeline) record(success bool, d time.Duration) {
	if p.opts.Recorder != nil {
		p.opts.Recorder.RecordAttempt(success, d)
	}
}

func (p *RewritePipeline) inflight(delta float64) {
	if p.opts.Recorder != nil {
		p.opts.Recorder.AddInflight(delta)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
