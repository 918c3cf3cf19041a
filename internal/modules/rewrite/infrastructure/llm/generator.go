package llm

import (
	"context"
	"strings"

	"QuillLink/internal/modules/rewrite/domain/prompt"

	"github.com/cloudwego/eino/components/model"
	"github.com/tmc/langchaingo/llms"
)

// Generator 上游生成接口：输入两段指令，返回模型文本
//
// 实现必须是同步阻塞调用，超时与重试由 pipeline 负责。
type Generator interface {
	Generate(ctx context.Context, pair prompt.Pair) (string, error)
}

// GeneratorFunc 函数适配器
type GeneratorFunc func(ctx context.Context, pair prompt.Pair) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, pair prompt.Pair) (string, error) {
	return f(ctx, pair)
}

// EinoGenerator 基于 Eino ChatModel（openai / ark）
type EinoGenerator struct {
	chatModel model.BaseChatModel
}

func NewEinoGenerator(cm model.BaseChatModel) *EinoGenerator {
	return &EinoGenerator{chatModel: cm}
}

func (g *EinoGenerator) Generate(ctx context.Context, pair prompt.Pair) (string, error) {
	resp, err := g.chatModel.Generate(ctx, pair.Messages())
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	return strings.TrimSpace(resp.Content), nil
}

// LangchainGenerator 基于 langchaingo 的 llms.Model（googleai）
type LangchainGenerator struct {
	llm llms.Model
}

func NewLangchainGenerator(m llms.Model) *LangchainGenerator {
	return &LangchainGenerator{llm: m}
}

func (g *LangchainGenerator) Generate(ctx context.Context, pair prompt.Pair) (string, error) {
	resp, err := g.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, pair.System),
		llms.TextParts(llms.ChatMessageTypeHuman, pair.User),
	})
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
