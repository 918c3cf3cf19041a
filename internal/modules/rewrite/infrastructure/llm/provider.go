package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"QuillLink/internal/config"

	arkModel "github.com/cloudwego/eino-ext/components/model/ark"
	openaiModel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/tmc/langchaingo/llms/googleai"
)

// GeminiOpenAIBaseURL Gemini 的 OpenAI 兼容接口
const GeminiOpenAIBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// DefaultMaxTokens 未配置 maxTokens 时的输出上限；Gemini 2.5 的思考 token 也计入该上限
const DefaultMaxTokens = 8192

// ErrNoModel 未配置模型名
var ErrNoModel = errors.New("chat model is not configured")

type ChatModelMeta struct {
	Provider string
	Model    string
}

// NewGeneratorFromConfig 根据配置创建上游 Generator
//
// provider:
//   - gemini：Gemini 原生接口（langchaingo googleai），默认
//   - gemini_openai：Gemini 的 OpenAI 兼容接口（Eino openai）
//   - openai：OpenAI 或任意兼容服务（Eino openai）
//   - ark：火山引擎 Ark（Eino ark）
//
// SDK 自带的重试一律关闭，重试只在 pipeline 中进行。
func NewGeneratorFromConfig(ctx context.Context, conf *config.Config) (Generator, ChatModelMeta, error) {
	if conf == nil {
		return nil, ChatModelMeta{}, fmt.Errorf("nil config")
	}

	cm := conf.AIConfig.ChatModel
	provider := strings.ToLower(strings.TrimSpace(cm.Provider))
	modelName := strings.TrimSpace(cm.Model)
	apiKey := strings.TrimSpace(cm.APIKey)
	baseURL := strings.TrimSpace(cm.BaseURL)
	timeout := conf.RequestTimeout()

	if modelName == "" {
		return nil, ChatModelMeta{}, ErrNoModel
	}

	switch provider {
	case "", "disabled", "none":
		return nil, ChatModelMeta{}, fmt.Errorf("chat model provider not configured")

	case "gemini":
		if apiKey == "" {
			return nil, ChatModelMeta{}, fmt.Errorf("gemini chat model missing apiKey")
		}
		client, err := googleai.New(ctx, googleaiOptions(apiKey, modelName, cm.MaxTokens)...)
		if err != nil {
			return nil, ChatModelMeta{}, fmt.Errorf("init googleai client: %w", err)
		}
		return NewLangchainGenerator(client), ChatModelMeta{Provider: "gemini", Model: modelName}, nil

	case "gemini_openai", "openai":
		if apiKey == "" {
			return nil, ChatModelMeta{}, fmt.Errorf("%s chat model missing apiKey", provider)
		}
		if provider == "gemini_openai" && baseURL == "" {
			baseURL = GeminiOpenAIBaseURL
		}
		chatModel, err := openaiModel.NewChatModel(ctx, openaiChatConfig(apiKey, modelName, baseURL, timeout, cm.MaxTokens))
		if err != nil {
			return nil, ChatModelMeta{}, err
		}
		return NewEinoGenerator(chatModel), ChatModelMeta{Provider: provider, Model: modelName}, nil

	case "ark":
		accessKey := strings.TrimSpace(cm.AccessKey)
		secretKey := strings.TrimSpace(cm.SecretKey)
		if apiKey == "" && (accessKey == "" || secretKey == "") {
			return nil, ChatModelMeta{}, fmt.Errorf("ark chat model missing apiKey or accessKey/secretKey")
		}
		arkConf := arkChatConfig(apiKey, modelName, baseURL, timeout, cm.MaxTokens)
		arkConf.AccessKey = accessKey
		arkConf.SecretKey = secretKey
		arkConf.Region = strings.TrimSpace(cm.Region)
		chatModel, err := arkModel.NewChatModel(ctx, arkConf)
		if err != nil {
			return nil, ChatModelMeta{}, err
		}
		return NewEinoGenerator(chatModel), ChatModelMeta{Provider: "ark", Model: modelName}, nil

	default:
		return nil, ChatModelMeta{}, fmt.Errorf("unknown chat model provider: %s", provider)
	}
}

func maxTokensOrDefault(n int) int {
	if n <= 0 {
		return DefaultMaxTokens
	}
	return n
}

// googleaiOptions 始终显式设置输出上限，避免落到 googleai 自带的 2048
func googleaiOptions(apiKey, modelName string, maxTokens int) []googleai.Option {
	return []googleai.Option{
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(modelName),
		googleai.WithDefaultMaxTokens(maxTokensOrDefault(maxTokens)),
	}
}

func openaiChatConfig(apiKey, modelName, baseURL string, timeout time.Duration, maxTokens int) *openaiModel.ChatModelConfig {
	n := maxTokensOrDefault(maxTokens)
	return &openaiModel.ChatModelConfig{
		APIKey:    apiKey,
		Model:     modelName,
		BaseURL:   baseURL,
		Timeout:   timeout,
		MaxTokens: &n,
	}
}

func arkChatConfig(apiKey, modelName, baseURL string, timeout time.Duration, maxTokens int) *arkModel.ChatModelConfig {
	retryTimes := 0
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	n := maxTokensOrDefault(maxTokens)
	return &arkModel.ChatModelConfig{
		APIKey:     apiKey,
		Model:      modelName,
		BaseURL:    baseURL,
		Timeout:    &timeout,
		RetryTimes: &retryTimes,
		MaxTokens:  &n,
	}
}
