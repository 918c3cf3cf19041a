package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"QuillLink/pkg/util"

	"github.com/BurntSushi/toml"
)

// DefaultConfigPath 本地配置文件路径
const DefaultConfigPath = "configs/config_local.toml"

// ErrMissingAPIKey 上游模型 API Key 未配置，服务无法启动
var ErrMissingAPIKey = errors.New("upstream model API key is not set, have you created a local .env file and placed a key?")

type MainConfig struct {
	AppName     string `toml:"appName"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	SSLRedirect bool   `toml:"sslRedirect"`
	SSLHost     string `toml:"sslHost"` // HTTPS 重定向目标，不能用监听地址
}

type LogConfig struct {
	LogPath    string `toml:"logPath"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"maxSizeMB"`
	MaxBackups int    `toml:"maxBackups"`
	MaxAgeDays int    `toml:"maxAgeDays"`
}

type CorsConfig struct {
	AllowedOrigins []string `toml:"allowedOrigins"`
}

type AIChatModelConfig struct {
	Provider        string `toml:"provider"`
	APIKey          string `toml:"apiKey"`
	AccessKey       string `toml:"accessKey"`
	SecretKey       string `toml:"secretKey"`
	BaseURL         string `toml:"baseURL"`
	Region          string `toml:"region"`
	Model           string `toml:"model"`
	TimeoutSeconds  int    `toml:"timeoutSeconds"`
	MaxRetries      int    `toml:"maxRetries"`
	MaxConcurrency  int    `toml:"maxConcurrency"`
	BackoffBaseMs   int    `toml:"backoffBaseMs"`
	BackoffJitterMs int    `toml:"backoffJitterMs"`
	MaxTokens       int    `toml:"maxTokens"`
}

type AIConfig struct {
	ChatModel AIChatModelConfig `toml:"chatModel"`
}

type RewriteConfig struct {
	Mode          string `toml:"mode"`
	MaxTextLength int    `toml:"maxTextLength"`
}

type Config struct {
	MainConfig    `toml:"mainConfig"`
	LogConfig     `toml:"logConfig"`
	CorsConfig    `toml:"corsConfig"`
	AIConfig      `toml:"aiConfig"`
	RewriteConfig `toml:"rewriteConfig"`
}

// Default 返回内置默认配置
func Default() *Config {
	return &Config{
		MainConfig: MainConfig{
			AppName: "QuillLink",
			Host:    "0.0.0.0",
			Port:    8000,
		},
		LogConfig: LogConfig{
			Level: "info",
		},
		CorsConfig: CorsConfig{
			AllowedOrigins: []string{"*"},
		},
		AIConfig: AIConfig{
			ChatModel: AIChatModelConfig{
				Provider:        "gemini",
				Model:           "gemini-2.5-flash",
				TimeoutSeconds:  20,
				MaxRetries:      2,
				MaxConcurrency:  8,
				BackoffBaseMs:   400,
				BackoffJitterMs: 600,
				MaxTokens:       8192,
			},
		},
		RewriteConfig: RewriteConfig{
			Mode:          "rewrite",
			MaxTextLength: 8000,
		},
	}
}

// Load 依次叠加：默认值 → TOML 文件 → 环境变量，最后校验
//
// path 为空或文件不存在时跳过文件，只用默认值与环境变量。
func Load(path string) (*Config, error) {
	conf := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, conf); err != nil {
				return nil, fmt.Errorf("decode config file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config file %s: %w", path, err)
		}
	}

	if err := conf.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// applyEnv 环境变量覆盖文件配置
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("env %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	cm := &c.AIConfig.ChatModel
	str("LLM_PROVIDER", &cm.Provider)
	str("MODEL_NAME", &cm.Model)
	str("LLM_BASE_URL", &cm.BaseURL)
	str("HOST", &c.MainConfig.Host)
	str("SSL_HOST", &c.MainConfig.SSLHost)
	str("LOG_PATH", &c.LogConfig.LogPath)
	str("LOG_LEVEL", &c.LogConfig.Level)
	str("REWRITE_MODE", &c.RewriteConfig.Mode)

	// 不同 provider 读取各自的 Key
	cm.Provider = strings.ToLower(cm.Provider)
	switch cm.Provider {
	case "openai":
		str("OPENAI_API_KEY", &cm.APIKey)
	case "ark":
		str("ARK_API_KEY", &cm.APIKey)
		str("ARK_ACCESS_KEY", &cm.AccessKey)
		str("ARK_SECRET_KEY", &cm.SecretKey)
	default:
		str("GEMINI_API_KEY", &cm.APIKey)
	}

	for key, dst := range map[string]*int{
		"PORT":                    &c.MainConfig.Port,
		"REQUEST_TIMEOUT_SECONDS": &cm.TimeoutSeconds,
		"MAX_RETRIES":             &cm.MaxRetries,
		"MAX_CONCURRENCY":         &cm.MaxConcurrency,
		"MAX_TOKENS":              &cm.MaxTokens,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}

	if v, ok := lookup("ALLOWED_ORIGINS"); ok {
		if origins := util.SplitAndTrim(v, ","); len(origins) > 0 {
			c.CorsConfig.AllowedOrigins = origins
		}
	}
	return nil
}

// Validate 启动前校验
func (c *Config) Validate() error {
	cm := c.AIConfig.ChatModel
	if strings.TrimSpace(cm.APIKey) == "" && (cm.AccessKey == "" || cm.SecretKey == "") {
		return ErrMissingAPIKey
	}
	if strings.TrimSpace(cm.Model) == "" {
		return fmt.Errorf("chat model name is empty")
	}
	if cm.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeoutSeconds must be positive, got %d", cm.TimeoutSeconds)
	}
	if cm.MaxRetries < 1 {
		return fmt.Errorf("maxRetries must be at least 1, got %d", cm.MaxRetries)
	}
	if cm.MaxConcurrency < 1 {
		return fmt.Errorf("maxConcurrency must be at least 1, got %d", cm.MaxConcurrency)
	}
	if cm.BackoffBaseMs < 0 || cm.BackoffJitterMs < 0 {
		return fmt.Errorf("backoff must not be negative")
	}
	if c.RewriteConfig.MaxTextLength < 1 {
		return fmt.Errorf("maxTextLength must be positive, got %d", c.RewriteConfig.MaxTextLength)
	}
	if c.MainConfig.SSLRedirect && strings.TrimSpace(c.MainConfig.SSLHost) == "" {
		return fmt.Errorf("sslHost must be set when sslRedirect is enabled")
	}
	if c.MainConfig.Port <= 0 || c.MainConfig.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.MainConfig.Port)
	}
	return nil
}

// RequestTimeout 单次上游调用超时
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.AIConfig.ChatModel.TimeoutSeconds) * time.Second
}

// BackoffBase 重试退避基础时长
func (c *Config) BackoffBase() time.Duration {
	return time.Duration(c.AIConfig.ChatModel.BackoffBaseMs) * time.Millisecond
}

// BackoffJitter 重试退避随机上限
func (c *Config) BackoffJitter() time.Duration {
	return time.Duration(c.AIConfig.ChatModel.BackoffJitterMs) * time.Millisecond
}

// WorstCaseLatency 单个请求最坏耗时：MAX_RETRIES × (超时 + 最大退避)
func (c *Config) WorstCaseLatency() time.Duration {
	per := c.RequestTimeout() + c.BackoffBase() + c.BackoffJitter()
	return time.Duration(c.AIConfig.ChatModel.MaxRetries) * per
}

// AllowAllOrigins ALLOWED_ORIGINS 为 "*" 时不限制来源
func (c *Config) AllowAllOrigins() bool {
	origins := c.CorsConfig.AllowedOrigins
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
