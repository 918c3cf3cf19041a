package plugins

import (
	"fmt"
	"sort"
	"strings"

	"QuillLink/internal/modules/rewrite/domain/prompt"
)

// PromptTemplate Prompt 模板插件接口
//
// 每种产品形态（改写 / 生成 AI Prompt / 生成 Agent 任务）都是一个插件，
// 流程骨架保持一致：校验 → 解析风格 → 构建 Prompt → 调用上游 → 映射结果。
type PromptTemplate interface {
	// GetMode 返回模式名：rewrite / prompt / agent_task
	GetMode() string

	// BuildPrompt 根据原文和风格描述构建 System/User 两段指令
	//
	// text 已经过长度校验，这里不再校验。
	BuildPrompt(text, styleDesc string) prompt.Pair
}

// template 内置模板的通用实现：System 模板插入风格，User 为原文 + 固定前后缀
type template struct {
	mode       string
	systemTmpl string // 含一个 %s，占位风格描述
	outLabel   string
}

func (t *template) GetMode() string {
	return t.mode
}

func (t *template) BuildPrompt(text, styleDesc string) prompt.Pair {
	return prompt.Pair{
		System: fmt.Sprintf(t.systemTmpl, styleDesc),
		User:   fmt.Sprintf("Original:\n%s\n\n%s:", text, t.outLabel),
	}
}

// Registry 模板注册表，启动时注册，运行时只读
type Registry struct {
	templates map[string]PromptTemplate
}

// NewRegistry 创建注册表并注册内置模板
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[string]PromptTemplate)}
	r.Register(NewRewriteTemplate())
	r.Register(NewPromptTemplate())
	r.Register(NewAgentTaskTemplate())
	return r
}

// Register 注册模板，同名覆盖
func (r *Registry) Register(t PromptTemplate) {
	r.templates[t.GetMode()] = t
}

// Get 按模式名获取模板
func (r *Registry) Get(mode string) (PromptTemplate, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	t, ok := r.templates[mode]
	if !ok {
		return nil, fmt.Errorf("unknown rewrite mode: %q (available: %s)", mode, strings.Join(r.Modes(), ", "))
	}
	return t, nil
}

// Modes 已注册的模式名（排序后）
func (r *Registry) Modes() []string {
	modes := make([]string, 0, len(r.templates))
	for m := range r.templates {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes
}
