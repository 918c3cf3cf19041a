package style

import (
	"strings"

	"QuillLink/internal/modules/rewrite/domain/preset"
)

// Separator 风格片段之间的分隔符
const Separator = ", "

// Input 风格相关的请求字段，全部可选
type Input struct {
	Preset string
	Style  string
	Tone   string
	Tags   []string
}

// Resolver 把预设、自由风格、语气、标签合成为一段风格描述
type Resolver struct {
	catalog *preset.Catalog
}

func NewResolver(catalog *preset.Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve 按 预设 → 风格 → 语气 → 标签 的顺序拼接片段
//
// 未知预设直接忽略；没有任何片段时回退到默认预设。
func (r *Resolver) Resolve(in Input) string {
	fragments := make([]string, 0, 4)

	if in.Preset != "" {
		if phrase, ok := r.catalog.Lookup(in.Preset); ok {
			fragments = append(fragments, phrase)
		}
	}
	if s := strings.TrimSpace(in.Style); s != "" {
		fragments = append(fragments, s)
	}
	if tone := strings.TrimSpace(in.Tone); tone != "" {
		fragments = append(fragments, "Tone: "+tone)
	}
	if tags := cleanTags(in.Tags); len(tags) > 0 {
		fragments = append(fragments, "Include contextual information based on these tags: "+strings.Join(tags, ", "))
	}

	if len(fragments) == 0 {
		return r.catalog.DefaultPhrase()
	}
	return strings.Join(fragments, Separator)
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
