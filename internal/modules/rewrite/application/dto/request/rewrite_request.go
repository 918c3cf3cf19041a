package request

// RewriteRequest POST /rewrite 请求体
//
// 风格相关字段全部可选，可任意组合；都为空时使用默认预设。
type RewriteRequest struct {
	Text   string   `json:"text"`
	Preset string   `json:"preset,omitempty"`
	Style  string   `json:"style,omitempty"`
	Tone   string   `json:"tone,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}
