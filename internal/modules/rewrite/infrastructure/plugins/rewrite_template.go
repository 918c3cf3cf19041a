package plugins

// ModeRewrite 按用户选择的风格改写原文（默认模式）
const ModeRewrite = "rewrite"

// NewRewriteTemplate 文本改写模板
func NewRewriteTemplate() PromptTemplate {
	return &template{
		mode: ModeRewrite,
		systemTmpl: "You rewrite the user's text to be %s. " +
			"Do not change the underlying meaning or add new facts. " +
			"Preserve inline formatting (lists, line breaks) when reasonable. " +
			"Output only the rewritten text, with no preamble or commentary.",
		outLabel: "Rewrite",
	}
}
