package plugins

// ModePrompt 把任意文本整理成一条打磨过的 AI Prompt
const ModePrompt = "prompt"

// NewPromptTemplate AI Prompt 生成模板
func NewPromptTemplate() PromptTemplate {
	return &template{
		mode: ModePrompt,
		systemTmpl: "You turn the user's text into a polished prompt for an AI assistant. " +
			"The prompt should be %s. " +
			"Keep the user's intent; do not invent facts, requirements, or constraints that are not in the text. " +
			"Preserve inline formatting (lists, line breaks) when reasonable. " +
			"Output only the finished prompt, with no preamble or commentary.",
		outLabel: "Prompt",
	}
}
