package plugins

// ModeAgentTask 把原文重述为交给下游 AI Agent 的问题或任务
const ModeAgentTask = "agent_task"

// NewAgentTaskTemplate Agent 任务模板
func NewAgentTaskTemplate() PromptTemplate {
	return &template{
		mode: ModeAgentTask,
		systemTmpl: "You reformulate the user's text into a clear, self-contained question or task for a downstream AI agent. " +
			"The result should be %s. " +
			"Do not change what is being asked and do not add new facts. " +
			"Preserve inline formatting (lists, line breaks) when reasonable. " +
			"Output only the question or task, with no preamble or commentary.",
		outLabel: "Task",
	}
}
