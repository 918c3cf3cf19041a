package plugins

import (
	"strings"
	"testing"

	"QuillLink/internal/modules/rewrite/domain/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_BuiltinModes(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"agent_task", "prompt", "rewrite"}, r.Modes())

	for _, mode := range r.Modes() {
		tmpl, err := r.Get(mode)
		require.NoError(t, err)
		assert.Equal(t, mode, tmpl.GetMode())
	}
}

func TestRegistry_GetNormalizesAndRejectsUnknown(t *testing.T) {
	r := NewRegistry()

	tmpl, err := r.Get("  Rewrite ")
	require.NoError(t, err)
	assert.Equal(t, ModeRewrite, tmpl.GetMode())

	_, err = r.Get("poem")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poem")
}

type upperTemplate struct{}

func (upperTemplate) GetMode() string { return ModeRewrite }
func (upperTemplate) BuildPrompt(text, styleDesc string) prompt.Pair {
	return prompt.Pair{System: strings.ToUpper(styleDesc), User: text}
}

func TestRegistry_RegisterOverrides(t *testing.T) {
	r := NewRegistry()
	r.Register(upperTemplate{})

	tmpl, err := r.Get(ModeRewrite)
	require.NoError(t, err)
	assert.Equal(t, "CALM", tmpl.BuildPrompt("x", "calm").System)
}

func TestRewriteTemplate_BuildPrompt(t *testing.T) {
	pair := NewRewriteTemplate().BuildPrompt("hello world", "bullet-point summary")

	assert.True(t, strings.HasPrefix(pair.System, "You rewrite the user's text to be bullet-point summary. "))
	assert.Contains(t, pair.System, "Do not change the underlying meaning")
	assert.Contains(t, pair.System, "Preserve inline formatting")
	assert.Contains(t, pair.System, "no preamble or commentary")
	assert.Equal(t, "Original:\nhello world\n\nRewrite:", pair.User)
}

func TestPromptTemplate_BuildPrompt(t *testing.T) {
	pair := NewPromptTemplate().BuildPrompt("fix my essay", "formal")

	assert.Contains(t, pair.System, "The prompt should be formal.")
	assert.Contains(t, pair.System, "do not invent facts")
	assert.Equal(t, "Original:\nfix my essay\n\nPrompt:", pair.User)
}

func TestAgentTaskTemplate_BuildPrompt(t *testing.T) {
	pair := NewAgentTaskTemplate().BuildPrompt("find flights", "brief")

	assert.Contains(t, pair.System, "downstream AI agent")
	assert.Contains(t, pair.System, "The result should be brief.")
	assert.Equal(t, "Original:\nfind flights\n\nTask:", pair.User)
}

func TestBuildPrompt_TextIsNotFormatted(t *testing.T) {
	// 原文中的 % 不能被当作格式化占位符
	pair := NewRewriteTemplate().BuildPrompt("100% done %s", "brief")
	assert.Equal(t, "Original:\n100% done %s\n\nRewrite:", pair.User)
}

func TestPair_Messages(t *testing.T) {
	msgs := prompt.Pair{System: "sys", User: "usr"}.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", string(msgs[0].Role))
	assert.Equal(t, "sys", msgs[0].Content)
	assert.Equal(t, "user", string(msgs[1].Role))
	assert.Equal(t, "usr", msgs[1].Content)
}
