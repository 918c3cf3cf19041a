package preset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin_KeysOrdered(t *testing.T) {
	c := Builtin()
	assert.Equal(t, []string{"polish", "simplify", "bulletize", "formal", "casual", "brief"}, c.Keys())
}

func TestBuiltin_KeysStableAndCopied(t *testing.T) {
	c := Builtin()
	first := c.Keys()
	first[0] = "mutated"
	assert.Equal(t, "polish", c.Keys()[0])
}

func TestLookup(t *testing.T) {
	c := Builtin()

	phrase, ok := c.Lookup("bulletize")
	require.True(t, ok)
	assert.Equal(t, "bullet-point summary; concise, factual, and well-structured", phrase)

	_, ok = c.Lookup("shakespeare")
	assert.False(t, ok)

	_, ok = c.Lookup("")
	assert.False(t, ok)
}

func TestNewCatalog_DropsDuplicates(t *testing.T) {
	c := NewCatalog(
		Preset{Key: "a", Phrase: "first"},
		Preset{Key: "b", Phrase: "second"},
		Preset{Key: "a", Phrase: "again"},
	)
	assert.Equal(t, []string{"a", "b"}, c.Keys())

	phrase, _ := c.Lookup("a")
	assert.Equal(t, "first", phrase)
}

func TestDefaultPhrase(t *testing.T) {
	assert.Equal(t, "polished, clear, concise, and professional", Builtin().DefaultPhrase())
	assert.Equal(t, "x", NewCatalog(Preset{Key: "k", Phrase: "x"}).DefaultPhrase())
	assert.Equal(t, "", NewCatalog().DefaultPhrase())
}
