package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ExistingPrompt(t *testing.T) {
	prompt, err := Get("narrative.json", "executive_summary")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Findings}}")
	assert.Contains(t, prompt, "clinical trial finance analyst")
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("narrative.json", "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `prompt key "nonexistent" not found`)
}

func TestGet_UnknownFile(t *testing.T) {
	_, err := Get("missing.json", "executive_summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_CachesFile(t *testing.T) {
	a, err := Get("narrative.json", "executive_summary")
	require.NoError(t, err)
	b, err := Get("narrative.json", "executive_summary")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFormat(t *testing.T) {
	template := "Findings:\n{{.Findings}}\nEnd."
	result := Format(template, map[string]string{"Findings": `{"unpaid_count": 3}`})

	assert.Equal(t, "Findings:\n{\"unpaid_count\": 3}\nEnd.", result)
}

func TestFormat_MissingKeyLeavesPlaceholder(t *testing.T) {
	result := Format("{{.A}} and {{.B}}", map[string]string{"A": "x"})
	assert.Equal(t, "x and {{.B}}", result)
}
