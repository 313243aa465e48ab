package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_Extensions(t *testing.T) {
	assert.ElementsMatch(t, []string{".md", ".markdown", ".txt"}, NewText().Extensions())
}

func TestText_PassesMarkdownThrough(t *testing.T) {
	content := "# Profile\n\nBackend engineer.\n\n## Rules\n\n[RULESET: EMAIL]\nKeep it short."

	out, err := NewText().Extract([]byte(content))
	require.NoError(t, err)
	assert.Equal(t, content, out)
}

func TestText_NormalisesWindowsLineEndings(t *testing.T) {
	out, err := NewText().Extract([]byte("line one\r\nline two\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", out)
}

func TestText_StripsByteOrderMark(t *testing.T) {
	out, err := NewText().Extract([]byte("\uFEFF# Title"))
	require.NoError(t, err)
	assert.Equal(t, "# Title", out)
}
