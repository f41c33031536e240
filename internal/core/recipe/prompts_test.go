package recipe

import (
	"testing"

	"recipe-sheet/internal/pkg/common"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSystemPrompt(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "prompts/system.txt", []byte("  Seja breve.\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "prompts/empty.txt", []byte(" \n"), 0644))

	prompt, err := LoadSystemPrompt(fs, "")
	require.NoError(t, err)
	assert.Equal(t, defaultSystemPrompt, prompt)

	prompt, err = LoadSystemPrompt(fs, "prompts/system.txt")
	require.NoError(t, err)
	assert.Equal(t, "Seja breve.", prompt)

	_, err = LoadSystemPrompt(fs, "prompts/missing.txt")
	assert.ErrorIs(t, err, common.ErrFileSystem)

	_, err = LoadSystemPrompt(fs, "prompts/empty.txt")
	assert.ErrorIs(t, err, common.ErrFileSystem)
}

func TestBuildUserPrompt(t *testing.T) {
	prompt := BuildUserPrompt("Receita com 100% de cacau")
	assert.Contains(t, prompt, "Receita com 100% de cacau")
	assert.Contains(t, prompt, "Retorne APENAS um objeto JSON válido")
}
