package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[verification.name]
min_sources = 3
threshold = 92.5
source_weights = { title = 1.0, content = 0.4 }

[ranking]
group_gap = 0.1
weights = { name_similarity = 0.5, position = 0.5 }

[ranking.contexts.academic]
citation = 2.0

[feedback]
driver = "sqlite"
path = "feedback.db"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Verification.Name.MinSources)
	assert.Equal(t, 92.5, cfg.Verification.Name.Threshold)
	assert.Equal(t, 0.4, cfg.Verification.Name.SourceWeights["content"])
	assert.Equal(t, 0.1, cfg.Ranking.GroupGap)
	assert.Equal(t, 0.5, cfg.Ranking.Weights["name_similarity"])
	assert.Equal(t, 2.0, cfg.Ranking.Contexts["academic"]["citation"])
	assert.Equal(t, "sqlite", cfg.Feedback.Driver)
	// untouched sections keep their defaults
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ranking\n"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("PORT", "9090")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Feedback.Driver)
}
