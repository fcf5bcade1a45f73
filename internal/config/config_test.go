package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MANIMSTUDIO_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "python", cfg.Manim.Binary)
	assert.Equal(t, []string{"-m", "manim"}, cfg.Manim.Args)
	assert.Equal(t, ".", cfg.Manim.Workdir)
	assert.Equal(t, []string{"-s", "-ql"}, cfg.Render.PreviewFlags)
	assert.Equal(t, []string{"-ql"}, cfg.Render.VideoFlags)
	assert.Contains(t, cfg.History.Path, "manimstudio")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[manim]
binary = "python3"
workdir = "/work/scenes"

[render]
preview_flags = ["-s", "-qh"]

[history]
path = "/tmp/renders.db"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	t.Setenv("MANIMSTUDIO_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "python3", cfg.Manim.Binary)
	assert.Equal(t, "/work/scenes", cfg.Manim.Workdir)
	assert.Equal(t, []string{"-s", "-qh"}, cfg.Render.PreviewFlags)
	assert.Equal(t, "/tmp/renders.db", cfg.History.Path)
	// untouched keys keep their defaults
	assert.Equal(t, []string{"-m", "manim"}, cfg.Manim.Args)
	assert.Equal(t, []string{"-ql"}, cfg.Render.VideoFlags)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("MANIMSTUDIO_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("MANIMSTUDIO_MANIM_BINARY", "python3.12")
	t.Setenv("MANIMSTUDIO_HISTORY_PATH", "/data/history.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "python3.12", cfg.Manim.Binary)
	assert.Equal(t, "/data/history.db", cfg.History.Path)
}
