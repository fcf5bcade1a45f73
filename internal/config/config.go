package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Manim   ManimConfig
	Render  RenderConfig
	History HistoryConfig
}

// ManimConfig tells the executor how to invoke the engine.
type ManimConfig struct {
	Binary  string
	Args    []string
	Workdir string
}

// RenderConfig holds the quality flags passed per output kind.
type RenderConfig struct {
	PreviewFlags []string `mapstructure:"preview_flags"`
	VideoFlags   []string `mapstructure:"video_flags"`
}

// HistoryConfig holds render-log settings.
type HistoryConfig struct {
	Path string
}

// Load reads configuration from file and env. Env var overrides use prefix MANIMSTUDIO_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("manim.binary", "python")
	v.SetDefault("manim.args", []string{"-m", "manim"})
	v.SetDefault("manim.workdir", ".")
	v.SetDefault("render.preview_flags", []string{"-s", "-ql"})
	v.SetDefault("render.video_flags", []string{"-ql"})
	v.SetDefault("history.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "manimstudio", "history.db"))

	v.SetConfigType("toml")

	cfgPath := os.Getenv("MANIMSTUDIO_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "manimstudio"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MANIMSTUDIO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
