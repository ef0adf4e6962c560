package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// applyDefaults seeds Viper with defaults defined in GetConfigOptions.
// This centralizes default values and descriptions in one place.
func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < env.
// The provided Viper instance is mutated with defaults, file contents, and env.
func Load(ctx context.Context, v *viper.Viper) error {
	// Configure Viper search paths. If SetConfigFile was provided upstream,
	// it takes precedence; these paths are harmless fallbacks.
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "ocean"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "ocean"))
		}
		v.AddConfigPath(".")
	}

	// Apply centralized defaults (lowest precedence)
	applyDefaults(v)

	// Read config file if present (overrides defaults)
	_ = v.ReadInConfig()

	// Environment variables: OCEAN_* (highest among these sources)
	v.SetEnvPrefix("ocean")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Normalize dependent values post-merge
	if strings.TrimSpace(v.GetString("data_dir")) == "" {
		v.Set("data_dir", defaultDataDir())
	}
	if strings.TrimSpace(v.GetString("storage.url")) == "" {
		v.Set("storage.url", "sqlite://"+ResolveDBPath(v))
	}
	return nil
}

// defaultDataDir resolves default data dir: $XDG_DATA_HOME/ocean or ~/.local/share/ocean
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "ocean")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "ocean")
}

// DefaultConfigPath resolves the standard config.toml location.
func DefaultConfigPath() string {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "ocean", "config.toml")
}

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// GetConfigOptions returns the default configuration options and their meanings.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		// Core paths
		{Key: "data_dir", Default: defaultDataDir(), Comment: "Directory for local state; the default store is data_dir/ocean.db"},
		{Key: "http_addr", Default: "127.0.0.1:7465", Comment: "Listen address for `ocean-cli serve`"},

		{Key: "storage.url", Default: "", Comment: "Persistence backend: sqlite://path, file://dir or mem://; empty uses data_dir/ocean.db"},
		{Key: "storage.key", Default: "ocean-notes.v1", Comment: "Key the note collection is stored under"},
		{Key: "autosave.delay", Default: "700ms", Comment: "Quiet period after the last edit before the editor saves"},
		{Key: "render.max_heading", Default: 6, Comment: "Deepest heading level the renderer emits (1-6)"},
		{Key: "log.level", Default: "info", Comment: "debug, info, warn or error"},
		{Key: "log.format", Default: "console", Comment: "console or json"},
		{Key: "list.sort", Default: "updated_desc", Comment: "Default order for note list: updated_desc, updated_asc, title_asc"},
		{Key: "editor.delete_empty", Default: false, Comment: "Delete a note if the external editor leaves it with no title and no content"},
	}
}

// ResolveDBPath uses data_dir to return the default sqlite DB file path.
func ResolveDBPath(v *viper.Viper) string {
	dir := v.GetString("data_dir")
	if dir == "" {
		dir = defaultDataDir()
	}
	// Expand ~ for convenience
	if len(dir) > 0 && dir[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, dir[1:])
		}
	}
	return filepath.Join(dir, "ocean.db")
}

// AutosaveDelay parses autosave.delay, falling back to the default on bad input.
func AutosaveDelay(v *viper.Viper) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(v.GetString("autosave.delay")))
	if err != nil || d <= 0 {
		return 700 * time.Millisecond
	}
	return d
}
