// Package config loads fileforge settings from a YAML file, FILEFORGE_*
// environment variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jwulff/fileforge/internal/backend"
	"github.com/jwulff/fileforge/internal/download"
	"github.com/jwulff/fileforge/internal/store"
)

// Backend kinds.
const (
	BackendSocket = "socket"
	BackendOpenAI = "openai"
)

// Config holds all application configuration.
type Config struct {
	DBPath      string
	DownloadDir string
	Log         LogConfig
	Backend     BackendConfig
	OpenAI      OpenAIConfig
	ScriptCache ScriptCacheConfig
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level string
	Path  string
}

// BackendConfig selects and tunes the conversion service.
type BackendConfig struct {
	Kind       string
	SocketPath string
	Timeout    time.Duration
}

// OpenAIConfig contains OpenAI backend settings.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// ScriptCacheConfig sizes the generated-script cache.
type ScriptCacheConfig struct {
	Size int
	TTL  time.Duration
}

var envKeyReplacer = strings.NewReplacer(".", "_")

// DefaultConfigPath returns <user config dir>/fileforge/config.yaml.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir, _ = os.UserHomeDir()
	}
	return filepath.Join(dir, "fileforge", "config.yaml")
}

// SetDefaults registers every key's default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("db_path", store.DefaultDBPath())
	v.SetDefault("download_dir", download.DefaultDir())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "")
	v.SetDefault("backend.kind", BackendSocket)
	v.SetDefault("backend.socket_path", backend.SocketPath())
	v.SetDefault("backend.timeout", backend.DefaultTimeout)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("scripts_cache.size", 64)
	v.SetDefault("scripts_cache.ttl", time.Hour)
}

// Load reads the config file at path (the default location when empty) and
// overlays the environment. A missing file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	SetDefaults(v)
	v.SetEnvPrefix("FILEFORGE")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		DBPath:      v.GetString("db_path"),
		DownloadDir: v.GetString("download_dir"),
		Log: LogConfig{
			Level: v.GetString("log.level"),
			Path:  v.GetString("log.path"),
		},
		Backend: BackendConfig{
			Kind:       v.GetString("backend.kind"),
			SocketPath: v.GetString("backend.socket_path"),
			Timeout:    v.GetDuration("backend.timeout"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  v.GetString("openai.api_key"),
			Model:   v.GetString("openai.model"),
			BaseURL: v.GetString("openai.base_url"),
		},
		ScriptCache: ScriptCacheConfig{
			Size: v.GetInt("scripts_cache.size"),
			TTL:  v.GetDuration("scripts_cache.ttl"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate checks values viper cannot.
func (c *Config) Validate() error {
	switch c.Backend.Kind {
	case BackendSocket, BackendOpenAI:
	default:
		return fmt.Errorf("unknown backend kind %q (want %q or %q)", c.Backend.Kind, BackendSocket, BackendOpenAI)
	}
	if c.DBPath == "" {
		return errors.New("db_path must not be empty")
	}
	if c.DownloadDir == "" {
		return errors.New("download_dir must not be empty")
	}
	return nil
}
