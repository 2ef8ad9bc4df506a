package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Extractor ExtractorConfig `toml:"extractor"`
	Audit     AuditConfig     `toml:"audit"`
	Telegram  TelegramConfig  `toml:"telegram"`
	Log       LogConfig       `toml:"log"`
}

type ServerConfig struct {
	Addr                 string `toml:"addr"`
	ReadHeaderTimeoutSec int    `toml:"read_header_timeout_sec"`
	ShutdownTimeoutSec   int    `toml:"shutdown_timeout_sec"`
	// BasePath mounts every route under a prefix such as "/api".
	BasePath       string   `toml:"base_path"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type ExtractorConfig struct {
	Backend   string `toml:"backend"`
	YtdlpPath string `toml:"ytdlp_path"`
	TempDir   string `toml:"temp_dir"`
}

type AuditConfig struct {
	// LogRejectedDownloads also audits download requests refused before
	// any work started (missing fields, invalid URL).
	LogRejectedDownloads bool `toml:"log_rejected_downloads"`
}

type TelegramConfig struct {
	Token       string `toml:"token"`
	AdminChatID int64  `toml:"admin_chat_id"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Enabled reports whether operator notifications are configured.
func (c TelegramConfig) Enabled() bool {
	return c.Token != "" && c.AdminChatID != 0
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:                 ":8080",
			ReadHeaderTimeoutSec: 10,
			ShutdownTimeoutSec:   30,
			AllowedOrigins:       []string{"*"},
		},
		Database: DatabaseConfig{
			Path: "data/downloads.db",
		},
		Extractor: ExtractorConfig{
			Backend:   "ytdlp",
			YtdlpPath: "yt-dlp",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the TOML file at path over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	overrides := []struct {
		key string
		dst *string
	}{
		{"LISTEN_ADDR", &cfg.Server.Addr},
		{"BASE_PATH", &cfg.Server.BasePath},
		{"DB_PATH", &cfg.Database.Path},
		{"EXTRACTOR_BACKEND", &cfg.Extractor.Backend},
		{"YTDLP_PATH", &cfg.Extractor.YtdlpPath},
		{"TEMP_DIR", &cfg.Extractor.TempDir},
		{"LOG_LEVEL", &cfg.Log.Level},
		{"TELEGRAM_BOT_TOKEN", &cfg.Telegram.Token},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.dst = v
		}
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}

	if v := os.Getenv("TELEGRAM_ADMIN_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing TELEGRAM_ADMIN_CHAT_ID: %w", err)
		}
		cfg.Telegram.AdminChatID = id
	}

	if v := os.Getenv("AUDIT_LOG_REJECTED_DOWNLOADS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing AUDIT_LOG_REJECTED_DOWNLOADS: %w", err)
		}
		cfg.Audit.LogRejectedDownloads = b
	}

	return nil
}

// splitList parses a comma-separated env value, dropping empty items.
func splitList(v string) []string {
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
