package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	AppName     = "chadorchud-bot"
	EnvFileName = "config.env"
)

const (
	DefaultModel              = "gemini-2.5-flash"
	DefaultMaxUploadMB        = 10
	DefaultDBPath             = "ratings.db"
	DefaultSessionIdleTimeout = 2 * time.Hour
)

// RequiredEnvVars lists the variables the bot cannot start without.
// GEMINI_API_KEY is optional: without it the bot starts and
// reports the missing key on the first submission.
var RequiredEnvVars = []string{"BOT_TOKEN"}

// Config is the runtime configuration read from the environment.
type Config struct {
	BotToken     string
	GeminiAPIKey string
	GeminiModel  string
	MaxUploadMB  int
	DBPath       string
	CatalogPath  string

	// AdminID enables /stats for one user. Zero disables it.
	AdminID int64

	SessionIdleTimeout time.Duration

	// RatingRetention prunes history older than this. Zero keeps everything.
	RatingRetention time.Duration
}

// HasGeminiKey reports whether an analysis credential is configured.
func (c *Config) HasGeminiKey() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration using getenv.
func LoadFrom(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		BotToken:           strings.TrimSpace(getenv("BOT_TOKEN")),
		GeminiAPIKey:       strings.TrimSpace(getenv("GEMINI_API_KEY")),
		GeminiModel:        strings.TrimSpace(getenv("GEMINI_MODEL")),
		MaxUploadMB:        DefaultMaxUploadMB,
		DBPath:             strings.TrimSpace(getenv("CHADORCHUD_DB_PATH")),
		CatalogPath:        strings.TrimSpace(getenv("CATALOG_PATH")),
		SessionIdleTimeout: DefaultSessionIdleTimeout,
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is not set")
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = DefaultModel
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath
	}

	if v := strings.TrimSpace(getenv("MAX_UPLOAD_MB")); v != "" {
		mb, err := strconv.Atoi(v)
		if err != nil || mb <= 0 {
			return nil, fmt.Errorf("MAX_UPLOAD_MB must be a positive integer, got %q", v)
		}
		cfg.MaxUploadMB = mb
	}

	if v := strings.TrimSpace(getenv("ADMIN_TELEGRAM_ID")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID must be a valid integer: %w", err)
		}
		cfg.AdminID = id
	}

	if v := strings.TrimSpace(getenv("SESSION_IDLE_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT must be a positive duration, got %q", v)
		}
		cfg.SessionIdleTimeout = d
	}

	if v := strings.TrimSpace(getenv("RATING_RETENTION")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("RATING_RETENTION must be a duration, got %q", v)
		}
		cfg.RatingRetention = d
	}

	return cfg, nil
}

// CheckRequiredConfig returns the names of required variables that are unset.
func CheckRequiredConfig() []string {
	var missing []string
	for _, v := range RequiredEnvVars {
		if strings.TrimSpace(os.Getenv(v)) == "" {
			missing = append(missing, v)
		}
	}
	return missing
}

// Dir returns the application's config directory, creating it if needed.
func Dir() (string, error) {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	configDir := filepath.Join(configBase, AppName)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// FilePath returns the full path to the env file.
func FilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, EnvFileName), nil
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory. Errors are ignored since the file may not exist.
// Variables already set in the environment win.
func LoadEnvFile() {
	path, err := FilePath()
	if err != nil {
		return
	}
	_ = godotenv.Load(path)
}
