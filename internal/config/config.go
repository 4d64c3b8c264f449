// Package config loads client settings from defaults, an optional .env file
// and the environment. Command-line flags are applied on top by cmd/malangee.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL  = "http://localhost:8080"
	DefaultAPIPath = "/api/v1"
	DefaultWebURL  = "http://localhost:3000"
)

type Config struct {
	// Backend
	APIURL  string // scheme://host[:port]
	APIPath string // API root under APIURL, default /api/v1
	WebURL  string // web app opened by `malangee web`

	// Session
	Token     string // MALANGEE_TOKEN override; wins over the token file
	ConfigDir string // holds the token file and debug.log

	// Logging
	LogLevel  string
	LogFormat string

	// Tuning
	CheckDebounce time.Duration // duplicate-check quiet period
	UserStaleTime time.Duration // current-user freshness window
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := &Config{
		APIURL:  ensureScheme(getEnv("MALANGEE_API_URL", DefaultAPIURL)),
		APIPath: getEnv("MALANGEE_API_PATH", DefaultAPIPath),
		WebURL:  ensureScheme(getEnv("MALANGEE_WEB_URL", DefaultWebURL)),

		Token:     strings.TrimSpace(os.Getenv("MALANGEE_TOKEN")),
		ConfigDir: getEnv("MALANGEE_CONFIG_DIR", defaultConfigDir()),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		CheckDebounce: time.Duration(getEnvInt("MALANGEE_CHECK_DEBOUNCE_MS", 500)) * time.Millisecond,
		UserStaleTime: time.Duration(getEnvInt("MALANGEE_USER_STALE_SEC", 300)) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings a run cannot do without.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("MALANGEE_API_URL is invalid: %q", c.APIURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("MALANGEE_API_URL must be http or https, got %q", u.Scheme)
	}
	if c.CheckDebounce <= 0 {
		return fmt.Errorf("MALANGEE_CHECK_DEBOUNCE_MS must be positive")
	}
	if c.UserStaleTime <= 0 {
		return fmt.Errorf("MALANGEE_USER_STALE_SEC must be positive")
	}
	return nil
}

// APIBase joins APIURL and APIPath, e.g. http://localhost:8080/api/v1.
func (c *Config) APIBase() string {
	base := strings.TrimRight(c.APIURL, "/")
	path := strings.Trim(c.APIPath, "/")
	if path == "" {
		return base
	}
	return base + "/" + path
}

// TokenPath is the token file location, or "" when there is no config dir.
func (c *Config) TokenPath() string {
	if c.ConfigDir == "" {
		return ""
	}
	return filepath.Join(c.ConfigDir, "token")
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".malangee")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// SetAPIURL overrides APIURL with the same normalization Load applies.
func (c *Config) SetAPIURL(raw string) {
	c.APIURL = ensureScheme(strings.TrimSpace(raw))
}

// ensureScheme adds http:// for local hosts and https:// otherwise when the URL has no scheme.
func ensureScheme(raw string) string {
	if raw == "" || strings.Contains(raw, "://") {
		return raw
	}
	if strings.HasPrefix(raw, "localhost") || strings.HasPrefix(raw, "127.0.0.1") {
		return "http://" + raw
	}
	return "https://" + raw
}
