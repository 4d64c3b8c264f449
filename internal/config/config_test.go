package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"MALANGEE_API_URL", "MALANGEE_API_PATH", "MALANGEE_WEB_URL", "MALANGEE_TOKEN",
		"MALANGEE_CONFIG_DIR", "LOG_LEVEL", "LOG_FORMAT",
		"MALANGEE_CHECK_DEBOUNCE_MS", "MALANGEE_USER_STALE_SEC",
	} {
		t.Setenv(k, "")
	}
	// Keep a developer's .env out of the test.
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1", cfg.APIBase())
	assert.Equal(t, DefaultWebURL, cfg.WebURL)
	assert.Equal(t, 500*time.Millisecond, cfg.CheckDebounce)
	assert.Equal(t, 5*time.Minute, cfg.UserStaleTime)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Token)
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("MALANGEE_API_URL", "api.malangee.io/")
	t.Setenv("MALANGEE_API_PATH", "v2")
	t.Setenv("MALANGEE_TOKEN", " tok ")
	t.Setenv("MALANGEE_CONFIG_DIR", "/tmp/mlg")
	t.Setenv("MALANGEE_CHECK_DEBOUNCE_MS", "250")
	t.Setenv("MALANGEE_USER_STALE_SEC", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.malangee.io/v2", cfg.APIBase())
	assert.Equal(t, "tok", cfg.Token)
	assert.Equal(t, filepath.Join("/tmp/mlg", "token"), cfg.TokenPath())
	assert.Equal(t, 250*time.Millisecond, cfg.CheckDebounce)
	assert.Equal(t, 5*time.Minute, cfg.UserStaleTime, "invalid ints fall back to the default")
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that are already set, even to "".
	os.Unsetenv("MALANGEE_API_PATH") //nolint:errcheck
	require.NoError(t, os.WriteFile(".env", []byte("MALANGEE_API_PATH=/api/v9\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("MALANGEE_API_PATH") }) //nolint:errcheck

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/api/v9", cfg.APIPath)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{APIURL: "http://localhost:8080", CheckDebounce: time.Millisecond, UserStaleTime: time.Second}, false},
		{"no host", Config{APIURL: "http://", CheckDebounce: time.Millisecond, UserStaleTime: time.Second}, true},
		{"ftp", Config{APIURL: "ftp://x", CheckDebounce: time.Millisecond, UserStaleTime: time.Second}, true},
		{"negative debounce", Config{APIURL: "http://x", CheckDebounce: -1, UserStaleTime: time.Second}, true},
		{"zero debounce", Config{APIURL: "http://x", UserStaleTime: time.Second}, true},
		{"zero stale", Config{APIURL: "http://x", CheckDebounce: time.Millisecond}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEnsureScheme(t *testing.T) {
	assert.Equal(t, "http://localhost:8080", ensureScheme("localhost:8080"))
	assert.Equal(t, "https://api.example.com", ensureScheme("api.example.com"))
	assert.Equal(t, "http://x", ensureScheme("http://x"))
	assert.Equal(t, "", ensureScheme(""))
}

func TestSetAPIURL(t *testing.T) {
	cfg := Config{CheckDebounce: time.Millisecond, UserStaleTime: time.Second}
	cfg.SetAPIURL(" localhost:9000 ")
	assert.Equal(t, "http://localhost:9000", cfg.APIURL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ZeroDebounceRejected(t *testing.T) {
	clearEnv(t)
	t.Setenv("MALANGEE_CHECK_DEBOUNCE_MS", "0")
	_, err := Load()
	assert.ErrorContains(t, err, "MALANGEE_CHECK_DEBOUNCE_MS")
}
