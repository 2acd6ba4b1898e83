package config

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(envFrom(map[string]string{"BOT_TOKEN": "123:abc"}))
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.BotToken)
	assert.Equal(t, DefaultModel, cfg.GeminiModel)
	assert.Equal(t, DefaultMaxUploadMB, cfg.MaxUploadMB)
	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, DefaultSessionIdleTimeout, cfg.SessionIdleTimeout)
	assert.Zero(t, cfg.AdminID)
	assert.Zero(t, cfg.RatingRetention)
	assert.False(t, cfg.HasGeminiKey())
}

func TestLoadFrom_AllValues(t *testing.T) {
	cfg, err := LoadFrom(envFrom(map[string]string{
		"BOT_TOKEN":            "123:abc",
		"GEMINI_API_KEY":       " key ",
		"GEMINI_MODEL":         "gemini-2.5-pro",
		"MAX_UPLOAD_MB":        "5",
		"CHADORCHUD_DB_PATH":   "/tmp/r.db",
		"CATALOG_PATH":         "catalog.yaml",
		"ADMIN_TELEGRAM_ID":    "42",
		"SESSION_IDLE_TIMEOUT": "30m",
		"RATING_RETENTION":     "720h",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.HasGeminiKey())
	assert.Equal(t, "key", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.GeminiModel)
	assert.Equal(t, 5, cfg.MaxUploadMB)
	assert.Equal(t, "/tmp/r.db", cfg.DBPath)
	assert.Equal(t, "catalog.yaml", cfg.CatalogPath)
	assert.Equal(t, int64(42), cfg.AdminID)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, 720*time.Hour, cfg.RatingRetention)
}

func TestLoadFrom_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing token", map[string]string{}},
		{"bad max upload", map[string]string{"BOT_TOKEN": "t", "MAX_UPLOAD_MB": "ten"}},
		{"zero max upload", map[string]string{"BOT_TOKEN": "t", "MAX_UPLOAD_MB": "0"}},
		{"bad admin", map[string]string{"BOT_TOKEN": "t", "ADMIN_TELEGRAM_ID": "me"}},
		{"bad idle timeout", map[string]string{"BOT_TOKEN": "t", "SESSION_IDLE_TIMEOUT": "soon"}},
		{"bad retention", map[string]string{"BOT_TOKEN": "t", "RATING_RETENTION": "-1h"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(envFrom(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestWriteEnvFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), EnvFileName)
	values := map[string]string{
		"BOT_TOKEN":      "123:abc",
		"GEMINI_API_KEY": "k e y#1",
	}
	require.NoError(t, writeEnvFile(path, values))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestValidateTelegramToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/botgood/getMe" {
			w.Write([]byte(`{"ok":true,"result":{"id":1}}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"ok":false,"description":"Unauthorized"}`))
	}))
	defer server.Close()

	orig := telegramAPIURL
	telegramAPIURL = server.URL
	defer func() { telegramAPIURL = orig }()

	assert.NoError(t, validateTelegramToken("good"))
	assert.EqualError(t, validateTelegramToken("bad"), "Unauthorized")
}

func TestValidateGeminiKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("key") {
		case "good":
			w.Write([]byte(`{"models":[]}`))
		case "broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
		}
	}))
	defer server.Close()

	orig := geminiAPIURL
	geminiAPIURL = server.URL
	defer func() { geminiAPIURL = orig }()

	assert.NoError(t, validateGeminiKey("good"))
	assert.EqualError(t, validateGeminiKey("bad"), "API key not valid")
	assert.EqualError(t, validateGeminiKey("broken"), "unexpected response (HTTP 500)")
}
