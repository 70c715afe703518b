package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: testapp
database:
  path: data/test.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "testapp", cfg.App.Name)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, "x-api-key", cfg.API.Auth.HeaderAPIKey)
	assert.Equal(t, 24*time.Hour, cfg.Chat.SessionTTL)
	assert.Equal(t, 2*time.Second, cfg.Chat.PaymentDelay)
	assert.Equal(t, 20, cfg.Chat.RateLimitMessages)
	assert.Equal(t, time.Minute, cfg.Chat.RateLimitWindow)
	assert.Equal(t, "exports", cfg.Exports.Path)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "tok-123")

	path := writeConfig(t, `
database:
  path: data/test.db
telegram:
  bot_token: ${TEST_BOT_TOKEN}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", cfg.Telegram.BotToken)
}

func TestLoadChatOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  path: data/test.db
chat:
  session_ttl: 1h
  payment_delay: 500ms
  rate_limit_messages: 5
  rate_limit_window: 30s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.Chat.SessionTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.Chat.PaymentDelay)
	assert.Equal(t, 5, cfg.Chat.RateLimitMessages)
	assert.Equal(t, 30*time.Second, cfg.Chat.RateLimitWindow)
}

func TestValidate(t *testing.T) {
	t.Run("MissingDatabasePath", func(t *testing.T) {
		path := writeConfig(t, `
app:
  name: testapp
`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("AuthEnabledWithoutKeys", func(t *testing.T) {
		path := writeConfig(t, `
database:
  path: data/test.db
api:
  auth:
    enabled: true
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no api keys")
	})
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
