package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"AGORA_APP_ID", "AGORA_APP_CERTIFICATE", "TOKEN_CODEC", "TOKEN_CODEC_PLUGIN",
		"APP_PORT", "REDIS_ADDR", "REDIS_DB", "RATE_LIMIT_PER_MINUTE", "POSTGRES_DSN",
		"HTTP_REQUEST_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 10*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, CodecModeBuiltin, cfg.Codec.Mode)
	assert.False(t, cfg.Credentials.Complete())
	assert.False(t, cfg.Redis.RateLimitEnabled())
	assert.Empty(t, cfg.Postgres.DSN)
}

func TestLoad_MissingCredentialsIsNotAnError(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGORA_APP_ID", "app")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Credentials.HasAppID())
	assert.False(t, cfg.Credentials.HasAppCertificate())
}

func TestLoad_CodecSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOKEN_CODEC", "Plugin")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, CodecModePlugin, cfg.Codec.Mode)
	assert.Empty(t, cfg.Codec.PluginPath)

	t.Setenv("TOKEN_CODEC_PLUGIN", "/opt/codec.so")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "/opt/codec.so", cfg.Codec.PluginPath)
}

func TestLoad_RateLimit(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_ADDR", "127.0.0.1:6379")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Redis.RateLimitEnabled())
	assert.Equal(t, 30, cfg.Redis.RateLimitPerMinute)
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	require.Error(t, err)
}
