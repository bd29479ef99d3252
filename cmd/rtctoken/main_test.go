package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setCredentials(t *testing.T, appID, cert string) {
	t.Helper()
	t.Setenv("AGORA_APP_ID", appID)
	t.Setenv("AGORA_APP_CERTIFICATE", cert)
	t.Setenv("TOKEN_CODEC", "")
	t.Setenv("TOKEN_CODEC_PLUGIN", "")
}

func TestRun_IssuesToken(t *testing.T) {
	setCredentials(t, "app", "cert")
	require.NoError(t, run([]string{"--channel", "room1", "--uid", "7", "--role", "audience", "--json"}))
}

func TestRun_ValidatesInput(t *testing.T) {
	setCredentials(t, "app", "cert")
	assert.Error(t, run([]string{"--channel", "room1"}))
	assert.Error(t, run([]string{"--channel", "room1", "--uid", "7", "--ttl", "30"}))
}

func TestRun_MissingCredentials(t *testing.T) {
	setCredentials(t, "", "")
	err := run([]string{"-c", "room1", "-u", "7"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing")
}

func TestRun_Help(t *testing.T) {
	assert.NoError(t, run([]string{"--help"}))
	assert.NoError(t, run([]string{"-h"}))
}

func TestRun_PluginFlagSuppliesPath(t *testing.T) {
	setCredentials(t, "app", "cert")
	t.Setenv("TOKEN_CODEC", "plugin")

	err := run([]string{"-c", "room1", "-u", "7"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKEN_CODEC_PLUGIN")

	err = run([]string{"-c", "room1", "-u", "7", "--plugin", "/nonexistent/codec.so"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "TOKEN_CODEC_PLUGIN")
	assert.Contains(t, err.Error(), "/nonexistent/codec.so")
}
