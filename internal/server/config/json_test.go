package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"address":              "www.example:9000",
		"database_dsn":         "hub.db",
		"secret_key":           "my_secret_key",
		"reset_token_validity": "2h",
		"frontend_url":         "https://hub.example",
		"mail_provider":        "sendgrid",
		"sendgrid_api_key":     "SG.x",
		"mail_from":            "hub@example.com",
	})
	pathEnv := writeTempJSON(t, dir, "env.json", map[string]any{
		"address": "env:1234",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.Address)
		assert.Equal(t, "hub.db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 2*time.Hour, cfg.ResetTokenValidity)
		assert.Equal(t, "https://hub.example", cfg.FrontendURL)
		assert.Equal(t, MailSendgrid, cfg.MailProvider)
		assert.Equal(t, "SG.x", cfg.SendgridAPIKey)
		assert.Equal(t, "hub@example.com", cfg.MailFrom)
	})

	t.Run("env variable when no flag", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv(EnvConfigFile, pathEnv)

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "env:1234", cfg.Address)
		assert.Equal(t, 1*time.Hour, cfg.ResetTokenValidity, "missing fields keep defaults")
		assert.Equal(t, MailConsole, cfg.MailProvider)
	})

	t.Run("no file leaves config untouched", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv(EnvConfigFile, "")

		cfg := &Config{Address: "keep"}
		parseJson(cfg)
		assert.Equal(t, "keep", cfg.Address)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
