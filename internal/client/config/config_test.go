package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/studenthub/internal/models"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:5000", c.AuthURL)
	assert.Equal(t, "http://127.0.0.1:5000", c.FeedURL)
	assert.Equal(t, BackendSQLite, c.StoreBackend)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.True(t, strings.HasSuffix(c.DataDir, ".studenthub"))
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	t.Setenv(EnvConfigFile, "")

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://127.0.0.1:5000", cfg.AuthURL)
	assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"service_url":"http://file:1","request_timeout":"4s"}`), 0o600))

	os.Args = []string{"testbin", "-c", path, "-a", "http://flag:2", "-s", "memory"}
	cfg := LoadConfig()

	assert.Equal(t, "http://flag:2", cfg.AuthURL)
	assert.Equal(t, "http://flag:2", cfg.JournalURL)
	assert.Equal(t, 4*time.Second, cfg.RequestTimeout)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
}

func TestEndpoints(t *testing.T) {
	var c Config
	c.LoadDefaults()
	c.PlannerURL = "http://planner"
	c.FeedURL = "http://feed"

	ep := c.Endpoints()
	assert.Equal(t, "http://planner", ep.Collections[models.Tasks])
	assert.Equal(t, "http://planner", ep.Collections[models.Events])
	assert.Equal(t, "http://feed", ep.Collections[models.Feed])
	assert.Equal(t, c.AuthURL, ep.Auth)
}
