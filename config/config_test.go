package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobinette/paperlog/cron"
)

func writeConfig(t *testing.T, content string) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.test.toml"), []byte(content), 0600))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir(), "test")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, cron.DefaultReindexSpec, cfg.Cron.Reindex)
	assert.Equal(t, cron.DefaultCitationsSpec, cfg.Cron.Citations)
}

func TestLoad_File(t *testing.T) {
	dir := writeConfig(t, `
addr = ":8080"
timezone = "Europe/Paris"

[auth]
key = "configuration/hs256.json"

[store]
driver = "sqlite"
sqlite = "/tmp/papers.sqlite"

[lookup]
timeout = "3s"

[cron]
enabled = false
`)

	cfg, err := Load(dir, "test")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "configuration/hs256.json", cfg.Auth.Key)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/papers.sqlite", cfg.Store.SQLite)
	assert.Equal(t, "data/paperlog.db", cfg.Store.Bolt, "unset values keep the default")
	assert.Equal(t, 3*time.Second, cfg.Lookup.Timeout)
	assert.False(t, cfg.Cron.Enabled)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", loc.String())
}

func TestLoad_Env(t *testing.T) {
	dir := writeConfig(t, `
addr = ":8080"

[store]
driver = "sqlite"
`)

	t.Setenv("PAPERLOG_ADDR", ":9090")
	t.Setenv("PAPERLOG_STORE_DRIVER", "memory")
	t.Setenv("PAPERLOG_LOOKUP_API_KEY", "secret")
	t.Setenv("PAPERLOG_CRON_REINDEX", "@hourly")

	cfg, err := Load(dir, "test")
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "secret", cfg.Lookup.APIKey)
	assert.Equal(t, "@hourly", cfg.Cron.Reindex)
}

func TestLoad_Invalid(t *testing.T) {
	tts := map[string]string{
		"not toml":     `addr = `,
		"driver":       `[store]` + "\n" + `driver = "mongo"`,
		"timezone":     `timezone = "Mars/Olympus"`,
		"bad duration": `[lookup]` + "\n" + `timeout = "soon"`,
	}

	for name, content := range tts {
		_, err := Load(writeConfig(t, content), "test")
		assert.Error(t, err, name)
	}

	t.Setenv("PAPERLOG_CRON_ENABLED", "maybe")
	_, err := Load(t.TempDir(), "test")
	assert.Error(t, err)
}
