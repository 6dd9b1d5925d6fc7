package relic

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/syssam/relic/dialect"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "relic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dialect: sqlite
dsn: file:app.db
max_readers: 16
foreign_keys: true
slow_threshold: 250ms
debug: true
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, dialect.SQLite, cfg.Dialect)
	assert.Equal(t, "file:app.db", cfg.DSN)
	assert.Equal(t, 16, cfg.MaxReaders)
	assert.True(t, cfg.ForeignKeys)
	assert.Equal(t, 250*time.Millisecond, time.Duration(cfg.SlowThreshold))
	assert.True(t, cfg.Debug)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "relic.yaml")
	require.NoError(t, os.WriteFile(path, []byte("slow_threshold: fast\n"), 0o600))
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestDurationMarshalRoundTrip(t *testing.T) {
	t.Parallel()
	d := Duration(1500 * time.Millisecond)
	data, err := yaml.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, "1.5s\n", string(data))

	var back Duration
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, d, back)
}
