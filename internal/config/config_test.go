package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestFromLookupDefaults(t *testing.T) {
	cfg, err := FromLookup(lookup(map[string]string{"TOKEN_SECRET": "s3cret"}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, StorageMemory, cfg.StorageType)
	assert.Equal(t, 24*time.Hour, cfg.SessionDuration)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.False(t, cfg.SeedDemoData)
}

func TestFromLookupOverrides(t *testing.T) {
	cfg, err := FromLookup(lookup(map[string]string{
		"ADDR":             "127.0.0.1:9000",
		"STORAGE_TYPE":     "postgres",
		"DATABASE_URL":     "postgres://localhost/placement",
		"TOKEN_SECRET":     "s3cret",
		"SESSION_DURATION": "2h",
		"SWEEP_INTERVAL":   "30s",
		"SEED_DEMO_DATA":   "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, StoragePostgres, cfg.StorageType)
	assert.Equal(t, "postgres://localhost/placement", cfg.DatabaseURL)
	assert.Equal(t, 2*time.Hour, cfg.SessionDuration)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.True(t, cfg.SeedDemoData)
}

func TestFromLookupRejects(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"missing secret", map[string]string{}},
		{"redis without url", map[string]string{"TOKEN_SECRET": "x", "STORAGE_TYPE": "redis"}},
		{"postgres without url", map[string]string{"TOKEN_SECRET": "x", "STORAGE_TYPE": "postgres"}},
		{"unknown storage", map[string]string{"TOKEN_SECRET": "x", "STORAGE_TYPE": "mongo"}},
		{"bad duration", map[string]string{"TOKEN_SECRET": "x", "SESSION_DURATION": "soon"}},
		{"negative sweep", map[string]string{"TOKEN_SECRET": "x", "SWEEP_INTERVAL": "-1s"}},
		{"bad bool", map[string]string{"TOKEN_SECRET": "x", "SEED_DEMO_DATA": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromLookup(lookup(tt.vars))
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("TOKEN_SECRET=from-file\nSTORAGE_TYPE=memory\nADDR=:6060\n"), 0o600))

	// godotenv sets process variables; t.Setenv restores them afterwards.
	// ADDR is set in both places and the environment wins.
	t.Setenv("STORAGE_TYPE", "")
	t.Setenv("TOKEN_SECRET", "")
	require.NoError(t, os.Unsetenv("STORAGE_TYPE"))
	require.NoError(t, os.Unsetenv("TOKEN_SECRET"))
	t.Setenv("ADDR", ":7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.TokenSecret)
	assert.Equal(t, ":7070", cfg.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}
