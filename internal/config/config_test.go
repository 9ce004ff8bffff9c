package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"DOD_API_URL", "DOD_TIMEOUT", "DOD_CREDENTIALS", "DOD_DEBUG", "DOD_THEME"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1", cfg.APIURL)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "classic", cfg.Theme)
}

func TestLoad_EnvAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DOD_THEME=neon\nDOD_TIMEOUT=3s\n"), 0o600))
	t.Setenv("DOD_API_URL", "https://dod.example.com/api/v1")
	t.Setenv("DOD_DEBUG", "true")
	t.Setenv("DOD_THEME", "")
	os.Unsetenv("DOD_THEME")
	t.Setenv("DOD_TIMEOUT", "")
	os.Unsetenv("DOD_TIMEOUT")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://dod.example.com/api/v1", cfg.APIURL)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "neon", cfg.Theme)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
}
