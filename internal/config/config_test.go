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
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.NotifyResetDelay)
	assert.Empty(t, cfg.Menu)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floor.yaml")
	content := `
port: "9000"
notify_reset_delay: 5s
allowed_origins: ["https://pos.example.com"]
menu:
  - id: tacos-pastor
    code: T1
    name: Tacos al pastor
    category: tacos
    price: "85.00"
    keywords: tacos,pastor
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port, "env wins over file")
	assert.Equal(t, 5*time.Second, cfg.NotifyResetDelay)
	assert.Equal(t, []string{"https://pos.example.com"}, cfg.AllowedOrigins)
	require.Len(t, cfg.Menu, 1)
	assert.Equal(t, "85.00", cfg.Menu[0].Price)
	assert.Nil(t, cfg.Menu[0].Available)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("NOTIFY_RESET_DELAY", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}
