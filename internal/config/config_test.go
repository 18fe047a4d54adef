package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 200*time.Millisecond, cfg.DragRevealDelay.Std())
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.APIURL = "https://tareas.example.com"
	cfg.ToastDuration = Duration(5 * time.Second)

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFillsZeroDurationsAndAcceptsMillis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api_url":"","toast_duration":1500,"request_timeout":"0s"}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().APIURL, cfg.APIURL)
	assert.Equal(t, 1500*time.Millisecond, cfg.ToastDuration.Std())
	assert.Equal(t, Default().RequestTimeout, cfg.RequestTimeout)
}

func TestResolvePaths(t *testing.T) {
	cfg := Default()
	cfg.ResolvePaths("/home/ana/.config/lazytareas/config.json")
	assert.Equal(t, "/home/ana/.config/lazytareas/lazytareas.db", cfg.DBPath)
	assert.Equal(t, "/home/ana/.config/lazytareas/lazytareas.log", cfg.LogPath)
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "parse config")
}
