package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadUserConfigMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadUserConfig(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)

	assert.Equal(t, "https://ifdb.tads.org", cfg.IFDB.BaseURL)
	assert.True(t, cfg.IFDB.FetchMetadata)
	assert.True(t, cfg.IFDB.FetchCoverArt)
	assert.Equal(t, 6, cfg.IFDB.RequestsPerMinute)
	assert.Empty(t, cfg.Launchers)
}

func TestSaveUserConfigRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grotesque.yml")

	cfg := defaultUserConfig()
	cfg.Launchers = map[string]string{"zcode": "frotz", "glulx": "glulxe"}
	cfg.ResourceOpener = "xdg-open"
	cfg.IFDB.FetchCoverArt = false
	cfg.IFDB.RequestsPerMinute = 12

	require.NoError(t, SaveUserConfig(cfg, path))

	got, err := LoadUserConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "frotz", got.Launcher("zcode"))
	assert.Equal(t, "glulxe", got.Launcher("glulx"))
	assert.Equal(t, "xdg-open", got.ResourceOpener)
	assert.False(t, got.IFDB.FetchCoverArt)
	assert.Equal(t, 12, got.IFDB.RequestsPerMinute)
	assert.True(t, got.IFDB.FetchMetadata)
}

func TestLauncherUnknownFormat(t *testing.T) {
	cfg := defaultUserConfig()
	assert.Empty(t, cfg.Launcher("tads3"))
}
