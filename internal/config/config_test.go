package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeRoot(t *testing.T) {
	t.Helper()
	orig := getuid
	getuid = func() int { return 0 }
	t.Cleanup(func() { getuid = orig })
}

func TestIsUserMode(t *testing.T) {
	assert.True(t, IsUserMode())
}

func TestIsUserMode_Root(t *testing.T) {
	fakeRoot(t)
	assert.False(t, IsUserMode())
}

func TestGetServerID_Configured(t *testing.T) {
	cfg := &Config{ServerID: "Rig/7 2.0"}
	assert.Equal(t, "Rig/7 2.0", cfg.GetServerID())
}

func TestGetServerID_Default(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, "Jig/20 1.0", cfg.GetServerID())
}

func TestGetUnitDir_Configured(t *testing.T) {
	cfg := &Config{UnitDir: "/custom/units"}
	assert.Equal(t, "/custom/units", cfg.GetUnitDir())
}

func TestGetUnitDir_DefaultUserMode(t *testing.T) {
	cfg := &Config{}
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".config/exclave/units")
	assert.Equal(t, expected, cfg.GetUnitDir())
}

func TestGetUnitDir_DefaultSystemMode(t *testing.T) {
	fakeRoot(t)
	cfg := &Config{}
	assert.Equal(t, "/etc/exclave/units", cfg.GetUnitDir())
}

func TestGetDefaultScenarioTimeout_UnboundedByDefault(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, time.Duration(0), cfg.GetDefaultScenarioTimeout())
}

func TestGetDefaultScenarioTimeout_Configured(t *testing.T) {
	cfg := &Config{DefaultScenarioTimeout: 30 * time.Second}
	assert.Equal(t, 30*time.Second, cfg.GetDefaultScenarioTimeout())
}

func TestLoad_NoPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Jig/20 1.0", cfg.GetServerID())
}

func TestLoad_FromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exclave.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serverId: Rig/7 2.0\ntcpAddr: \":9090\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Rig/7 2.0", cfg.GetServerID())
	assert.Equal(t, ":9090", cfg.TCPAddr)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.NoError(t, err)
}
