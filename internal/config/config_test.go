package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileIsFine(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.SourceOrg)
	assert.Equal(t, "capture", cfg.CaptureDir)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orgmig.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
source_org = "acme"
dest_org = "acme-emu"
overrides = "fixes.csv"
capture = true
capture_dir = "debug"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "acme", cfg.SourceOrg)
	assert.Equal(t, "acme-emu", cfg.DestOrg)
	assert.Equal(t, "fixes.csv", cfg.Overrides)
	assert.True(t, cfg.Capture)
	assert.Equal(t, "debug", cfg.CaptureDir)
}

func TestLoad_EnvTokens(t *testing.T) {
	t.Setenv(EnvSourceToken, "src-secret")
	t.Setenv(EnvDestToken, "dst-secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, "src-secret", cfg.SourceToken)
	assert.Equal(t, "dst-secret", cfg.DestToken)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orgmig.toml")
	require.NoError(t, os.WriteFile(path, []byte("source_org = ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestResolveTokens_NonInteractiveFailure(t *testing.T) {
	// Under go test stdin is not a terminal, so a missing required token
	// must fail rather than hang on a prompt.
	cfg := &Config{}
	err := cfg.ResolveTokens(true, false)
	assert.Error(t, err)
}

func TestResolveTokens_AlreadySet(t *testing.T) {
	cfg := &Config{SourceToken: "a", DestToken: "b"}
	require.NoError(t, cfg.ResolveTokens(true, true))
}
