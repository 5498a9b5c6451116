package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFallsBackToDefaultsWithNoFileOrEnv(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	res, err := Load("", Overrides{})
	require.NoError(t, err)
	require.Equal(t, DefaultMaxTokens, res.MaxTokens)
	require.Equal(t, DefaultMaxNameTableEntries, res.MaxNameTableEntries)
	require.Equal(t, DefaultMaxNamesTotalLength, res.MaxNamesTotalLength)
	require.Empty(t, res.ConfigFileUsed)
}

func TestLoadFlagOverridesFileAndDefault(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".moneylang.yaml"), []byte("max-tokens: 500\n"), 0644))

	res, err := Load("", Overrides{MaxTokens: 99, MaxTokensSet: true})
	require.NoError(t, err)
	require.Equal(t, 99, res.MaxTokens)
	require.NotEmpty(t, res.ConfigFileUsed)
}

func TestLoadFileOverridesDefaultWhenNoFlag(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".moneylang.yaml"), []byte("max-name-entries: 42\n"), 0644))

	res, err := Load("", Overrides{})
	require.NoError(t, err)
	require.Equal(t, 42, res.MaxNameTableEntries)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".moneylang.yaml"), []byte("max-name-bytes: 111\n"), 0644))
	t.Setenv("MONEYLANG_MAX_NAME_BYTES", "222")

	res, err := Load("", Overrides{})
	require.NoError(t, err)
	require.Equal(t, 222, res.MaxNamesTotalLength)
}
