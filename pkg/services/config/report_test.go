package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReportConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.yaml")
	content := `
target_skus:
  - sku-e5
  - sku-ems
include_all_states: true
summary_delimiter: "|"
compare_sku_a: SPE_E5
compare_sku_b: EMSPREMIUM
snapshot_groups:
  - g1
  - g2
extension_attribute: extensionAttribute4
max_rows_per_user: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadReportConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"sku-e5", "sku-ems"}, cfg.TargetSKUs)
	assert.True(t, cfg.IncludeAllStates)
	assert.Equal(t, "|", cfg.SummaryDelimiter)
	assert.Equal(t, "SPE_E5", cfg.CompareSKUA)
	assert.Equal(t, "EMSPREMIUM", cfg.CompareSKUB)
	assert.Equal(t, []string{"g1", "g2"}, cfg.SnapshotGroups)
	assert.Equal(t, "extensionAttribute4", cfg.ExtensionAttribute)
	assert.Equal(t, 2, cfg.MaxRowsPerUser)
}

func TestLoadReportConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.yaml")
	require.NoError(t, os.WriteFile(path, []byte("target_skus: []\n"), 0o600))

	cfg, err := LoadReportConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "; ", cfg.SummaryDelimiter)
	assert.Equal(t, "extensionAttribute1", cfg.ExtensionAttribute)
	assert.False(t, cfg.IncludeAllStates)
	assert.Zero(t, cfg.MaxRowsPerUser)
}

func TestLoadReportConfig_MissingFile(t *testing.T) {
	_, err := LoadReportConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	content := "[default]\ntenant = 00000000-0000-0000-0000-000000000001\n\n[contoso]\ntenant = 00000000-0000-0000-0000-000000000002\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("AZURE_CONFIG_PATH", path)

	t.Run("empty name falls back to default section", func(t *testing.T) {
		profile, err := LoadProfile("")
		require.NoError(t, err)
		assert.Equal(t, "default", profile.Name)
		assert.Equal(t, "00000000-0000-0000-0000-000000000001", profile.TenantID)
		assert.NotNil(t, profile.Credentials)
	})

	t.Run("named profile", func(t *testing.T) {
		profile, err := LoadProfile("contoso")
		require.NoError(t, err)
		assert.Equal(t, "00000000-0000-0000-0000-000000000002", profile.TenantID)
	})

	t.Run("unknown profile errors", func(t *testing.T) {
		_, err := LoadProfile("nope")
		assert.Error(t, err)
	})
}

func TestLoadProfile_MissingConfig(t *testing.T) {
	t.Setenv("AZURE_CONFIG_PATH", filepath.Join(t.TempDir(), "nope"))

	_, err := LoadProfile("default")
	assert.Error(t, err)
}
