package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// ReportConfig drives the report commands: which SKUs to look at, how to
// filter assignment states, and how the snapshot ingestion behaves.
type ReportConfig struct {
	TargetSKUs       []string `mapstructure:"target_skus"`
	IncludeAllStates bool     `mapstructure:"include_all_states"`
	SummaryDelimiter string   `mapstructure:"summary_delimiter"`

	CompareSKUA string `mapstructure:"compare_sku_a"`
	CompareSKUB string `mapstructure:"compare_sku_b"`

	SnapshotGroups     []string `mapstructure:"snapshot_groups"`
	ExtensionAttribute string   `mapstructure:"extension_attribute"`
	MaxRowsPerUser     int      `mapstructure:"max_rows_per_user"`
}

func LoadReportConfig(profilePath string) (*ReportConfig, error) {
	v := viper.New()
	v.SetConfigFile(profilePath)

	v.SetDefault("summary_delimiter", "; ")
	v.SetDefault("extension_attribute", "extensionAttribute1")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg ReportConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse report config: %w", err)
	}
	return &cfg, nil
}
