// Package config loads runtime configuration for a modeshift run.
package config

import "github.com/spf13/viper"

// Config holds all runtime configuration. Values are populated from
// .modeshift.yaml, MODESHIFT_* env vars, and CLI flags.
type Config struct {
	PlanPath     string `mapstructure:"plan_path"`
	RegistryPath string `mapstructure:"registry_path"`
	BackupRoot   string `mapstructure:"backup_root"`
	TestRunner   string `mapstructure:"test_runner"`
	TestEntry    string `mapstructure:"test_entry"`
	WorkDir      string `mapstructure:"work_dir"`
	Verbose      bool   `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for
// any values not set by config file, environment, or flags.
func Load() Config {
	viper.SetDefault("plan_path", "migration.toml")
	viper.SetDefault("registry_path", "services.yaml")
	viper.SetDefault("backup_root", ".modeshift/backups")
	viper.SetDefault("test_runner", "node")
	viper.SetDefault("test_entry", "tests/integration.js")
	viper.SetDefault("work_dir", ".")
	viper.SetDefault("verbose", false)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
