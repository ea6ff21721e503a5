// Package config provides configuration loading and validation for wirekit
// applications.
//
// It uses Viper to load configuration from files and environment variables.
// LoadConfig searches conventional locations for a wirekit.yml or
// config.yml plus an optional .env file. KitConfig is the base
// configuration every application embeds; it covers logging, the
// container, the optimizer, and telemetry.
//
// # Usage
//
//	type MyConfig struct {
//	    config.KitConfig `yaml:",inline" mapstructure:",squash"`
//	}
//
//	var cfg MyConfig
//	err := config.LoadConfig("my-app", &cfg)
//
// Environment variables override file values using underscore-separated
// paths (e.g. OPTIMIZER_INTERVAL, LOGGING_LEVEL). The WIREKIT_ prefix
// namespaces a variable to the kit and wins over the bare spelling.
//
// Watch delivers typed snapshots when the config file changes on disk,
// which the bootstrap package uses for live re-tuning.
package config
