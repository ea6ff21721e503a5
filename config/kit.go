package config

import (
	"fmt"

	"github.com/kbukum/wirekit/logger"
	"github.com/kbukum/wirekit/validation"
)

// KitConfig contains the essential configuration fields every wirekit
// application needs. Projects extend this by embedding it in their own
// config structs.
//
// Example:
//
//	type MyConfig struct {
//	    config.KitConfig `yaml:",inline" mapstructure:",squash"`
//	    API APIConfig `yaml:"api" mapstructure:"api"`
//	}
type KitConfig struct {
	Name        string `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string `yaml:"environment" mapstructure:"environment" validate:"omitempty,oneof=development staging production"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging   logger.Config   `yaml:"logging" mapstructure:"logging"`
	Container ContainerConfig `yaml:"container" mapstructure:"container"`
	Optimizer OptimizerConfig `yaml:"optimizer" mapstructure:"optimizer"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// GetKitConfig returns the base KitConfig. When embedded in a larger
// config struct this method is promoted, so the embedding struct
// automatically satisfies the bootstrap Config interface.
func (c *KitConfig) GetKitConfig() *KitConfig {
	return c
}

// ApplyDefaults applies default values to the base configuration.
// Override this in embedding structs and call c.KitConfig.ApplyDefaults() first.
func (c *KitConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Container.Name == "" {
		c.Container.Name = c.Name
	}
	c.Logging.ApplyDefaults()
	c.Container.ApplyDefaults()
	c.Optimizer.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

// Validate validates the base configuration fields.
// Override this in embedding structs and call c.KitConfig.Validate() first.
func (c *KitConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Container.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Optimizer.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
