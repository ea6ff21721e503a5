package config

import (
	"time"

	"github.com/kbukum/wirekit/container"
	"github.com/kbukum/wirekit/optimizer"
	"github.com/kbukum/wirekit/validation"
)

// ContainerConfig configures the dependency injection container.
type ContainerConfig struct {
	// Name tags the container in logs and metrics. Defaults to the
	// application name.
	Name string `yaml:"name" mapstructure:"name"`
	// PromotionThreshold is the usage count at which a singleton is
	// promoted to the hot cache. Zero means the built-in default.
	PromotionThreshold int `yaml:"promotion_threshold" mapstructure:"promotion_threshold" validate:"min=0"`
}

// ApplyDefaults applies default values to container configuration.
func (c *ContainerConfig) ApplyDefaults() {
	if c.PromotionThreshold == 0 {
		c.PromotionThreshold = container.DefaultPromotionThreshold
	}
}

// Validate checks the container tunables. The name is required because
// it keys log and metric streams; an anonymous container would make
// them indistinguishable.
func (c *ContainerConfig) Validate() error {
	v := validation.New().
		Required("container.name", c.Name).
		Min("container.promotion_threshold", c.PromotionThreshold, 1)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// OptimizerConfig configures the background optimizer. The zero value
// runs the optimizer with defaults; set Disabled to switch it off.
type OptimizerConfig struct {
	Disabled bool `yaml:"disabled" mapstructure:"disabled"`
	// Interval is the sweep interval, clamped to the optimizer's
	// supported range. Zero means the built-in default.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	// Threshold overrides the container's promotion threshold for
	// sweep-driven promotion. Zero means inherit from the container.
	Threshold int `yaml:"threshold" mapstructure:"threshold" validate:"min=0"`
}

// ApplyDefaults applies default values to optimizer configuration.
func (c *OptimizerConfig) ApplyDefaults() {
	if c.Interval == 0 {
		c.Interval = optimizer.DefaultInterval
	}
}

// Validate checks the sweep interval against the optimizer's hard bounds.
func (c *OptimizerConfig) Validate() error {
	v := validation.New().
		DurationRange("optimizer.interval", c.Interval, optimizer.MinInterval, optimizer.MaxInterval)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// TelemetryConfig configures OpenTelemetry export. Telemetry is opt-in;
// the zero value leaves tracing and metrics off.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP endpoint host:port.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows plain HTTP connections (for development).
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// SampleRate is the trace sampling rate. Zero means the default of 1.0.
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"min=0,max=1"`
}

// ApplyDefaults applies default values to telemetry configuration.
func (c *TelemetryConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
}

// Validate checks that an enabled exporter has somewhere to send to.
func (c *TelemetryConfig) Validate() error {
	v := validation.New().
		Custom(!c.Enabled || c.Endpoint != "", "telemetry.endpoint", "is required when telemetry is enabled")
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
