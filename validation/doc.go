// Package validation provides input validation for wirekit configuration
// and for identifiers supplied by hosts at runtime.
//
// It supports both struct tag validation (using the validator library)
// and programmatic validation with finding collection. Struct tags cover
// the declarative rules on config structs; findings name fields by their
// mapstructure tag, so they match config file keys.
//
// # Struct Tag Validation
//
//	type KitConfig struct {
//	    Name        string `mapstructure:"name" validate:"required"`
//	    Environment string `mapstructure:"environment" validate:"omitempty,oneof=development staging production"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
// The fluent Validator expresses rules tags cannot, such as duration
// bounds and cross-field conditions. The config package uses it for
// section-level checks:
//
//	v := validation.New().
//	    Required("container.name", cfg.Name).
//	    DurationRange("optimizer.interval", cfg.Interval, optimizer.MinInterval, optimizer.MaxInterval)
//	err := v.Validate()
package validation
