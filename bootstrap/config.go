package bootstrap

import "github.com/kbukum/wirekit/config"

// Config is the interface application config types must satisfy to be
// used with NewApp. Any struct embedding config.KitConfig automatically
// satisfies it through method promotion.
type Config interface {
	// GetKitConfig returns the embedded base configuration.
	GetKitConfig() *config.KitConfig
	// ApplyDefaults fills in default values for unset fields.
	ApplyDefaults()
	// Validate checks the configuration for errors.
	Validate() error
}
