package bootstrap

import (
	"time"

	"github.com/kbukum/wirekit/container"
	"github.com/kbukum/wirekit/logger"
)

// appOptions holds optional overrides applied during NewApp.
type appOptions struct {
	logger           *logger.Logger
	container        *container.Container
	gracefulTimeout  *time.Duration
	disableOptimizer bool
	configWatch      string
}

// Option customizes application construction.
type Option func(*appOptions)

// WithLogger overrides the logger built from config.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithContainer supplies a pre-built container instead of one built from
// config. Metrics and thresholds of the supplied container are left as-is.
func WithContainer(c *container.Container) Option {
	return func(o *appOptions) { o.container = c }
}

// WithGracefulTimeout overrides the shutdown timeout (default 15s).
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) { o.gracefulTimeout = &d }
}

// WithoutOptimizer disables the background optimizer regardless of config.
func WithoutOptimizer() Option {
	return func(o *appOptions) { o.disableOptimizer = true }
}

// WithConfigWatch watches the given config file and re-applies runtime
// knobs (optimizer interval, promotion threshold, component log levels)
// when it changes.
func WithConfigWatch(path string) Option {
	return func(o *appOptions) { o.configWatch = path }
}

func resolveOptions(opts []Option) appOptions {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
