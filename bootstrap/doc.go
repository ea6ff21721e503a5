// Package bootstrap orchestrates application lifecycle around a container.
//
// It provides typed configuration, module-based registration, pre-flight
// graph validation, eager warm-up, the background optimizer, and
// startup/shutdown hooks for rapid application initialization.
//
// # Quick Start
//
//	type AppConfig struct {
//	    config.KitConfig `mapstructure:",squash"`
//	}
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app.AddModule(bootstrap.NewModule("database", func(c *container.Container) error {
//	    return container.Register[*sql.DB](c, openDB, container.AsEager())
//	}))
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Startup runs in three phases: modules register, the dependency graph is
// validated (a cycle aborts startup before anything resolves), and eager
// registrations are warmed up. The optimizer then sweeps in the background
// until shutdown. Graceful shutdown stops the optimizer, closes the
// container, and flushes telemetry within the graceful timeout.
package bootstrap
