package bootstrap

import "github.com/kbukum/wirekit/container"

// Module groups related registrations so an application can be assembled
// from independent units. Modules register during Phase 1 of startup,
// before the dependency graph is validated.
type Module interface {
	// Name identifies the module in logs and the startup summary.
	Name() string
	// Register adds the module's registrations to the container.
	Register(c *container.Container) error
}

type moduleFunc struct {
	name     string
	register func(c *container.Container) error
}

// NewModule adapts a function to the Module interface.
//
//	db := bootstrap.NewModule("database", func(c *container.Container) error {
//	    return container.Register[*sql.DB](c, openDB, container.AsEager())
//	})
func NewModule(name string, register func(c *container.Container) error) Module {
	return &moduleFunc{name: name, register: register}
}

func (m *moduleFunc) Name() string { return m.name }

func (m *moduleFunc) Register(c *container.Container) error { return m.register(c) }
