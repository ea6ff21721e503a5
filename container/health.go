package container

import (
	"context"
	"strconv"

	"github.com/kbukum/wirekit/observability"
)

// CheckHealth reports the container's health from a graph scan.
// Dependency cycles or edges pointing at unregistered types degrade the
// status; either one means some resolution path is known to fail.
func (c *Container) CheckHealth(ctx context.Context) observability.Health {
	snap := c.GraphSnapshot()
	return observability.GraphReport(c.Name(), len(snap.Cycles()), len(snap.Dangling()), map[string]string{
		"registrations": strconv.Itoa(c.Len()),
		"cached":        strconv.Itoa(c.CacheLen()),
		"edges":         strconv.Itoa(len(snap.Edges)),
	})
}
