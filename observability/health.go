package observability

import (
	"context"
	"fmt"
)

// HealthStatus grades a runtime component. Down means the component
// cannot serve at all; degraded means it serves but some resolution
// paths are known to fail.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health is the report of one runtime component, such as a container or
// its optimizer. Details carries component counters (registrations,
// cache entries, sweep interval) as rendered strings.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// HealthChecker is implemented by runtime components that grade
// themselves; *container.Container is the canonical implementation.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// GraphReport grades a component from dependency graph scan findings.
// Cycles degrade before dangling edges are considered; a cycle already
// implies broken resolution paths, so it is the message that surfaces.
func GraphReport(name string, cycles, dangling int, details map[string]string) Health {
	h := Health{
		Name:    name,
		Status:  HealthStatusUp,
		Details: details,
	}
	switch {
	case cycles > 0:
		h.Status = HealthStatusDegraded
		h.Message = fmt.Sprintf("%d dependency cycle(s)", cycles)
	case dangling > 0:
		h.Status = HealthStatusDegraded
		h.Message = fmt.Sprintf("%d unregistered dependency edge(s)", dangling)
	}
	return h
}

// ServiceHealth aggregates component reports into one service-level
// grade: the worst component status wins.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// NewServiceHealth creates a ServiceHealth with status up.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{
		Service: service,
		Status:  HealthStatusUp,
		Version: version,
	}
}

// AddComponent records a component report and downgrades the overall
// status when the component is worse than what is recorded so far.
func (sh *ServiceHealth) AddComponent(ch Health) {
	sh.Components = append(sh.Components, ch)

	switch ch.Status {
	case HealthStatusDown:
		sh.Status = HealthStatusDown
	case HealthStatusDegraded:
		if sh.Status != HealthStatusDown {
			sh.Status = HealthStatusDegraded
		}
	}
}
