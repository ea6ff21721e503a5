package bootstrap

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kbukum/wirekit/container"
	"github.com/kbukum/wirekit/observability"
	"github.com/kbukum/wirekit/optimizer"
	"github.com/kbukum/wirekit/typeid"
)

// ModuleStatus holds the tracked status of a module during bootstrap.
type ModuleStatus struct {
	Name          string
	Registrations int
	Status        string
}

// Summary tracks and displays the application bootstrap process.
type Summary struct {
	appName         string
	version         string
	startupDuration time.Duration
	modules         []ModuleStatus
	warmed          int
}

// NewSummary creates a new bootstrap summary tracker.
func NewSummary(appName, version string) *Summary {
	return &Summary{
		appName: appName,
		version: version,
		modules: make([]ModuleStatus, 0),
	}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackModule adds a module's bootstrap status to the summary.
func (s *Summary) TrackModule(name string, registrations int, status string) {
	s.modules = append(s.modules, ModuleStatus{
		Name:          name,
		Registrations: registrations,
		Status:        status,
	})
}

// SetWarmed records how many eager registrations were materialized.
func (s *Summary) SetWarmed(n int) {
	s.warmed = n
}

// DisplaySummary prints the bootstrap summary including the registration
// tree, graph diagnostics, optimizer state and live health.
func (s *Summary) DisplaySummary(c *container.Container, opt *optimizer.Optimizer) {
	// Header
	fmt.Printf("\n")
	fmt.Printf("🚀 %s v%s started in %.2fs\n\n",
		s.appName, s.version, s.startupDuration.Seconds())

	// Modules
	if len(s.modules) > 0 {
		fmt.Printf("🧩 Modules\n")
		for i, m := range s.modules {
			prefix := "├──"
			if i == len(s.modules)-1 {
				prefix = "└──"
			}
			icon := moduleIcon(m.Status)
			fmt.Printf("   %s %s %s (%d registrations)\n", prefix, icon, m.Name, m.Registrations)
		}
		fmt.Printf("\n")
	}

	if c == nil {
		fmt.Printf("   └── No container\n\n")
		return
	}

	// Registrations grouped by scope
	regs := c.Registrations()
	if len(regs) > 0 {
		fmt.Printf("📦 Registrations (%d)\n", len(regs))
		byScope := make(map[string][]container.RegistrationInfo)
		for _, r := range regs {
			byScope[r.Scope] = append(byScope[r.Scope], r)
		}
		scopes := make([]string, 0, len(byScope))
		for scope := range byScope {
			scopes = append(scopes, scope)
		}
		sort.Slice(scopes, func(i, j int) bool {
			ri, rj := scopeRank(scopes[i]), scopeRank(scopes[j])
			if ri != rj {
				return ri < rj
			}
			return scopes[i] < scopes[j]
		})
		for i, scope := range scopes {
			last := i == len(scopes)-1
			prefix := "├──"
			if last {
				prefix = "└──"
			}
			group := byScope[scope]
			sort.Slice(group, func(a, b int) bool { return group[a].Type < group[b].Type })
			fmt.Printf("   %s %s (%d)\n", prefix, scope, len(group))
			for j, r := range group {
				typePrefix := "│   ├──"
				if last {
					typePrefix = "    ├──"
				}
				if j == len(group)-1 {
					if last {
						typePrefix = "    └──"
					} else {
						typePrefix = "│   └──"
					}
				}
				fmt.Printf("   %s %s %s\n", typePrefix, registrationIcon(r), r.Type)
			}
		}
		fmt.Printf("\n")
		if s.warmed > 0 {
			fmt.Printf("🔥 Warmed up %d eager registration(s)\n\n", s.warmed)
		}
	} else {
		fmt.Printf("📦 Registrations\n   └── none\n\n")
	}

	// Dependency graph
	snap := c.GraphSnapshot()
	cycles := snap.Cycles()
	dangling := snap.Dangling()
	fmt.Printf("🔗 Dependency Graph\n")
	fmt.Printf("   ├── %d node(s), %d edge(s)\n", len(snap.Nodes), len(snap.Edges))
	switch {
	case len(cycles) > 0:
		for i, cy := range cycles {
			prefix := "├──"
			if i == len(cycles)-1 && len(dangling) == 0 {
				prefix = "└──"
			}
			fmt.Printf("   %s ❌ cycle: %s\n", prefix, cy.String())
		}
		for i, e := range dangling {
			prefix := "├──"
			if i == len(dangling)-1 {
				prefix = "└──"
			}
			fmt.Printf("   %s ⚠️  %s needs unregistered %s\n", prefix, typeid.Name(e.From), typeid.Name(e.To))
		}
	case len(dangling) > 0:
		for i, e := range dangling {
			prefix := "├──"
			if i == len(dangling)-1 {
				prefix = "└──"
			}
			fmt.Printf("   %s ⚠️  %s needs unregistered %s\n", prefix, typeid.Name(e.From), typeid.Name(e.To))
		}
	default:
		fmt.Printf("   └── ✅ no cycles\n")
	}
	fmt.Printf("\n")

	// Optimizer
	fmt.Printf("🧠 Optimizer\n")
	if opt == nil {
		fmt.Printf("   └── ⏸️  disabled\n")
	} else {
		state := "stopped"
		if opt.Running() {
			state = "running"
		}
		fmt.Printf("   ├── %s\n", state)
		fmt.Printf("   ├── interval: %s\n", opt.Interval())
		fmt.Printf("   └── threshold: %d\n", opt.Threshold())
	}
	fmt.Printf("\n")

	// Live health check
	health := []observability.Health{c.CheckHealth(context.Background())}
	if opt != nil {
		health = append(health, opt.Health())
	}
	fmt.Printf("🏥 Health Check\n")
	for i, h := range health {
		prefix := "├──"
		if i == len(health)-1 {
			prefix = "└──"
		}
		icon := healthStatusIcon(h.Status)
		msg := ""
		if h.Message != "" {
			msg = fmt.Sprintf(" (%s)", h.Message)
		}
		fmt.Printf("   %s %s %s: %s%s\n", prefix, icon, h.Name, strings.ToLower(string(h.Status)), msg)
	}
	fmt.Printf("\n")
}

func moduleIcon(status string) string {
	switch status {
	case "registered":
		return "✅"
	case "failed":
		return "❌"
	default:
		return "⚠️"
	}
}

func registrationIcon(r container.RegistrationInfo) string {
	switch {
	case r.Promoted:
		return "⚡"
	case r.Materialized:
		return "✅"
	default:
		return "💤"
	}
}

func healthStatusIcon(status observability.HealthStatus) string {
	switch status {
	case observability.HealthStatusUp:
		return "✅"
	case observability.HealthStatusDegraded:
		return "⚠️"
	case observability.HealthStatusDown:
		return "❌"
	default:
		return "❓"
	}
}

// scopeRank orders scopes by resolution priority for display.
func scopeRank(scope string) int {
	switch {
	case scope == "singleton":
		return 0
	case strings.HasPrefix(scope, "session("):
		return 1
	case strings.HasPrefix(scope, "screen("):
		return 2
	case scope == "transient":
		return 3
	default:
		return 4
	}
}
