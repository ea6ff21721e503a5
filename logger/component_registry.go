package logger

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// componentLevels holds per-component minimum level overrides. A component
// with an override logs at that level regardless of the global level.
type componentLevels struct {
	mu     sync.RWMutex
	levels map[string]string
}

var levelOverrides = &componentLevels{
	levels: make(map[string]string),
}

// SetComponentLevel overrides the minimum log level for one component.
// Loggers obtained through Get pick the override up; loggers already
// handed out keep their level until re-fetched.
func SetComponentLevel(name, level string) error {
	if _, err := zerolog.ParseLevel(level); err != nil {
		return fmt.Errorf("invalid level %q for component %s: %w", level, name, err)
	}
	levelOverrides.mu.Lock()
	defer levelOverrides.mu.Unlock()
	levelOverrides.levels[name] = level
	return nil
}

// ComponentLevel returns the level override for a component, if any.
func ComponentLevel(name string) (string, bool) {
	levelOverrides.mu.RLock()
	defer levelOverrides.mu.RUnlock()
	level, ok := levelOverrides.levels[name]
	return level, ok
}

// ClearComponentLevel removes a single component's level override.
func ClearComponentLevel(name string) {
	levelOverrides.mu.Lock()
	defer levelOverrides.mu.Unlock()
	delete(levelOverrides.levels, name)
}

// ComponentLevels returns a copy of all configured overrides.
func ComponentLevels() map[string]string {
	levelOverrides.mu.RLock()
	defer levelOverrides.mu.RUnlock()
	out := make(map[string]string, len(levelOverrides.levels))
	for k, v := range levelOverrides.levels {
		out[k] = v
	}
	return out
}

// ResetComponentLevels drops all overrides.
func ResetComponentLevels() {
	levelOverrides.mu.Lock()
	defer levelOverrides.mu.Unlock()
	levelOverrides.levels = make(map[string]string)
}

// ApplyComponentLevels installs a set of overrides, typically from the
// logging config's components map. Invalid levels are reported and skipped.
func ApplyComponentLevels(levels map[string]string) error {
	var firstErr error
	for name, level := range levels {
		if err := SetComponentLevel(name, level); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
