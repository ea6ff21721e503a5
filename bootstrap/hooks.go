package bootstrap

import "context"

// Hook is a lifecycle callback invoked during startup or shutdown.
// A non-nil error aborts the phase it runs in.
type Hook func(ctx context.Context) error

// OnRegistered registers hooks to run after all modules have applied
// their registrations, before graph validation.
func (a *App[C]) OnRegistered(hooks ...Hook) {
	a.onRegistered = append(a.onRegistered, hooks...)
}

// OnValidated registers hooks to run after the dependency graph passed
// validation, before eager warm-up.
func (a *App[C]) OnValidated(hooks ...Hook) {
	a.onValidated = append(a.onValidated, hooks...)
}

// OnReady registers hooks to run once startup is complete.
func (a *App[C]) OnReady(hooks ...Hook) {
	a.onReady = append(a.onReady, hooks...)
}

// OnStop registers hooks to run at the beginning of graceful shutdown,
// before the optimizer stops and the container closes.
func (a *App[C]) OnStop(hooks ...Hook) {
	a.onStop = append(a.onStop, hooks...)
}

// runHooks executes hooks in registration order, stopping at the first error.
func runHooks(ctx context.Context, hooks []Hook) error {
	for _, h := range hooks {
		if err := h(ctx); err != nil {
			return err
		}
	}
	return nil
}
