// Package inject provides lazy field wrappers over container resolution,
// the Go stand-in for annotation-style field injection.
//
// A Lazy[T] resolves on first access and caches the result for the
// wrapper's lifetime; absent dependencies degrade to the zero value. A
// Required[T] panics when the dependency is missing, for fields the
// owner cannot function without.
//
//	type Checkout struct {
//		Payments inject.Lazy[PaymentGateway]
//	}
//
//	gw, ok := checkout.Payments.Get()
//
// Wrappers without an explicit container use container.Default().
package inject
