package scope

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind is a lifetime category for stored values.
type Kind int

const (
	KindSingleton Kind = iota // process lifetime
	KindSession               // keyed by session ID, released via ReleaseScope
	KindScreen                // keyed by screen ID, released via ReleaseScope
	KindTransient             // never cached
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindSingleton:
		return "singleton"
	case KindSession:
		return "session"
	case KindScreen:
		return "screen"
	case KindTransient:
		return "transient"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	return k >= KindSingleton && k <= KindTransient
}

// Keyed reports whether the kind carries a runtime identifier.
func (k Kind) Keyed() bool {
	return k == KindSession || k == KindScreen
}

// Scope is a concrete lifetime bucket: a kind plus, for session and screen,
// the runtime identifier that names the bucket. Scope is comparable and is
// used directly as a map key by the container's store.
type Scope struct {
	Kind Kind
	ID   string
}

// Singleton returns the process-lifetime scope.
func Singleton() Scope { return Scope{Kind: KindSingleton} }

// Transient returns the never-cached scope.
func Transient() Scope { return Scope{Kind: KindTransient} }

// Session returns the session scope for the given identifier.
func Session(id string) Scope { return Scope{Kind: KindSession, ID: id} }

// Screen returns the screen scope for the given identifier.
func Screen(id string) Scope { return Scope{Kind: KindScreen, ID: id} }

// String renders singleton/transient as the bare kind and keyed scopes as
// kind(id).
func (s Scope) String() string {
	if s.Kind.Keyed() {
		return fmt.Sprintf("%s(%s)", s.Kind, s.ID)
	}
	return s.Kind.String()
}

// Validate rejects unknown kinds and keyed scopes without an identifier.
func (s Scope) Validate() error {
	if !s.Kind.Valid() {
		return fmt.Errorf("scope: unknown kind %d", int(s.Kind))
	}
	if s.Kind.Keyed() && s.ID == "" {
		return fmt.Errorf("scope: %s scope requires an identifier", s.Kind)
	}
	if !s.Kind.Keyed() && s.ID != "" {
		return fmt.Errorf("scope: %s scope does not take an identifier", s.Kind)
	}
	return nil
}

// Priority returns the search rank for the kind; lower ranks are searched
// first when a resolution does not name a scope.
func (k Kind) Priority() int {
	switch k {
	case KindSingleton:
		return 0
	case KindSession:
		return 1
	case KindScreen:
		return 2
	default:
		return 3
	}
}

// SearchOrder lists all kinds in resolution priority order.
func SearchOrder() []Kind {
	return []Kind{KindSingleton, KindSession, KindScreen, KindTransient}
}

// NewSessionID generates a fresh session identifier.
func NewSessionID() string { return uuid.NewString() }

// NewScreenID generates a fresh screen identifier.
func NewScreenID() string { return uuid.NewString() }
