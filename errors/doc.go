// Package errors provides the typed failure taxonomy for the wirekit
// container. Every failure the container returns is an *Error carrying a
// machine-readable code plus structured details, so callers can branch on
// the code (fall back, use a default, or escalate) without parsing message
// text. MustResolve is the only place a typed failure becomes fatal, and
// only because the caller asked for that conversion.
package errors
