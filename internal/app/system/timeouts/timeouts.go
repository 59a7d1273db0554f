// Package timeouts centralizes the context deadlines used for MongoDB
// operations and health probes.
package timeouts

import (
	"context"
	"time"
)

const (
	// Ping bounds liveness and readiness probes.
	Ping = 2 * time.Second

	// DB bounds single-document store operations issued outside a
	// request-scoped context, such as the per-request session user fetch.
	DB = 5 * time.Second

	// Sweep bounds one pass of a background retention or cleanup job.
	Sweep = time.Minute
)

// WithDB derives a context bounded by the DB deadline.
func WithDB(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DB)
}

// WithPing derives a context bounded by the Ping deadline.
func WithPing(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, Ping)
}

// WithSweep derives a context bounded by the Sweep deadline.
func WithSweep(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, Sweep)
}
