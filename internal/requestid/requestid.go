// Package requestid carries a per-request correlation ID through the
// context, so every log line produced while serving one API call can
// be grepped together.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// New mints a fresh request ID (UUID v4).
func New() string {
	return uuid.NewString()
}

// WithRequestID attaches id to ctx for downstream log enrichment.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request ID stored in ctx, or "" for work
// that did not originate in the HTTP middleware (cron ticks, seeding).
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
