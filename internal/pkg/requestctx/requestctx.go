// Package requestctx carries per-request values between middleware,
// handlers and services.
package requestctx

import (
	"context"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
)

type requestIDKey struct{}
type actorKey struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id, or "" outside a request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func WithActor(ctx context.Context, actor user.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// Actor returns the authenticated caller stored by the auth middleware.
func Actor(ctx context.Context) (user.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(user.Actor)
	return actor, ok
}
