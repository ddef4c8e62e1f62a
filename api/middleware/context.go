package middleware

import (
	"context"

	"github.com/brewlinehq/brewline-backend/pkg/visibility"
)

type contextKey string

const ctxActor contextKey = "actor"

// ActorFromContext returns the authenticated actor seeded by Auth. The
// boolean is false on unauthenticated requests.
func ActorFromContext(ctx context.Context) (visibility.Actor, bool) {
	if ctx == nil {
		return visibility.Actor{}, false
	}
	actor, ok := ctx.Value(ctxActor).(visibility.Actor)
	return actor, ok
}

// WithActor injects the actor into the context. Exported for handler tests.
func WithActor(ctx context.Context, actor visibility.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}
