package domain

import "context"

// Actor is the identity on whose behalf a write is performed. It is
// supplied by the out-of-process auth layer and required on every write.
type Actor struct {
	FirmID string
	UserID string
}

type actorContextKey struct{}

// WithActor attaches an actor to the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from the context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
