package authz

import (
	"context"

	"loan-broker/pkg/contextkeys"
	apperrors "loan-broker/pkg/errors"
)

func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, contextkeys.ActorKey, actor)
}

// ActorFromContext достаёт актора, положенного middleware авторизации.
func ActorFromContext(ctx context.Context) (*Actor, error) {
	actor, ok := ctx.Value(contextkeys.ActorKey).(*Actor)
	if !ok || actor == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return actor, nil
}
