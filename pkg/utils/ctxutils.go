package utils

import (
	"context"

	"loan-broker/pkg/contextkeys"
)

func GetRequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(contextkeys.RequestIDKey).(string)
	return id
}
