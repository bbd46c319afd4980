package middleware

import "context"

type userHolder struct {
	userID string
}

type userHolderKey struct{}

func withUserHolder(ctx context.Context, h *userHolder) context.Context {
	return context.WithValue(ctx, userHolderKey{}, h)
}

func userHolderFrom(ctx context.Context) (*userHolder, bool) {
	h, ok := ctx.Value(userHolderKey{}).(*userHolder)
	return h, ok
}
