package session

import "context"

type tokenKey struct{}

// WithToken returns a context carrying the authority token a role lookup is
// made on behalf of. Remote role stores use it to authenticate the lookup
// before the token has been bound.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token set by WithToken, or ""
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
