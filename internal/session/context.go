package session

import "context"

type contextKey string

const sessionKey contextKey = "github.com/threadline/storefront/internal/session.session"

// NewContext stores the session on the request context.
func NewContext(ctx context.Context, sess *Session) context.Context {
	if sess == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey, sess)
}

// FromContext retrieves the session placed by the middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*Session)
	return sess, ok
}
