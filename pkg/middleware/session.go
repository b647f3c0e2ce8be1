package middleware

import (
	"context"
	"net/http"

	"parkfinder/pkg/model"
)

const SessionKey contextKey = "session"

// SessionResolver maps an opaque user ID to the acting session. Lookups
// that fail resolve to no session rather than an error; authorization is
// decided per endpoint.
type SessionResolver interface {
	ResolveSession(ctx context.Context, userID string) (*model.Session, error)
}

// Session resolves the X-User-ID header into a model.Session and attaches
// it to the request context. Requests without the header pass through
// anonymously.
func Session(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get("X-User-ID")
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := resolver.ResolveSession(r.Context(), userID)
			if err != nil || session == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom returns the resolved session, or nil for anonymous requests.
func SessionFrom(ctx context.Context) *model.Session {
	if s, ok := ctx.Value(SessionKey).(*model.Session); ok {
		return s
	}
	return nil
}
