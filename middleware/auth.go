package middleware

import (
	"context"
	"net/http"

	"notes-api/auth"

	"github.com/sirupsen/logrus"
)

type contextKey string

const authContextKey contextKey = "auth"

type authResult struct {
	claims *auth.Claims
	err    error
}

// Authenticate verifies the bearer token, if any, and records the outcome
// on the request context. It never rejects a request: handlers decide when
// authentication matters, after validating their input.
func Authenticate(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var res authResult

			header := r.Header.Get("Authorization")
			tokenStr := auth.BearerToken(header)
			if tokenStr == "" {
				res.err = auth.ErrMissingToken
			} else {
				res.claims, res.err = tokens.Verify(tokenStr)
			}
			if res.err != nil && header != "" {
				logrus.Debugf("Auth Middleware - %s %s: %v", r.Method, r.URL.Path, res.err)
			}

			ctx := context.WithValue(r.Context(), authContextKey, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authenticated returns the verified claims of the request, or the reason
// there are none.
func Authenticated(r *http.Request) (*auth.Claims, error) {
	res, ok := r.Context().Value(authContextKey).(authResult)
	if !ok {
		return nil, auth.ErrMissingToken
	}
	return res.claims, res.err
}
