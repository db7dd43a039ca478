package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/qrlinkki/qrlinkki/pkg/response"
)

// TokenParser validates a bearer token and returns the user id it carries.
type TokenParser interface {
	Parse(tokenString string) (int64, error)
}

type ctxKey int

const userIDKey ctxKey = iota

// authenticate rejects requests without a valid bearer token and stores the
// caller's user id in the request context for handlers further down.
func authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.UnauthorizedResponse)
				return
			}

			userID, err := tokens.Parse(token)
			if err != nil {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.UnauthorizedResponse)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// callerID returns the authenticated user id stored by the authenticate
// middleware. It is only meaningful inside authenticated route groups.
func callerID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}
