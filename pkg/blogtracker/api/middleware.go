package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

// RequireUser verifies the JWT processed by jwtauth.Verifier and rejects
// requests without a parseable user_id claim. Handlers downstream read the
// identity with CurrentUserID and never re-validate it.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, ErrorResponse{Error: "missing or invalid token"})
			return
		}

		raw, ok := claims["user_id"].(string)
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, ErrorResponse{Error: "missing or invalid token"})
			return
		}
		if _, err := uuid.Parse(raw); err != nil {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, ErrorResponse{Error: "missing or invalid token"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CurrentUserID returns the authenticated user's ID from the request
// context. It must only be called below RequireUser.
func CurrentUserID(r *http.Request) (uuid.UUID, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return uuid.Nil, err
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, errors.New("user_id claim missing")
	}
	return uuid.Parse(raw)
}
