package middlewares

import (
	"net/http"
	"strings"

	"github.com/Rakhulsr/techstore-api/app/helpers"
	"github.com/Rakhulsr/techstore-api/app/services"
	"github.com/Rakhulsr/techstore-api/app/utils/apperr"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/unrolled/render"
)

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// AuthMiddleware rejects requests without a live bearer token and stores
// the caller in the request context.
func AuthMiddleware(creds services.CredentialStore, rnd *render.Render) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				helpers.RenderError(rnd, w, r, apperr.Unauthenticated())
				return
			}

			user, tokenID, err := creds.Authenticate(r.Context(), token)
			if err != nil {
				helpers.RenderError(rnd, w, r, err)
				return
			}

			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Uint("user_id", user.ID)
			})
			next.ServeHTTP(w, r.WithContext(helpers.WithUser(r.Context(), user, tokenID)))
		})
	}
}

// OptionalAuthMiddleware resolves the caller when a valid token is present
// and otherwise lets the request through anonymously.
func OptionalAuthMiddleware(creds services.CredentialStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, tokenID, err := creds.Authenticate(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(helpers.WithUser(r.Context(), user, tokenID)))
		})
	}
}
