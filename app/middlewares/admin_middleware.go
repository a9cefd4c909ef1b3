package middlewares

import (
	"net/http"

	"github.com/Rakhulsr/techstore-api/app/helpers"
	"github.com/Rakhulsr/techstore-api/app/utils/apperr"
	"github.com/rs/zerolog/hlog"
	"github.com/unrolled/render"
)

// AdminMiddleware must run after AuthMiddleware. Access is granted on the
// is_admin flag, not on role.
func AdminMiddleware(rnd *render.Render) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := helpers.UserFromContext(r.Context())
			if !ok {
				helpers.RenderError(rnd, w, r, apperr.Unauthenticated())
				return
			}
			if !user.IsAdmin {
				hlog.FromRequest(r).Warn().Uint("user_id", user.ID).Str("path", r.URL.Path).Msg("non-admin tried to reach an admin route")
				helpers.RenderError(rnd, w, r, apperr.Forbidden("Access reserved for administrators."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
