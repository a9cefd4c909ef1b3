package handlers

import (
	"net/http"

	"github.com/rs/zerolog/hlog"
	"github.com/unrolled/render"
	"gorm.io/gorm"
)

type HomeHandler struct {
	render *render.Render
	db     *gorm.DB
}

func NewHomeHandler(r *render.Render, db *gorm.DB) *HomeHandler {
	return &HomeHandler{
		render: r,
		db:     db,
	}
}

// Health reports whether the database answers.
func (h *HomeHandler) Health(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("health check failed")
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	_ = h.render.JSON(w, code, map[string]string{"status": status})
}
