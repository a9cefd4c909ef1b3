package admin

import (
	"net/http"

	"github.com/Rakhulsr/techstore-api/app/helpers"
	"github.com/Rakhulsr/techstore-api/app/services"
	"github.com/Rakhulsr/techstore-api/app/utils/storage"
	"github.com/go-playground/validator/v10"
	"github.com/unrolled/render"
)

type AdminHandler struct {
	render    *render.Render
	validator *validator.Validate
	admin     *services.AdminService
	orders    *services.OrderService
	files     storage.Storage
}

func NewAdminHandler(
	render *render.Render,
	validator *validator.Validate,
	admin *services.AdminService,
	orders *services.OrderService,
	files storage.Storage,
) *AdminHandler {
	return &AdminHandler{
		render:    render,
		validator: validator,
		admin:     admin,
		orders:    orders,
		files:     files,
	}
}

type statsResponse struct {
	TotalUsers    *int64  `json:"total_users,omitempty"`
	TotalProducts *int64  `json:"total_products,omitempty"`
	TotalOrders   int64   `json:"total_orders"`
	TotalRevenue  float64 `json:"total_revenue"`
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Stats(r.Context())
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, statsResponse{
		TotalUsers:    stats.TotalUsers,
		TotalProducts: stats.TotalProducts,
		TotalOrders:   stats.TotalOrders,
		TotalRevenue:  stats.TotalRevenue.InexactFloat64(),
	})
}
