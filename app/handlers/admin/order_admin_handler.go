package admin

import (
	"net/http"

	"github.com/Rakhulsr/techstore-api/app/helpers"
	"github.com/Rakhulsr/techstore-api/app/resources"
)

type orderStatusRequest struct {
	Status *string `json:"status" validate:"required,max=50"`
}

// ListOrders accepts an optional exact ?status= filter.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]any{"data": resources.NewOrders(orders, h.files)})
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id", "Order not found.")
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	var req orderStatusRequest
	if _, err := helpers.ParseRequest(r, h.validator, &req); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), id, *req.Status)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]any{
		"message": "Order status updated.",
		"order":   resources.NewOrder(order, h.files),
	})
}
