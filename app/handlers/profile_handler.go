package handlers

import (
	"net/http"

	"github.com/Rakhulsr/techstore-api/app/helpers"
	"github.com/Rakhulsr/techstore-api/app/resources"
	"github.com/Rakhulsr/techstore-api/app/services"
	"github.com/Rakhulsr/techstore-api/app/utils/storage"
	"github.com/go-playground/validator/v10"
	"github.com/unrolled/render"
)

type ProfileHandler struct {
	render    *render.Render
	accounts  *services.AccountService
	orders    *services.OrderService
	files     storage.Storage
	validator *validator.Validate
}

func NewProfileHandler(r *render.Render, accounts *services.AccountService, orders *services.OrderService, files storage.Storage, validator *validator.Validate) *ProfileHandler {
	return &ProfileHandler{
		render:    r,
		accounts:  accounts,
		orders:    orders,
		files:     files,
		validator: validator,
	}
}

type profileRequest struct {
	Name  *string `json:"name" validate:"required,max=255"`
	Email *string `json:"email" validate:"required,email,max=255"`
}

type passwordRequest struct {
	CurrentPassword      *string `json:"current_password" validate:"required"`
	Password             *string `json:"password" validate:"required,min=8"`
	PasswordConfirmation *string `json:"password_confirmation"`
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, err := currentUser(r)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	var req profileRequest
	if _, err := helpers.ParseRequest(r, h.validator, &req); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	user, err := h.accounts.UpdateProfile(r.Context(), caller.ID, req.Name, req.Email)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated.",
		"user":    resources.NewUser(user),
	})
}

func (h *ProfileHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	caller, err := currentUser(r)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	var req passwordRequest
	if _, err := helpers.ParseRequest(r, h.validator, &req); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	err = h.accounts.UpdatePassword(r.Context(), caller.ID, deref(req.CurrentPassword), deref(req.Password), deref(req.PasswordConfirmation))
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	helpers.RenderMessage(h.render, w, http.StatusOK, "Password updated.")
}

// Orders lists the caller's own orders.
func (h *ProfileHandler) Orders(w http.ResponseWriter, r *http.Request) {
	caller, err := currentUser(r)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	orders, err := h.orders.ListUserOrders(r.Context(), caller.ID)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]any{"data": resources.NewOrders(orders, h.files)})
}
