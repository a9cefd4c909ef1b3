package admin

import (
	"net/http"

	"github.com/Rakhulsr/techstore-api/app/helpers"
	"github.com/Rakhulsr/techstore-api/app/resources"
	"github.com/Rakhulsr/techstore-api/app/services"
	"github.com/Rakhulsr/techstore-api/app/utils/apperr"
)

type createUserRequest struct {
	Name                 *string `json:"name" validate:"required,max=255"`
	Email                *string `json:"email" validate:"required,email,max=255"`
	Password             *string `json:"password" validate:"required,min=8"`
	PasswordConfirmation *string `json:"password_confirmation"`
	Role                 *string `json:"role" validate:"omitnil,oneof=client admin"`
	IsAdmin              *string `json:"is_admin" validate:"omitnil,boolean"`
}

type updateUserRequest struct {
	Name    *string `json:"name" validate:"omitnil,max=255"`
	Email   *string `json:"email" validate:"omitnil,email,max=255"`
	Role    *string `json:"role" validate:"omitnil,oneof=client admin"`
	IsAdmin *string `json:"is_admin" validate:"omitnil,boolean"`
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parseIsAdmin(s *string) (*bool, error) {
	if s == nil {
		return nil, nil
	}
	b, err := helpers.ParseBool(*s)
	if err != nil {
		return nil, apperr.FieldError("is_admin", "The is admin field must be true or false.")
	}
	return &b, nil
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]any{"data": resources.NewUsers(users)})
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if _, err := helpers.ParseRequest(r, h.validator, &req); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	isAdmin, err := parseIsAdmin(req.IsAdmin)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	input := services.CreateUserInput{
		Name:                 value(req.Name),
		Email:                value(req.Email),
		Password:             value(req.Password),
		PasswordConfirmation: value(req.PasswordConfirmation),
		Role:                 value(req.Role),
	}
	if isAdmin != nil {
		input.IsAdmin = *isAdmin
	}

	user, err := h.admin.CreateUser(r.Context(), input)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, map[string]any{
		"message": "User created.",
		"user":    resources.NewUserWithTimestamp(user),
	})
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id", "User not found.")
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	var req updateUserRequest
	if _, err := helpers.ParseRequest(r, h.validator, &req); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	isAdmin, err := parseIsAdmin(req.IsAdmin)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	user, err := h.admin.UpdateUser(r.Context(), id, services.UserPatch{
		Name:    req.Name,
		Email:   req.Email,
		Role:    req.Role,
		IsAdmin: isAdmin,
	})
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]any{
		"message": "User updated.",
		"user":    resources.NewUserWithTimestamp(user),
	})
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := helpers.UserFromContext(r.Context())
	if !ok {
		helpers.RenderError(h.render, w, r, apperr.Unauthenticated())
		return
	}
	id, err := helpers.PathID(r, "id", "User not found.")
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	if err := h.admin.DeleteUser(r.Context(), caller.ID, id); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	helpers.RenderMessage(h.render, w, http.StatusOK, "User deleted.")
}

func (h *AdminHandler) UserOrders(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id", "User not found.")
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	orders, err := h.admin.UserOrders(r.Context(), id)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]any{"data": resources.NewOrders(orders, h.files)})
}
