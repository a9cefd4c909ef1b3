package handlers

import (
	"net/http"

	"github.com/Rakhulsr/techstore-api/app/helpers"
	"github.com/Rakhulsr/techstore-api/app/models"
	"github.com/Rakhulsr/techstore-api/app/resources"
	"github.com/Rakhulsr/techstore-api/app/services"
	"github.com/Rakhulsr/techstore-api/app/utils/apperr"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/hlog"
	"github.com/unrolled/render"
)

type AuthHandler struct {
	render    *render.Render
	accounts  *services.AccountService
	validator *validator.Validate
}

func NewAuthHandler(r *render.Render, accounts *services.AccountService, validator *validator.Validate) *AuthHandler {
	return &AuthHandler{
		render:    r,
		accounts:  accounts,
		validator: validator,
	}
}

type registerRequest struct {
	Name                 *string `json:"name" validate:"required,max=255"`
	Email                *string `json:"email" validate:"required,email,max=255"`
	Password             *string `json:"password" validate:"required,min=8"`
	PasswordConfirmation *string `json:"password_confirmation"`
}

type loginRequest struct {
	Email    *string `json:"email" validate:"required,email"`
	Password *string `json:"password" validate:"required"`
}

type authResponse struct {
	Message   string         `json:"message"`
	User      resources.User `json:"user"`
	Token     string         `json:"token"`
	TokenType string         `json:"token_type"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// currentUser is only nil when a route forgot the auth middleware.
func currentUser(r *http.Request) (*models.User, error) {
	user, ok := helpers.UserFromContext(r.Context())
	if !ok {
		return nil, apperr.Unauthenticated()
	}
	return user, nil
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if _, err := helpers.ParseRequest(r, h.validator, &req); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	user, token, err := h.accounts.Register(r.Context(), services.RegisterInput{
		Name:                 deref(req.Name),
		Email:                deref(req.Email),
		Password:             deref(req.Password),
		PasswordConfirmation: deref(req.PasswordConfirmation),
	})
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	_ = h.render.JSON(w, http.StatusCreated, authResponse{
		Message:   "User registered.",
		User:      resources.NewUser(user),
		Token:     token,
		TokenType: "Bearer",
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if _, err := helpers.ParseRequest(r, h.validator, &req); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}

	user, token, err := h.accounts.Login(r.Context(), deref(req.Email), deref(req.Password))
	if err != nil {
		if apperr.Is(err, apperr.KindInvalidCredentials) {
			hlog.FromRequest(r).Info().Str("email", deref(req.Email)).Msg("failed login attempt")
		}
		helpers.RenderError(h.render, w, r, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, authResponse{
		Message:   "Logged in.",
		User:      resources.NewUser(user),
		Token:     token,
		TokenType: "Bearer",
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := helpers.TokenIDFromContext(r.Context())
	if !ok {
		helpers.RenderError(h.render, w, r, apperr.Unauthenticated())
		return
	}
	if err := h.accounts.Logout(r.Context(), tokenID); err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	helpers.RenderMessage(h.render, w, http.StatusOK, "Logged out.")
}

func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	caller, err := currentUser(r)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	user, err := h.accounts.Me(r.Context(), caller.ID)
	if err != nil {
		helpers.RenderError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]any{"user": resources.NewUser(user)})
}
