package helpers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Rakhulsr/techstore-api/app/utils/apperr"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/hlog"
	"github.com/unrolled/render"
)

// RenderError writes err as {message, errors?}. Anything that is not an
// *apperr.Error is logged and hidden behind a generic 500.
func RenderError(rnd *render.Render, w http.ResponseWriter, r *http.Request, err error) {
	if e, ok := apperr.As(err); ok {
		body := map[string]any{"message": e.Message}
		if len(e.Errors) > 0 {
			body["errors"] = e.Errors
		}
		_ = rnd.JSON(w, e.Status, body)
		return
	}

	hlog.FromRequest(r).Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	_ = rnd.JSON(w, http.StatusInternalServerError, map[string]string{"message": "Server Error"})
}

func RenderMessage(rnd *render.Render, w http.ResponseWriter, status int, msg string) {
	_ = rnd.JSON(w, status, map[string]string{"message": msg})
}

// Validate runs struct validation and converts failures to a 422.
func Validate(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperr.Validation(FormatValidationErrors(verrs))
	}
	return err
}

// PathID reads a numeric route variable. Malformed ids are reported as not
// found, like a missing row.
func PathID(r *http.Request, key, notFound string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[key], 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound(notFound)
	}
	return uint(id), nil
}

// ParseRequest reads the body into dst (a struct of *string fields tagged
// with json names) and validates it.
func ParseRequest(r *http.Request, v *validator.Validate, dst any) (*Input, error) {
	in, err := ParseInput(r)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, apperr.PayloadTooLarge()
	}
	if err != nil {
		return nil, apperr.FieldError("body", "The request body could not be parsed.")
	}
	in.Bind(dst)
	if err := Validate(v, dst); err != nil {
		return nil, err
	}
	return in, nil
}
