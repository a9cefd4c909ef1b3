package helpers

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/Rakhulsr/techstore-api/app/models"
	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

type contextKey string

const (
	ContextKeyUser    contextKey = "userObject"
	ContextKeyTokenID contextKey = "tokenID"
)

func WithUser(ctx context.Context, user *models.User, tokenID uint) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUser, user)
	return context.WithValue(ctx, ContextKeyTokenID, tokenID)
}

func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(ContextKeyUser).(*models.User)
	return user, ok && user != nil
}

func TokenIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(ContextKeyTokenID).(uint)
	return id, ok && id != 0
}

// NewValidator reports fields by their json name and knows the "money" tag
// (a decimal string >= 0).
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsNegative()
	})
	return v
}

func FormatValidationErrors(errs validator.ValidationErrors) map[string][]string {
	errorMessages := make(map[string][]string)
	for _, err := range errs {
		field := err.Field()
		label := strings.ReplaceAll(field, "_", " ")
		var msg string
		switch err.Tag() {
		case "required":
			msg = fmt.Sprintf("The %s field is required.", label)
		case "email":
			msg = fmt.Sprintf("The %s field must be a valid email address.", label)
		case "number", "numeric":
			msg = fmt.Sprintf("The %s field must be an integer greater than or equal to 0.", label)
		case "money":
			msg = fmt.Sprintf("The %s field must be a number greater than or equal to 0.", label)
		case "boolean":
			msg = fmt.Sprintf("The %s field must be true or false.", label)
		case "min":
			msg = fmt.Sprintf("The %s field must be at least %s characters.", label, err.Param())
		case "max":
			msg = fmt.Sprintf("The %s field must not be greater than %s characters.", label, err.Param())
		case "eqfield":
			msg = fmt.Sprintf("The %s field confirmation does not match.", label)
		case "oneof":
			msg = fmt.Sprintf("The selected %s is invalid.", label)
		default:
			msg = fmt.Sprintf("The %s field is invalid (%s).", label, err.Tag())
		}
		errorMessages[field] = append(errorMessages[field], msg)
	}
	return errorMessages
}

// GenerateSlug transliterates accents ("Réseau" -> "reseau").
func GenerateSlug(s string) string {
	return slug.Make(s)
}
