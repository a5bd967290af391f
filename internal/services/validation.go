package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/DeepakPatel004/CivicDesk/internal/apperr"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs struct-tag validation and converts the first failure
// into a user-facing validation error.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("Invalid request.")
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return apperr.Validation(fmt.Sprintf("Missing required field: %s.", field))
	case "email":
		return apperr.Validation("A valid email address is required.")
	case "min":
		return apperr.Validation(fmt.Sprintf("Field %s must be at least %s characters.", field, fe.Param()))
	case "max":
		return apperr.Validation(fmt.Sprintf("Field %s must be at most %s characters.", field, fe.Param()))
	case "len", "numeric":
		return apperr.Validation(fmt.Sprintf("Field %s is malformed.", field))
	}
	return apperr.Validation(fmt.Sprintf("Field %s is invalid.", field))
}

// normalizeEmail case-folds an address for storage and lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
