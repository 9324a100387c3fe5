package model

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// SignupForm is the account-creation input posted to the signup endpoint.
type SignupForm struct {
	Email    string `json:"email" validate:"email"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"min=8"`
}

// Signup validation messages, keyed by struct field name.
var signupMessages = map[string]string{
	"Email":    "Invalid email",
	"Username": "Username is required",
	"Password": "Password must be at least 8 characters",
}

// ValidationError describes the first schema violation found in a form.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the form against the signup schema. Only the first
// violation, in field order, is returned.
func (f SignupForm) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validating signup form: %w", err)
	}

	first := fieldErrs[0]
	msg, ok := signupMessages[first.StructField()]
	if !ok {
		msg = fmt.Sprintf("%s is invalid", first.Field())
	}
	return &ValidationError{Field: first.StructField(), Message: msg}
}
