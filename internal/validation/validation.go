// Package validation checks storefront form input before it reaches the
// remote API. Rules mirror what the storefront UI enforces; the remote API
// validates again on its side.
package validation

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"shopfront/internal/model"
)

var (
	egyptianPhone = regexp.MustCompile(`^01[0-9]{9}$`)
	resetCode     = regexp.MustCompile(`^\d{6}$`)
	passwordChars = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{8,}$`)
)

const passwordSymbols = "@$!%*?&"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	mustRegister(v, "egphone", func(fl validator.FieldLevel) bool {
		return egyptianPhone.MatchString(fl.Field().String())
	})
	mustRegister(v, "resetcode", func(fl validator.FieldLevel) bool {
		return resetCode.MatchString(fl.Field().String())
	})
	mustRegister(v, "strongpw", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// StrongPassword reports whether pw has at least 8 characters drawn from
// letters, digits and @$!%*?&, including at least one of each class.
func StrongPassword(pw string) bool {
	if !passwordChars.MatchString(pw) {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

// Validate validates a struct using go-playground/validator tags.
func Validate(s any) error {
	if err := validate.Struct(s); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return &ValidationError{Errors: validationErrors}
		}
		return err
	}
	return nil
}

// ValidationError wraps validator.ValidationErrors with user-facing messages.
type ValidationError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, err := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", err.Field(), msgForTag(err)))
	}
	return strings.Join(msgs, "; ")
}

// Fields returns a map of field names to error messages.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errors))
	for _, err := range e.Errors {
		fields[err.Field()] = msgForTag(err)
	}
	return fields
}

// APIError converts e into the storefront error type, using the first
// field message as the user-facing text. e stays in the error chain.
func (e *ValidationError) APIError() *model.APIError {
	msg := "Invalid input"
	if len(e.Errors) > 0 {
		msg = msgForTag(e.Errors[0])
	}
	apiErr := model.NewValidationError(msg)
	apiErr.Err = fmt.Errorf("%w: %w", model.ErrInvalidRequest, e)
	return apiErr
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "Invalid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "egphone":
		return "Invalid Egyptian phone number"
	case "resetcode":
		return "Code must be 6 digits"
	case "strongpw":
		return "Password must include uppercase, lowercase, number, symbol and be at least 8 characters."
	case "eqfield":
		return "Passwords do not match"
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}

// DecodeAndValidate reads JSON from the request body, decodes it into dst,
// and validates it. Decode failures and rule violations both come back as
// a *model.APIError with status 400.
func DecodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewValidationError("Invalid request body")
	}
	if err := Validate(dst); err != nil {
		if ve, ok := err.(*ValidationError); ok {
			return ve.APIError()
		}
		return err
	}
	return nil
}
