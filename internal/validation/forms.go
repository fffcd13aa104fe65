package validation

import (
	"strings"

	"shopfront/internal/model"
)

// RegisterForm is the sign-up form.
type RegisterForm struct {
	FirstName  string `json:"firstName" validate:"required,min=3"`
	LastName   string `json:"lastName" validate:"required,min=3"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"strongpw"`
	RePassword string `json:"rePassword" validate:"eqfield=Password"`
	Phone      string `json:"phone" validate:"egphone"`
}

// Request builds the signup body. The API takes a single display name.
func (f RegisterForm) Request() model.SignupRequest {
	return model.SignupRequest{
		Name:       strings.TrimSpace(f.FirstName) + " " + strings.TrimSpace(f.LastName),
		Email:      f.Email,
		Password:   f.Password,
		RePassword: f.RePassword,
		Phone:      f.Phone,
	}
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (f LoginForm) Request() model.SigninRequest {
	return model.SigninRequest{Email: f.Email, Password: f.Password}
}

// AddressForm is a saved address.
type AddressForm struct {
	Name    string `json:"name" validate:"required,min=2"`
	Details string `json:"details" validate:"required,min=5"`
	Phone   string `json:"phone" validate:"egphone"`
	City    string `json:"city" validate:"required,min=2"`
}

func (f AddressForm) Request() model.AddressRequest {
	return model.AddressRequest{Name: f.Name, Details: f.Details, Phone: f.Phone, City: f.City}
}

// CheckoutAddressForm is the shipping address entered at card checkout.
type CheckoutAddressForm struct {
	Details string `json:"details" validate:"required,min=5"`
	Phone   string `json:"phone" validate:"egphone"`
	City    string `json:"city" validate:"required,min=2"`
}

func (f CheckoutAddressForm) Address() model.ShippingAddress {
	return model.ShippingAddress{Details: f.Details, Phone: f.Phone, City: f.City}
}

// ForgotPasswordForm is step one of password reset.
type ForgotPasswordForm struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetCodeForm is step two of password reset.
type ResetCodeForm struct {
	ResetCode string `json:"resetCode" validate:"resetcode"`
}

// NewPasswordForm is step three of password reset.
type NewPasswordForm struct {
	Email           string `json:"email" validate:"required,email"`
	NewPassword     string `json:"newPassword" validate:"strongpw"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=NewPassword"`
}
