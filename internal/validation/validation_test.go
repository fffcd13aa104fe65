package validation

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/model"
)

func validRegister() RegisterForm {
	return RegisterForm{
		FirstName:  "Mona",
		LastName:   "Adel",
		Email:      "mona@example.com",
		Password:   "Secret1!x",
		RePassword: "Secret1!x",
		Phone:      "01012345678",
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func TestRegisterForm_Valid(t *testing.T) {
	f := validRegister()
	require.NoError(t, Validate(f))

	req := f.Request()
	assert.Equal(t, "Mona Adel", req.Name)
	assert.Equal(t, "01012345678", req.Phone)
}

func TestRegisterForm_Rules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterForm)
		field  string
		msg    string
	}{
		{"short first name", func(f *RegisterForm) { f.FirstName = "Al" }, "firstName", "must be at least 3 characters"},
		{"bad email", func(f *RegisterForm) { f.Email = "mona" }, "email", "Invalid email address"},
		{"weak password", func(f *RegisterForm) { f.Password, f.RePassword = "secret12", "secret12" }, "password", msgWeakPassword},
		{"mismatch", func(f *RegisterForm) { f.RePassword = "Secret1!y" }, "rePassword", "Passwords do not match"},
		{"phone prefix", func(f *RegisterForm) { f.Phone = "02012345678" }, "phone", "Invalid Egyptian phone number"},
		{"phone length", func(f *RegisterForm) { f.Phone = "0101234567" }, "phone", "Invalid Egyptian phone number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validRegister()
			tt.mutate(&f)
			fields := fieldErrors(t, Validate(f))
			assert.Equal(t, tt.msg, fields[tt.field])
		})
	}
}

const msgWeakPassword = "Password must include uppercase, lowercase, number, symbol and be at least 8 characters."

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		pw   string
		want bool
	}{
		{"Secret1!", true},
		{"Aa1@aaaa", true},
		{"Secret1", false},   // too short
		{"secret1!", false},  // no upper
		{"SECRET1!", false},  // no lower
		{"Secretx!", false},  // no digit
		{"Secret12", false},  // no symbol
		{"Secret1!#", false}, // symbol outside the allowed set
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StrongPassword(tt.pw), "StrongPassword(%q)", tt.pw)
	}
}

func TestLoginForm(t *testing.T) {
	assert.NoError(t, Validate(LoginForm{Email: "a@b.co", Password: "123456"}))

	fields := fieldErrors(t, Validate(LoginForm{Email: "", Password: "123"}))
	assert.Equal(t, "is required", fields["email"])
	assert.Equal(t, "must be at least 6 characters", fields["password"])
}

func TestAddressForms(t *testing.T) {
	addr := AddressForm{Name: "Home", Details: "12 Nile St", Phone: "01112345678", City: "Cairo"}
	require.NoError(t, Validate(addr))
	assert.Equal(t, model.AddressRequest{Name: "Home", Details: "12 Nile St", Phone: "01112345678", City: "Cairo"}, addr.Request())

	fields := fieldErrors(t, Validate(CheckoutAddressForm{Details: "12", Phone: "01112345678", City: "C"}))
	assert.Contains(t, fields, "details")
	assert.Contains(t, fields, "city")
	assert.NotContains(t, fields, "phone")
}

func TestPasswordResetForms(t *testing.T) {
	assert.NoError(t, Validate(ForgotPasswordForm{Email: "a@b.co"}))
	assert.NoError(t, Validate(ResetCodeForm{ResetCode: "123456"}))

	for _, code := range []string{"12345", "1234567", "12a456", ""} {
		fields := fieldErrors(t, Validate(ResetCodeForm{ResetCode: code}))
		assert.Equal(t, "Code must be 6 digits", fields["resetCode"], "code %q", code)
	}

	np := NewPasswordForm{Email: "a@b.co", NewPassword: "Secret1!", ConfirmPassword: "Secret1?"}
	fields := fieldErrors(t, Validate(np))
	assert.Equal(t, "Passwords do not match", fields["confirmPassword"])
}

func TestDecodeAndValidate(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.co","password":"123456"}`))
	var f LoginForm
	require.NoError(t, DecodeAndValidate(r, &f))
	assert.Equal(t, "a@b.co", f.Email)

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{bad`))
	err := DecodeAndValidate(r, &f)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidRequest))

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"nope","password":"123456"}`))
	err = DecodeAndValidate(r, &LoginForm{})
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, "Invalid email address", apiErr.Message)
}
