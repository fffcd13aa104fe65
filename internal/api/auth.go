package api

import (
	"context"
	"net/http"

	"shopfront/internal/model"
)

// Signup registers an account and returns its first token.
func (c *Client) Signup(ctx context.Context, req model.SignupRequest) (*model.AuthResponse, error) {
	var out model.AuthResponse
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/signup",
		body:     req,
		resource: "auth",
		fallback: "Registration failed",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Signin exchanges credentials for a token.
func (c *Client) Signin(ctx context.Context, req model.SigninRequest) (*model.AuthResponse, error) {
	var out model.AuthResponse
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/signin",
		body:     req,
		resource: "auth",
		fallback: "Invalid email or password",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword mails a reset code to email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*model.StatusResponse, error) {
	var out model.StatusResponse
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/forgotPasswords",
		body:     model.ForgotPasswordRequest{Email: email},
		resource: "auth",
		fallback: "Failed to send reset code",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyResetCode checks the mailed reset code.
func (c *Client) VerifyResetCode(ctx context.Context, code string) (*model.StatusResponse, error) {
	var out model.StatusResponse
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/verifyResetCode",
		body:     model.VerifyResetCodeRequest{ResetCode: code},
		resource: "auth",
		fallback: "Invalid or expired code",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword sets a new password after a verified code and returns a
// fresh token.
func (c *Client) ResetPassword(ctx context.Context, email, newPassword string) (*model.ResetPasswordResponse, error) {
	var out model.ResetPasswordResponse
	err := c.do(ctx, call{
		method:   http.MethodPut,
		path:     "/auth/resetPassword",
		body:     model.ResetPasswordRequest{Email: email, NewPassword: newPassword},
		resource: "auth",
		fallback: "Failed to reset password",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
