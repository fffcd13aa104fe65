package model

import "time"

// User is the account summary returned by the auth endpoints.
type User struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role,omitempty"`
}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	RePassword string `json:"rePassword"`
	Phone      string `json:"phone"`
}

// SigninRequest is the body of POST /auth/signin.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by signup and signin.
type AuthResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
	Token   string `json:"token"`
}

// ForgotPasswordRequest is the body of POST /auth/forgotPasswords.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// VerifyResetCodeRequest is the body of POST /auth/verifyResetCode.
type VerifyResetCodeRequest struct {
	ResetCode string `json:"resetCode"`
}

// ResetPasswordRequest is the body of PUT /auth/resetPassword.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

// StatusResponse is the generic {statusMsg, message} body of the password
// reset steps.
type StatusResponse struct {
	Status    string `json:"status,omitempty"`
	StatusMsg string `json:"statusMsg,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ResetPasswordResponse carries the fresh token issued after a reset.
type ResetPasswordResponse struct {
	Token string `json:"token"`
}

// Address is a saved shipping address.
type Address struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Details string `json:"details"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
}

// AddressRequest is the body of POST/PUT /addresses.
type AddressRequest struct {
	Name    string `json:"name"`
	Details string `json:"details"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
}

// AddressesResponse is the body of every /addresses call.
type AddressesResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	Results int       `json:"results,omitempty"`
	Data    []Address `json:"data"`
}

// ShippingAddress is the address snapshot attached to an order.
type ShippingAddress struct {
	Details string `json:"details"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
}

// OrderCartItem is one ordered line.
type OrderCartItem struct {
	ID      string     `json:"_id"`
	Count   int        `json:"count"`
	Price   Money      `json:"price"`
	Product ProductRef `json:"product"`
}

// Order is a placed order.
type Order struct {
	ID                string           `json:"_id"`
	Status            string           `json:"status,omitempty"`
	TotalOrderPrice   Money            `json:"totalOrderPrice"`
	PaymentMethodType string           `json:"paymentMethodType"`
	IsPaid            bool             `json:"isPaid"`
	IsDelivered       bool             `json:"isDelivered"`
	TaxPrice          Money            `json:"taxPrice"`
	ShippingPrice     Money            `json:"shippingPrice"`
	ShippingAddress   *ShippingAddress `json:"shippingAddress,omitempty"`
	CartItems         []OrderCartItem  `json:"cartItems"`
	User              *User            `json:"user,omitempty"`
	CreatedAt         time.Time        `json:"createdAt,omitzero"`
}

// CashOrderRequest is the body of POST /orders/{cartId}.
type CashOrderRequest struct {
	ShippingAddress string `json:"shippingAddress"`
}

// CheckoutSessionRequest is the body of POST /orders/checkout-session/{cartId}.
type CheckoutSessionRequest struct {
	ShippingAddress ShippingAddress `json:"shippingAddress"`
}

// OrderResponse wraps a created cash order.
type OrderResponse struct {
	Status string `json:"status"`
	Data   Order  `json:"data"`
}

// CheckoutSession is the hosted-payment redirect returned for card orders.
type CheckoutSession struct {
	Status  string `json:"status"`
	Session struct {
		ID  string `json:"id,omitempty"`
		URL string `json:"url"`
	} `json:"session"`
}
