package backend

import (
	"context"
	"fmt"

	"shopfront/internal/model"
)

// Mock implements Backend for testing.
// Each method can be configured via function fields; unconfigured reads
// return empty results and unconfigured writes return an error.
type Mock struct {
	ProductsFunc              func(ctx context.Context, f model.ProductFilters) (*model.ListResponse[model.Product], error)
	ProductFunc               func(ctx context.Context, id string) (*model.Product, error)
	CategoriesFunc            func(ctx context.Context) (*model.ListResponse[model.Category], error)
	CategoryFunc              func(ctx context.Context, id string) (*model.Category, error)
	CategorySubcategoriesFunc func(ctx context.Context, categoryID string) (*model.ListResponse[model.Subcategory], error)
	SubcategoriesFunc         func(ctx context.Context) (*model.ListResponse[model.Subcategory], error)
	SubcategoryFunc           func(ctx context.Context, id string) (*model.Subcategory, error)
	BrandsFunc                func(ctx context.Context) (*model.ListResponse[model.Brand], error)
	BrandFunc                 func(ctx context.Context, id string) (*model.Brand, error)

	GetCartFunc        func(ctx context.Context, token string) (*model.CartResponse, error)
	AddToCartFunc      func(ctx context.Context, token, productID string) (*model.CartResponse, error)
	UpdateCartItemFunc func(ctx context.Context, token, productID string, count int) (*model.CartResponse, error)
	RemoveCartItemFunc func(ctx context.Context, token, productID string) (*model.CartResponse, error)
	ClearCartFunc      func(ctx context.Context, token string) error

	GetWishlistFunc        func(ctx context.Context, token string) (*model.WishlistResponse, error)
	AddToWishlistFunc      func(ctx context.Context, token, productID string) (*model.WishlistChangeResponse, error)
	RemoveFromWishlistFunc func(ctx context.Context, token, productID string) (*model.WishlistChangeResponse, error)

	AddressesFunc             func(ctx context.Context, token string) ([]model.Address, error)
	AddAddressFunc            func(ctx context.Context, token string, req model.AddressRequest) ([]model.Address, error)
	UpdateAddressFunc         func(ctx context.Context, token, id string, req model.AddressRequest) ([]model.Address, error)
	RemoveAddressFunc         func(ctx context.Context, token, id string) ([]model.Address, error)
	UserOrdersFunc            func(ctx context.Context, token, userID string) ([]model.Order, error)
	CreateCashOrderFunc       func(ctx context.Context, token, cartID, addressID string) (*model.Order, error)
	CreateCheckoutSessionFunc func(ctx context.Context, token, cartID, returnURL string, addr model.ShippingAddress) (*model.CheckoutSession, error)

	SignupFunc          func(ctx context.Context, req model.SignupRequest) (*model.AuthResponse, error)
	SigninFunc          func(ctx context.Context, req model.SigninRequest) (*model.AuthResponse, error)
	ForgotPasswordFunc  func(ctx context.Context, email string) (*model.StatusResponse, error)
	VerifyResetCodeFunc func(ctx context.Context, code string) (*model.StatusResponse, error)
	ResetPasswordFunc   func(ctx context.Context, email, newPassword string) (*model.ResetPasswordResponse, error)
}

var _ Backend = (*Mock)(nil)

func notConfigured(method string) error {
	return model.NewInternalError(fmt.Errorf("mock: %s not configured", method))
}

func (m *Mock) Products(ctx context.Context, f model.ProductFilters) (*model.ListResponse[model.Product], error) {
	if m.ProductsFunc != nil {
		return m.ProductsFunc(ctx, f)
	}
	return &model.ListResponse[model.Product]{Data: []model.Product{}}, nil
}

func (m *Mock) Product(ctx context.Context, id string) (*model.Product, error) {
	if m.ProductFunc != nil {
		return m.ProductFunc(ctx, id)
	}
	return nil, model.NewNotFoundError("Product not found")
}

func (m *Mock) Categories(ctx context.Context) (*model.ListResponse[model.Category], error) {
	if m.CategoriesFunc != nil {
		return m.CategoriesFunc(ctx)
	}
	return &model.ListResponse[model.Category]{Data: []model.Category{}}, nil
}

func (m *Mock) Category(ctx context.Context, id string) (*model.Category, error) {
	if m.CategoryFunc != nil {
		return m.CategoryFunc(ctx, id)
	}
	return nil, model.NewNotFoundError("Category not found")
}

func (m *Mock) CategorySubcategories(ctx context.Context, categoryID string) (*model.ListResponse[model.Subcategory], error) {
	if m.CategorySubcategoriesFunc != nil {
		return m.CategorySubcategoriesFunc(ctx, categoryID)
	}
	return &model.ListResponse[model.Subcategory]{Data: []model.Subcategory{}}, nil
}

func (m *Mock) Subcategories(ctx context.Context) (*model.ListResponse[model.Subcategory], error) {
	if m.SubcategoriesFunc != nil {
		return m.SubcategoriesFunc(ctx)
	}
	return &model.ListResponse[model.Subcategory]{Data: []model.Subcategory{}}, nil
}

func (m *Mock) Subcategory(ctx context.Context, id string) (*model.Subcategory, error) {
	if m.SubcategoryFunc != nil {
		return m.SubcategoryFunc(ctx, id)
	}
	return nil, model.NewNotFoundError("Subcategory not found")
}

func (m *Mock) Brands(ctx context.Context) (*model.ListResponse[model.Brand], error) {
	if m.BrandsFunc != nil {
		return m.BrandsFunc(ctx)
	}
	return &model.ListResponse[model.Brand]{Data: []model.Brand{}}, nil
}

func (m *Mock) Brand(ctx context.Context, id string) (*model.Brand, error) {
	if m.BrandFunc != nil {
		return m.BrandFunc(ctx, id)
	}
	return nil, model.NewNotFoundError("Brand not found")
}

func (m *Mock) GetCart(ctx context.Context, token string) (*model.CartResponse, error) {
	if m.GetCartFunc != nil {
		return m.GetCartFunc(ctx, token)
	}
	return &model.CartResponse{Status: "success"}, nil
}

func (m *Mock) AddToCart(ctx context.Context, token, productID string) (*model.CartResponse, error) {
	if m.AddToCartFunc != nil {
		return m.AddToCartFunc(ctx, token, productID)
	}
	return nil, notConfigured("AddToCart")
}

func (m *Mock) UpdateCartItem(ctx context.Context, token, productID string, count int) (*model.CartResponse, error) {
	if m.UpdateCartItemFunc != nil {
		return m.UpdateCartItemFunc(ctx, token, productID, count)
	}
	return nil, notConfigured("UpdateCartItem")
}

func (m *Mock) RemoveCartItem(ctx context.Context, token, productID string) (*model.CartResponse, error) {
	if m.RemoveCartItemFunc != nil {
		return m.RemoveCartItemFunc(ctx, token, productID)
	}
	return nil, notConfigured("RemoveCartItem")
}

func (m *Mock) ClearCart(ctx context.Context, token string) error {
	if m.ClearCartFunc != nil {
		return m.ClearCartFunc(ctx, token)
	}
	return notConfigured("ClearCart")
}

func (m *Mock) GetWishlist(ctx context.Context, token string) (*model.WishlistResponse, error) {
	if m.GetWishlistFunc != nil {
		return m.GetWishlistFunc(ctx, token)
	}
	return &model.WishlistResponse{Status: "success", Data: []model.Product{}}, nil
}

func (m *Mock) AddToWishlist(ctx context.Context, token, productID string) (*model.WishlistChangeResponse, error) {
	if m.AddToWishlistFunc != nil {
		return m.AddToWishlistFunc(ctx, token, productID)
	}
	return nil, notConfigured("AddToWishlist")
}

func (m *Mock) RemoveFromWishlist(ctx context.Context, token, productID string) (*model.WishlistChangeResponse, error) {
	if m.RemoveFromWishlistFunc != nil {
		return m.RemoveFromWishlistFunc(ctx, token, productID)
	}
	return nil, notConfigured("RemoveFromWishlist")
}

func (m *Mock) Addresses(ctx context.Context, token string) ([]model.Address, error) {
	if m.AddressesFunc != nil {
		return m.AddressesFunc(ctx, token)
	}
	return []model.Address{}, nil
}

func (m *Mock) AddAddress(ctx context.Context, token string, req model.AddressRequest) ([]model.Address, error) {
	if m.AddAddressFunc != nil {
		return m.AddAddressFunc(ctx, token, req)
	}
	return nil, notConfigured("AddAddress")
}

func (m *Mock) UpdateAddress(ctx context.Context, token, id string, req model.AddressRequest) ([]model.Address, error) {
	if m.UpdateAddressFunc != nil {
		return m.UpdateAddressFunc(ctx, token, id, req)
	}
	return nil, notConfigured("UpdateAddress")
}

func (m *Mock) RemoveAddress(ctx context.Context, token, id string) ([]model.Address, error) {
	if m.RemoveAddressFunc != nil {
		return m.RemoveAddressFunc(ctx, token, id)
	}
	return nil, notConfigured("RemoveAddress")
}

func (m *Mock) UserOrders(ctx context.Context, token, userID string) ([]model.Order, error) {
	if m.UserOrdersFunc != nil {
		return m.UserOrdersFunc(ctx, token, userID)
	}
	return []model.Order{}, nil
}

func (m *Mock) CreateCashOrder(ctx context.Context, token, cartID, addressID string) (*model.Order, error) {
	if m.CreateCashOrderFunc != nil {
		return m.CreateCashOrderFunc(ctx, token, cartID, addressID)
	}
	return nil, notConfigured("CreateCashOrder")
}

func (m *Mock) CreateCheckoutSession(ctx context.Context, token, cartID, returnURL string, addr model.ShippingAddress) (*model.CheckoutSession, error) {
	if m.CreateCheckoutSessionFunc != nil {
		return m.CreateCheckoutSessionFunc(ctx, token, cartID, returnURL, addr)
	}
	return nil, notConfigured("CreateCheckoutSession")
}

func (m *Mock) Signup(ctx context.Context, req model.SignupRequest) (*model.AuthResponse, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, req)
	}
	return nil, notConfigured("Signup")
}

func (m *Mock) Signin(ctx context.Context, req model.SigninRequest) (*model.AuthResponse, error) {
	if m.SigninFunc != nil {
		return m.SigninFunc(ctx, req)
	}
	return nil, model.NewUnauthorizedError("Incorrect email or password")
}

func (m *Mock) ForgotPassword(ctx context.Context, email string) (*model.StatusResponse, error) {
	if m.ForgotPasswordFunc != nil {
		return m.ForgotPasswordFunc(ctx, email)
	}
	return nil, notConfigured("ForgotPassword")
}

func (m *Mock) VerifyResetCode(ctx context.Context, code string) (*model.StatusResponse, error) {
	if m.VerifyResetCodeFunc != nil {
		return m.VerifyResetCodeFunc(ctx, code)
	}
	return nil, notConfigured("VerifyResetCode")
}

func (m *Mock) ResetPassword(ctx context.Context, email, newPassword string) (*model.ResetPasswordResponse, error) {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, email, newPassword)
	}
	return nil, notConfigured("ResetPassword")
}
