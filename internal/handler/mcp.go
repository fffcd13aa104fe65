// MCP transport for the storefront using the official MCP Go SDK.
// Exposes catalog browsing and the session's cart and wishlist as MCP tools.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"shopfront/internal/model"
	"shopfront/internal/reconcile"
	"shopfront/internal/session"
	"shopfront/internal/store"
	"shopfront/internal/validation"
)

// errLoginRequired is reported by tools that need a signed-in session.
var errLoginRequired = fmt.Errorf("%w: call the login tool first", model.ErrLoginRequired)

// === MCP Tool Input Types ===

// LoginInput is the input schema for the login tool.
type LoginInput struct {
	Email    string `json:"email" jsonschema:"account email"`
	Password string `json:"password" jsonschema:"account password"`
}

// SearchProductsInput is the input schema for search_products.
type SearchProductsInput struct {
	Page       int      `json:"page,omitempty" jsonschema:"page number, starting at 1"`
	Limit      int      `json:"limit,omitempty" jsonschema:"products per page"`
	Sort       string   `json:"sort,omitempty" jsonschema:"sort key, e.g. price or -price"`
	MinPrice   int      `json:"min_price,omitempty" jsonschema:"minimum price"`
	MaxPrice   int      `json:"max_price,omitempty" jsonschema:"maximum price"`
	Categories []string `json:"categories,omitempty" jsonschema:"category ids"`
	Brands     []string `json:"brands,omitempty" jsonschema:"brand ids"`
}

// IDInput names one catalog resource.
type IDInput struct {
	ID string `json:"id" jsonschema:"resource id"`
}

// ProductInput names one product.
type ProductInput struct {
	ProductID string `json:"product_id" jsonschema:"product id"`
}

// UpdateCartItemInput is the input schema for update_cart_item.
type UpdateCartItemInput struct {
	ProductID string `json:"product_id" jsonschema:"product id"`
	Quantity  int    `json:"quantity" jsonschema:"new quantity, at least 1"`
}

// ReplaceCartInput is the input schema for replace_cart.
// Uses full PUT semantics: the client sends the complete desired cart.
type ReplaceCartInput struct {
	Items []reconcile.DesiredItem `json:"items" jsonschema:"every line the cart should hold; quantity 0 removes"`
}

// NoInput is the input of tools without parameters.
type NoInput struct{}

// NewMCPServer creates an MCP server whose tools act on sess.
// The server exposes the same operations as the REST API but via MCP protocol.
func (h *Handler) NewMCPServer(sess *session.Session) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "shopfront",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			Instructions: "Shopfront storefront. Browse the catalog, keep a wishlist, " +
				"and after logging in manage the cart and review orders.",
		},
	)
	t := &mcpTools{h: h, sess: sess}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "login",
		Description: "Sign in so cart, wishlist and order tools act on the account.",
	}, t.login)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "logout",
		Description: "Sign out and return to the guest wishlist.",
	}, t.logout)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_products",
		Description: "List catalog products with optional paging, sorting, price range, category and brand filters.",
	}, t.searchProducts)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_product",
		Description: "Get one product by id.",
	}, t.getProduct)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_categories",
		Description: "List product categories.",
	}, t.listCategories)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_brands",
		Description: "List brands.",
	}, t.listBrands)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "view_cart",
		Description: "Get the current cart. Requires login.",
	}, t.viewCart)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_to_cart",
		Description: "Add one unit of a product to the cart. Requires login.",
	}, t.addToCart)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_cart_item",
		Description: "Set the quantity of a cart line. Requires login.",
	}, t.updateCartItem)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_from_cart",
		Description: "Remove a line from the cart. Requires login.",
	}, t.removeFromCart)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "clear_cart",
		Description: "Empty the cart. Requires login.",
	}, t.clearCart)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "replace_cart",
		Description: "Make the cart match a complete list of lines, changing only what differs. Requires login.",
	}, t.replaceCart)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "view_wishlist",
		Description: "Get the wishlist.",
	}, t.viewWishlist)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "toggle_wishlist",
		Description: "Add a product to the wishlist, or remove it if already there.",
	}, t.toggleWishlist)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "clear_wishlist",
		Description: "Remove every product from the wishlist.",
	}, t.clearWishlist)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_orders",
		Description: "List the account's orders. Requires login.",
	}, t.listOrders)

	return server
}

// NewMCPHandler returns an HTTP handler for the MCP endpoint.
// Each MCP session gets its own storefront session.
func (h *Handler) NewMCPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server {
			sess := h.sessions.Create(r.Context(), "")
			h.logger.InfoContext(r.Context(), "mcp session started", slog.String("session_id", sess.ID))
			return h.NewMCPServer(sess)
		},
		nil,
	)
}

// mcpTools binds tool handlers to one storefront session.
type mcpTools struct {
	h    *Handler
	sess *session.Session
}

// === Tool Handlers ===

func (t *mcpTools) login(ctx context.Context, _ *mcp.CallToolRequest, in LoginInput) (*mcp.CallToolResult, any, error) {
	t.keepAlive()
	form := validation.LoginForm{Email: in.Email, Password: in.Password}
	if err := validation.Validate(form); err != nil {
		return nil, nil, err
	}
	resp, err := t.h.backend.Signin(ctx, form.Request())
	if err != nil {
		return nil, nil, t.h.mcpError(err)
	}
	if err := t.h.sessions.Login(ctx, t.sess, resp.Token); err != nil {
		return nil, nil, t.h.mcpError(model.NewUnauthorizedError("Login failed"))
	}
	return nil, authResponse{Message: resp.Message, User: resp.User}, nil
}

func (t *mcpTools) logout(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	t.keepAlive()
	t.h.sessions.Logout(ctx, t.sess)
	return nil, t.sess.Wishlist.Snapshot(), nil
}

func (t *mcpTools) searchProducts(ctx context.Context, _ *mcp.CallToolRequest, in SearchProductsInput) (*mcp.CallToolResult, any, error) {
	resp, err := t.h.backend.Products(ctx, model.ProductFilters{
		Page:       in.Page,
		Limit:      in.Limit,
		Sort:       in.Sort,
		MinPrice:   in.MinPrice,
		MaxPrice:   in.MaxPrice,
		Categories: in.Categories,
		Brands:     in.Brands,
	})
	if err != nil {
		return nil, nil, t.h.mcpError(err)
	}
	return nil, resp, nil
}

func (t *mcpTools) getProduct(ctx context.Context, _ *mcp.CallToolRequest, in IDInput) (*mcp.CallToolResult, any, error) {
	if in.ID == "" {
		return nil, nil, fmt.Errorf("id is required")
	}
	p, err := t.h.backend.Product(ctx, in.ID)
	if err != nil {
		return nil, nil, t.h.mcpError(err)
	}
	return nil, productView{Product: p, InWishlist: t.sess.Wishlist.IsInWishlist(p.Identifier())}, nil
}

func (t *mcpTools) listCategories(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	resp, err := t.h.backend.Categories(ctx)
	if err != nil {
		return nil, nil, t.h.mcpError(err)
	}
	return nil, resp, nil
}

func (t *mcpTools) listBrands(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	resp, err := t.h.backend.Brands(ctx)
	if err != nil {
		return nil, nil, t.h.mcpError(err)
	}
	return nil, resp, nil
}

func (t *mcpTools) viewCart(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	return t.cartAction(ctx, func(ctx context.Context, c *store.CartStore) error {
		return c.Refresh(ctx)
	})
}

func (t *mcpTools) addToCart(ctx context.Context, _ *mcp.CallToolRequest, in ProductInput) (*mcp.CallToolResult, any, error) {
	if in.ProductID == "" {
		return nil, nil, fmt.Errorf("product_id is required")
	}
	return t.cartAction(ctx, func(ctx context.Context, c *store.CartStore) error {
		return c.AddItem(ctx, in.ProductID, store.AddOptions{})
	})
}

func (t *mcpTools) updateCartItem(ctx context.Context, _ *mcp.CallToolRequest, in UpdateCartItemInput) (*mcp.CallToolResult, any, error) {
	if in.ProductID == "" {
		return nil, nil, fmt.Errorf("product_id is required")
	}
	return t.cartAction(ctx, func(ctx context.Context, c *store.CartStore) error {
		return c.UpdateQuantity(ctx, in.ProductID, store.ClampQuantity(in.Quantity))
	})
}

func (t *mcpTools) removeFromCart(ctx context.Context, _ *mcp.CallToolRequest, in ProductInput) (*mcp.CallToolResult, any, error) {
	if in.ProductID == "" {
		return nil, nil, fmt.Errorf("product_id is required")
	}
	return t.cartAction(ctx, func(ctx context.Context, c *store.CartStore) error {
		return c.RemoveItem(ctx, in.ProductID)
	})
}

func (t *mcpTools) clearCart(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	return t.cartAction(ctx, func(ctx context.Context, c *store.CartStore) error {
		return c.Clear(ctx)
	})
}

func (t *mcpTools) replaceCart(ctx context.Context, _ *mcp.CallToolRequest, in ReplaceCartInput) (*mcp.CallToolResult, any, error) {
	t.keepAlive()
	if !t.sess.LoggedIn() {
		return nil, nil, errLoginRequired
	}
	if err := validation.Validate(replaceCartRequest{Items: in.Items}); err != nil {
		return nil, nil, err
	}
	diff, err := t.sess.Cart.Replace(ctx, in.Items)
	if err != nil {
		return nil, nil, t.h.mcpError(err)
	}
	return nil, replaceCartResponse{
		Added:   len(diff.ToAdd),
		Updated: len(diff.ToUpdate),
		Removed: len(diff.ToRemove),
		State:   t.sess.Cart.Snapshot(),
	}, nil
}

func (t *mcpTools) viewWishlist(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	return t.wishlistAction(ctx, func(ctx context.Context, w *store.WishlistStore) error {
		return w.Load(ctx)
	})
}

func (t *mcpTools) toggleWishlist(ctx context.Context, _ *mcp.CallToolRequest, in ProductInput) (*mcp.CallToolResult, any, error) {
	if in.ProductID == "" {
		return nil, nil, fmt.Errorf("product_id is required")
	}
	return t.wishlistAction(ctx, func(ctx context.Context, w *store.WishlistStore) error {
		return w.Toggle(ctx, in.ProductID, store.ToggleOptions{})
	})
}

func (t *mcpTools) clearWishlist(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	return t.wishlistAction(ctx, func(ctx context.Context, w *store.WishlistStore) error {
		return w.Clear(ctx)
	})
}

// ordersOutput wraps the order list; tool output must be an object.
type ordersOutput struct {
	Orders []model.Order `json:"orders"`
}

func (t *mcpTools) listOrders(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	t.keepAlive()
	u := t.sess.User()
	if u == nil {
		return nil, nil, errLoginRequired
	}
	orders, err := t.h.backend.UserOrders(ctx, t.sess.Token(), u.UserID)
	if err != nil {
		return nil, nil, t.h.mcpError(err)
	}
	return nil, ordersOutput{Orders: orders}, nil
}

// cartAction runs fn against the session cart and returns its snapshot.
func (t *mcpTools) cartAction(ctx context.Context, fn func(context.Context, *store.CartStore) error) (*mcp.CallToolResult, any, error) {
	t.keepAlive()
	if !t.sess.LoggedIn() {
		return nil, nil, errLoginRequired
	}
	if err := fn(ctx, t.sess.Cart); err != nil {
		return nil, nil, t.h.mcpError(err)
	}
	return nil, t.sess.Cart.Snapshot(), nil
}

// wishlistAction runs fn against the session wishlist and returns its
// snapshot.
func (t *mcpTools) wishlistAction(ctx context.Context, fn func(context.Context, *store.WishlistStore) error) (*mcp.CallToolResult, any, error) {
	t.keepAlive()
	if err := fn(ctx, t.sess.Wishlist); err != nil {
		return nil, nil, t.h.mcpError(err)
	}
	return nil, t.sess.Wishlist.Snapshot(), nil
}

// keepAlive marks the session active so the sweeper keeps it.
func (t *mcpTools) keepAlive() {
	t.h.sessions.Get(t.sess.ID)
}

// mcpError converts API errors to MCP-friendly errors.
func (h *Handler) mcpError(err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	// Don't leak internal error details
	h.logger.Error("mcp internal error", slog.String("error", err.Error()))
	return fmt.Errorf("internal error")
}
