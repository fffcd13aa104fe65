package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"shopfront/internal/backend"
	"shopfront/internal/localstore"
	"shopfront/internal/model"
	"shopfront/internal/reconcile"
	"shopfront/internal/session"
	"shopfront/internal/store"
	"shopfront/internal/validation"
)

// tokenKey holds the saved API token in the state directory.
const tokenKey = "userToken"

// defaultReturnURL is where card payments send the shopper back to.
const defaultReturnURL = "http://localhost:3000/orders"

var errNotLoggedIn = errors.New("not logged in; run 'shopcli login' first")

// reportedError marks a failure the stores already showed to the user.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err}
}

// app is one CLI invocation: the saved credential, the stores built on it
// and the printer they notify.
type app struct {
	api      backend.Backend
	state    localstore.Storage
	p        *printer
	cart     *store.CartStore
	wishlist *store.WishlistStore
}

func newApp(ctx context.Context, b backend.Backend, state localstore.Storage, p *printer, logger *slog.Logger) (*app, error) {
	a := &app{api: b, state: state, p: p}
	a.cart = store.NewCartStore(b, store.CartOptions{
		Notifier: p,
		OnLoginRequired: func(context.Context) {
			p.warning("Run 'shopcli login' first")
		},
		Logger: logger,
	})
	a.wishlist = store.NewWishlistStore(b, state, store.WishlistOptions{Notifier: p, Logger: logger})

	token, _, err := state.GetItem(ctx, tokenKey)
	if err != nil {
		return nil, fmt.Errorf("reading saved token: %w", err)
	}
	a.setToken(token)
	return a, nil
}

func (a *app) setToken(token string) {
	a.cart.SetToken(token)
	a.wishlist.SetToken(token)
}

func (a *app) token() string {
	return a.cart.Token()
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.runLogin(ctx, args)
	case "logout":
		return a.runLogout(ctx)
	case "register":
		return a.runRegister(ctx, args)
	case "forgot":
		return a.runForgot(ctx, args)
	case "products":
		return a.runProducts(ctx, args)
	case "product":
		return a.runProduct(ctx, args)
	case "categories":
		return a.runCategories(ctx, args)
	case "brands":
		return a.runBrands(ctx)
	case "cart":
		return a.runCart(ctx, args)
	case "wishlist":
		return a.runWishlist(ctx, args)
	case "addresses":
		return a.runAddresses(ctx, args)
	case "orders":
		return a.runOrders(ctx, args)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// =============================================================================
// AUTH COMMANDS
// =============================================================================

func (a *app) runLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	var form validation.LoginForm
	fs.StringVar(&form.Email, "email", "", "Account email (required)")
	fs.StringVar(&form.Password, "password", os.Getenv("SHOPFRONT_PASSWORD"), "Password (default $SHOPFRONT_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := validation.Validate(form); err != nil {
		return err
	}

	resp, err := a.api.Signin(ctx, form.Request())
	if err != nil {
		return err
	}
	if _, err := session.ParseUserClaims(resp.Token); err != nil {
		return fmt.Errorf("login returned an unusable token: %w", err)
	}
	if err := a.state.SetItem(ctx, tokenKey, resp.Token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	a.setToken(resp.Token)

	a.p.success("Welcome, %s", resp.User.Name)
	// Hydrate so the counts below reflect the account.
	if err := a.cart.Refresh(ctx); err == nil {
		a.p.info("Cart: %d item(s)", a.cart.Count())
	}
	if err := a.wishlist.Load(ctx); err == nil {
		a.p.info("Wishlist: %d item(s)", a.wishlist.Snapshot().Count)
	}
	return nil
}

func (a *app) runLogout(ctx context.Context) error {
	if err := a.state.RemoveItem(ctx, tokenKey); err != nil {
		return fmt.Errorf("removing token: %w", err)
	}
	a.setToken("")
	a.p.success("Logged out")
	if err := a.wishlist.Load(ctx); err == nil && a.wishlist.Snapshot().Count > 0 {
		a.p.info("Guest wishlist: %d item(s)", a.wishlist.Snapshot().Count)
	}
	return nil
}

func (a *app) runRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	var form validation.RegisterForm
	fs.StringVar(&form.FirstName, "first", "", "First name (required)")
	fs.StringVar(&form.LastName, "last", "", "Last name (required)")
	fs.StringVar(&form.Email, "email", "", "Email (required)")
	fs.StringVar(&form.Password, "password", "", "Password (required)")
	fs.StringVar(&form.RePassword, "repassword", "", "Password again (required)")
	fs.StringVar(&form.Phone, "phone", "", "Egyptian mobile number, e.g. 01012345678")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := validation.Validate(form); err != nil {
		return err
	}

	resp, err := a.api.Signup(ctx, form.Request())
	if err != nil {
		return err
	}
	a.p.success("Account created for %s", resp.User.Email)
	a.p.info("Run 'shopcli login -email %s' to sign in", resp.User.Email)
	return nil
}

// runForgot walks the three password reset steps: send, verify, reset.
func (a *app) runForgot(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: shopcli forgot send|verify|reset [options]")
	}
	fs := flag.NewFlagSet("forgot "+args[0], flag.ContinueOnError)

	switch args[0] {
	case "send":
		var form validation.ForgotPasswordForm
		fs.StringVar(&form.Email, "email", "", "Account email (required)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := validation.Validate(form); err != nil {
			return err
		}
		resp, err := a.api.ForgotPassword(ctx, form.Email)
		if err != nil {
			return err
		}
		a.p.success("%s", firstNonEmpty(resp.Message, "Reset code sent to your email"))
		a.p.info("Then run 'shopcli forgot verify -code NNNNNN'")

	case "verify":
		var form validation.ResetCodeForm
		fs.StringVar(&form.ResetCode, "code", "", "6-digit code from the email (required)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := validation.Validate(form); err != nil {
			return err
		}
		if _, err := a.api.VerifyResetCode(ctx, form.ResetCode); err != nil {
			return err
		}
		a.p.success("Code verified")
		a.p.info("Then run 'shopcli forgot reset -email EMAIL -password NEW -confirm NEW'")

	case "reset":
		var form validation.NewPasswordForm
		fs.StringVar(&form.Email, "email", "", "Account email (required)")
		fs.StringVar(&form.NewPassword, "password", "", "New password (required)")
		fs.StringVar(&form.ConfirmPassword, "confirm", "", "New password again (required)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := validation.Validate(form); err != nil {
			return err
		}
		if _, err := a.api.ResetPassword(ctx, form.Email, form.NewPassword); err != nil {
			return err
		}
		a.p.success("Password reset successfully! Please login.")

	default:
		return fmt.Errorf("unknown forgot step: %s", args[0])
	}
	return nil
}

// =============================================================================
// CATALOG COMMANDS
// =============================================================================

func (a *app) runProducts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	var f model.ProductFilters
	var categories, brands string
	fs.IntVar(&f.Page, "page", 1, "Page number")
	fs.IntVar(&f.Limit, "limit", 0, "Products per page (API default if 0)")
	fs.StringVar(&f.Sort, "sort", "", "Sort key, e.g. price or -price")
	fs.IntVar(&f.MinPrice, "min", 0, "Minimum price")
	fs.IntVar(&f.MaxPrice, "max", 0, "Maximum price")
	fs.StringVar(&categories, "category", "", "Comma-separated category ids")
	fs.StringVar(&brands, "brand", "", "Comma-separated brand ids")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f.Categories = splitList(categories)
	f.Brands = splitList(brands)

	resp, err := a.api.Products(ctx, f)
	if err != nil {
		return err
	}
	// Membership markers come from the wishlist; a failed load only loses them.
	_ = a.wishlist.Load(ctx)

	tw := tabwriter.NewWriter(a.p.w, 0, 4, 2, ' ', 0)
	for _, prod := range resp.Data {
		mark := " "
		if a.wishlist.IsInWishlist(prod.Identifier()) {
			mark = "♥"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, prod.Identifier(), prod.Title, formatMoney(prod.Price))
	}
	tw.Flush()
	if m := resp.Metadata; m != nil && !a.p.quiet {
		a.p.info("Page %d of %d", m.CurrentPage, m.NumberOfPages)
	}
	return nil
}

func (a *app) runProduct(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: shopcli product ID")
	}
	prod, err := a.api.Product(ctx, args[0])
	if err != nil {
		return err
	}
	_ = a.wishlist.Load(ctx)

	fmt.Fprintf(a.p.w, "%s%s%s\n", colorBold, prod.Title, colorReset)
	fmt.Fprintf(a.p.w, "  ID: %s%s%s\n", colorCyan, prod.Identifier(), colorReset)
	fmt.Fprintf(a.p.w, "  Price: %s%s%s\n", colorGreen, formatMoney(prod.Price), colorReset)
	if prod.PriceAfterDiscount != nil {
		fmt.Fprintf(a.p.w, "  Sale price: %s%s%s\n", colorGreen, formatMoney(*prod.PriceAfterDiscount), colorReset)
	}
	if prod.Brand != nil {
		fmt.Fprintf(a.p.w, "  Brand: %s\n", prod.Brand.Name)
	}
	if prod.Category != nil {
		fmt.Fprintf(a.p.w, "  Category: %s\n", prod.Category.Name)
	}
	if prod.RatingsQuantity > 0 {
		fmt.Fprintf(a.p.w, "  Rating: %.1f (%d)\n", prod.RatingsAverage, prod.RatingsQuantity)
	}
	if a.wishlist.IsInWishlist(prod.Identifier()) {
		fmt.Fprintf(a.p.w, "  %s♥ In your wishlist%s\n", colorRed, colorReset)
	}
	if a.p.verbose && prod.Description != "" {
		fmt.Fprintf(a.p.w, "\n%s\n", prod.Description)
	}
	return nil
}

func (a *app) runCategories(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("categories", flag.ContinueOnError)
	var parent string
	fs.StringVar(&parent, "id", "", "List the subcategories of this category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.p.w, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	if parent != "" {
		resp, err := a.api.CategorySubcategories(ctx, parent)
		if err != nil {
			return err
		}
		for _, sc := range resp.Data {
			fmt.Fprintf(tw, "%s\t%s\n", sc.ID, sc.Name)
		}
		return nil
	}
	resp, err := a.api.Categories(ctx)
	if err != nil {
		return err
	}
	for _, c := range resp.Data {
		fmt.Fprintf(tw, "%s\t%s\n", c.ID, c.Name)
	}
	return nil
}

func (a *app) runBrands(ctx context.Context) error {
	resp, err := a.api.Brands(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.p.w, 0, 4, 2, ' ', 0)
	for _, b := range resp.Data {
		fmt.Fprintf(tw, "%s\t%s\n", b.ID, b.Name)
	}
	return tw.Flush()
}

// =============================================================================
// CART COMMANDS
// =============================================================================

func (a *app) runCart(ctx context.Context, args []string) error {
	sub := "show"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	// Adding as a guest goes through the store so the login prompt is the
	// one every front end shows.
	if sub == "add" {
		if len(args) != 1 {
			return errors.New("usage: shopcli cart add PRODUCT_ID")
		}
		return reported(a.cart.AddItem(ctx, args[0], store.AddOptions{}))
	}
	if a.token() == "" {
		return errNotLoggedIn
	}

	switch sub {
	case "show":
		if err := a.cart.Refresh(ctx); err != nil {
			return err
		}
		a.p.cart(a.cart.Snapshot().Cart)
		return nil

	case "qty":
		if len(args) != 2 {
			return errors.New("usage: shopcli cart qty PRODUCT_ID N")
		}
		var n int
		if _, err := fmt.Sscan(args[1], &n); err != nil {
			return fmt.Errorf("quantity %q is not a number", args[1])
		}
		if err := a.cart.Refresh(ctx); err != nil {
			return err
		}
		if err := a.cart.UpdateQuantity(ctx, args[0], store.ClampQuantity(n)); err != nil {
			return reported(err)
		}

	case "rm":
		if len(args) != 1 {
			return errors.New("usage: shopcli cart rm PRODUCT_ID")
		}
		if err := a.cart.Refresh(ctx); err != nil {
			return err
		}
		if err := a.cart.RemoveItem(ctx, args[0]); err != nil {
			return reported(err)
		}

	case "clear":
		if err := a.cart.Clear(ctx); err != nil {
			return reported(err)
		}
		return nil

	case "apply":
		if len(args) != 1 {
			return errors.New("usage: shopcli cart apply FILE|-")
		}
		return a.applyCart(ctx, args[0])

	default:
		return fmt.Errorf("unknown cart command: %s", sub)
	}

	a.p.cart(a.cart.Snapshot().Cart)
	return nil
}

// desiredCart is the file format of 'cart apply': every line the cart
// should end up with.
type desiredCart struct {
	Items []reconcile.DesiredItem `json:"items" validate:"dive"`
}

func (a *app) applyCart(ctx context.Context, path string) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	var desired desiredCart
	if err := json.NewDecoder(r).Decode(&desired); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := validation.Validate(desired); err != nil {
		return err
	}

	diff, err := a.cart.Replace(ctx, desired.Items)
	if err != nil {
		return reported(err)
	}
	a.p.info("%d added, %d updated, %d removed", len(diff.ToAdd), len(diff.ToUpdate), len(diff.ToRemove))
	a.p.cart(a.cart.Snapshot().Cart)
	return nil
}

// =============================================================================
// WISHLIST COMMANDS
// =============================================================================

func (a *app) runWishlist(ctx context.Context, args []string) error {
	sub := "show"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}
	if err := a.wishlist.Load(ctx); err != nil {
		return reported(err)
	}

	switch sub {
	case "show":
		st := a.wishlist.Snapshot()
		if st.Count == 0 {
			a.p.info("Your wishlist is empty")
			return nil
		}
		// Guests only have ids; products come from the account wishlist.
		if len(st.Products) == 0 {
			for _, id := range st.IDs {
				a.p.value("  ♥ %s", id)
			}
			return nil
		}
		tw := tabwriter.NewWriter(a.p.w, 0, 4, 2, ' ', 0)
		for _, prod := range st.Products {
			fmt.Fprintf(tw, "♥\t%s\t%s\t%s\n", prod.Identifier(), prod.Title, formatMoney(prod.Price))
		}
		return tw.Flush()

	case "toggle":
		if len(args) != 1 {
			return errors.New("usage: shopcli wishlist toggle PRODUCT_ID")
		}
		if err := a.wishlist.Toggle(ctx, args[0], store.ToggleOptions{}); err != nil {
			return reported(err)
		}
		a.p.info("Wishlist: %d item(s)", a.wishlist.Snapshot().Count)
		return nil

	case "clear":
		return reported(a.wishlist.Clear(ctx))

	default:
		return fmt.Errorf("unknown wishlist command: %s", sub)
	}
}

// =============================================================================
// ACCOUNT COMMANDS
// =============================================================================

func (a *app) runAddresses(ctx context.Context, args []string) error {
	if a.token() == "" {
		return errNotLoggedIn
	}
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	var addrs []model.Address
	var err error
	switch sub {
	case "list":
		addrs, err = a.api.Addresses(ctx, a.token())

	case "add":
		fs := flag.NewFlagSet("addresses add", flag.ContinueOnError)
		var form validation.AddressForm
		fs.StringVar(&form.Name, "name", "", "Label, e.g. Home (required)")
		fs.StringVar(&form.Details, "details", "", "Street and building (required)")
		fs.StringVar(&form.Phone, "phone", "", "Egyptian mobile number (required)")
		fs.StringVar(&form.City, "city", "", "City (required)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := validation.Validate(form); err != nil {
			return err
		}
		addrs, err = a.api.AddAddress(ctx, a.token(), form.Request())
		if err == nil {
			a.p.success("Address added")
		}

	case "rm":
		if len(args) != 1 {
			return errors.New("usage: shopcli addresses rm ADDRESS_ID")
		}
		addrs, err = a.api.RemoveAddress(ctx, a.token(), args[0])
		if err == nil {
			a.p.success("Address removed")
		}

	default:
		return fmt.Errorf("unknown addresses command: %s", sub)
	}
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.p.w, 0, 4, 2, ' ', 0)
	for _, addr := range addrs {
		fmt.Fprintf(tw, "%s\t%s\t%s, %s\t%s\n", addr.ID, addr.Name, addr.Details, addr.City, addr.Phone)
	}
	return tw.Flush()
}

func (a *app) runOrders(ctx context.Context, args []string) error {
	if a.token() == "" {
		return errNotLoggedIn
	}
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "list":
		claims, err := session.ParseUserClaims(a.token())
		if err != nil {
			return fmt.Errorf("saved token is unreadable, log in again: %w", err)
		}
		orders, err := a.api.UserOrders(ctx, a.token(), claims.UserID)
		if err != nil {
			return err
		}
		if len(orders) == 0 {
			a.p.info("No orders yet")
			return nil
		}
		tw := tabwriter.NewWriter(a.p.w, 0, 4, 2, ' ', 0)
		for _, o := range orders {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", o.ID, o.CreatedAt.Format("2006-01-02"),
				formatMoney(o.TotalOrderPrice), o.PaymentMethodType, orderState(o))
		}
		return tw.Flush()

	case "cash", "card":
		fs := flag.NewFlagSet("orders "+sub, flag.ContinueOnError)
		var addressID, returnURL string
		fs.StringVar(&addressID, "address", "", "Saved address id (required)")
		if sub == "card" {
			fs.StringVar(&returnURL, "return", defaultReturnURL, "Where the payment page sends you back to")
		}
		if err := fs.Parse(args); err != nil {
			return err
		}
		if addressID == "" {
			return errors.New("-address is required; see 'shopcli addresses'")
		}
		cartID, err := a.checkoutCartID(ctx)
		if err != nil {
			return err
		}
		if sub == "cash" {
			return a.cashOrder(ctx, cartID, addressID)
		}
		return a.cardOrder(ctx, cartID, addressID, returnURL)

	default:
		return fmt.Errorf("unknown orders command: %s", sub)
	}
}

// checkoutCartID returns the id of a non-empty cart.
func (a *app) checkoutCartID(ctx context.Context) (string, error) {
	if err := a.cart.Refresh(ctx); err != nil {
		return "", err
	}
	c := a.cart.Snapshot().Cart
	if c == nil || c.ID == "" || len(c.Products) == 0 {
		return "", errors.New("your cart is empty")
	}
	return c.ID, nil
}

func (a *app) cashOrder(ctx context.Context, cartID, addressID string) error {
	order, err := a.api.CreateCashOrder(ctx, a.token(), cartID, addressID)
	if err != nil {
		return err
	}
	// The remote API empties the cart once the order exists.
	_ = a.cart.Refresh(ctx)
	if a.p.quiet {
		a.p.value("%s", order.ID)
		return nil
	}
	a.p.success("Order placed successfully!")
	fmt.Fprintf(a.p.w, "  Order ID: %s%s%s\n", colorGreen, order.ID, colorReset)
	return nil
}

func (a *app) cardOrder(ctx context.Context, cartID, addressID, returnURL string) error {
	addrs, err := a.api.Addresses(ctx, a.token())
	if err != nil {
		return err
	}
	var ship *model.ShippingAddress
	for _, addr := range addrs {
		if addr.ID == addressID {
			ship = &model.ShippingAddress{Details: addr.Details, Phone: addr.Phone, City: addr.City}
			break
		}
	}
	if ship == nil {
		return errors.New("selected address not found")
	}

	cs, err := a.api.CreateCheckoutSession(ctx, a.token(), cartID, returnURL, *ship)
	if err != nil {
		return err
	}
	if a.p.quiet {
		a.p.value("%s", cs.Session.URL)
		return nil
	}
	a.p.success("Redirecting to payment...")
	fmt.Fprintf(a.p.w, "  Payment URL: %s%s%s\n", colorBlue, cs.Session.URL, colorReset)
	return nil
}

func orderState(o model.Order) string {
	var parts []string
	if o.IsPaid {
		parts = append(parts, "paid")
	} else {
		parts = append(parts, "unpaid")
	}
	if o.IsDelivered {
		parts = append(parts, "delivered")
	}
	return strings.Join(parts, ", ")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
