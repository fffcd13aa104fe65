package main

import (
	"context"
	"fmt"
	"io"

	"shopfront/internal/model"
	"shopfront/internal/store"
)

// ANSI color codes
var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func disableColors() {
	colorReset, colorRed, colorGreen, colorYellow = "", "", "", ""
	colorBlue, colorCyan, colorGray, colorBold = "", "", "", ""
}

// printer writes everything the CLI shows. Quiet suppresses all but
// machine-readable values and errors.
type printer struct {
	w       io.Writer
	quiet   bool
	verbose bool
}

func (p *printer) success(format string, args ...any) {
	if !p.quiet {
		fmt.Fprintf(p.w, "%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
	}
}

func (p *printer) error(format string, args ...any) {
	fmt.Fprintf(p.w, "%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
}

func (p *printer) warning(format string, args ...any) {
	fmt.Fprintf(p.w, "%s⚠ %s%s\n", colorYellow, fmt.Sprintf(format, args...), colorReset)
}

func (p *printer) info(format string, args ...any) {
	if !p.quiet {
		fmt.Fprintf(p.w, "%s→ %s%s\n", colorGray, fmt.Sprintf(format, args...), colorReset)
	}
}

// value prints a bare line, the only output in quiet mode.
func (p *printer) value(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Notify renders store notifications, including the cart summary shown
// after an add.
func (p *printer) Notify(_ context.Context, n store.Notification) {
	switch n.Level {
	case store.LevelError:
		p.error("%s", n.Message)
	case store.LevelSuccess:
		p.success("%s", n.Message)
	default:
		p.info("%s", n.Message)
	}
	if n.Cart != nil && !p.quiet {
		fmt.Fprintf(p.w, "  %sCart:%s %d item(s), total %s\n",
			colorBold, colorReset, n.Cart.ItemCount(), formatMoney(n.Cart.TotalPrice))
	}
}

// cart prints the cart lines and total.
func (p *printer) cart(c *model.Cart) {
	if c == nil || len(c.Products) == 0 {
		p.info("Your cart is empty")
		return
	}
	for _, line := range c.Products {
		title := line.Product.ID()
		if prod := line.Product.Product(); prod != nil && prod.Title != "" {
			title = prod.Title
		}
		fmt.Fprintf(p.w, "  %s%-24s%s %s × %d = %s\n",
			colorCyan, line.Product.ID(), colorReset, title, line.Count,
			formatMoney(model.LineTotal(line.Price, line.Count)))
	}
	fmt.Fprintf(p.w, "  Total: %s%s%s\n", colorGreen, formatMoney(c.TotalPrice), colorReset)
}

func formatMoney(m model.Money) string {
	return m.StringFixed(2) + " EGP"
}
