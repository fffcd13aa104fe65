// shopcli is a terminal storefront for the shop's e-commerce API.
// Each command performs a single operation, making it composable for scripts.
// The API token and the guest wishlist persist in a state directory.
//
// Commands:
//
//	shopcli login -email E [-password P]
//	shopcli products [-page N] [-sort price] [-min N] [-max N] [-category IDS] [-brand IDS]
//	shopcli cart [show|add ID|qty ID N|rm ID|clear|apply FILE]
//	shopcli wishlist [show|toggle ID|clear]
//	shopcli orders [list|cash -address ID|card -address ID]
//
// Examples:
//
//	shopcli login -email me@example.com
//	shopcli wishlist toggle 6428ebc6dc1175abc65ca0b9
//	shopcli cart add 6428ebc6dc1175abc65ca0b9
//	URL=$(shopcli -q orders card -address $ADDR)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"

	"shopfront/internal/api"
	"shopfront/internal/clienthint"
	"shopfront/internal/localstore"
	"shopfront/internal/model"
	"shopfront/internal/transport"
	"shopfront/internal/validation"
)

// version is reported to the API in the Shopfront-Client header.
const version = "v1.0.0"

// cliConfig is read from the environment; flags override StateDir.
type cliConfig struct {
	APIBaseURL string        `env:"SHOPFRONT_API_BASE_URL"`
	APITimeout time.Duration `env:"API_TIMEOUT" envDefault:"30s"`
	ChromeTLS  bool          `env:"API_CHROME_TLS"`
	StateDir   string        `env:"STATE_DIR"`
}

func init() {
	if os.Getenv("NO_COLOR") != "" {
		disableColors()
	}
}

func main() {
	fs := flag.NewFlagSet("shopcli", flag.ExitOnError)
	var p printer
	var noColor bool
	var stateDir string
	fs.BoolVar(&p.quiet, "q", false, "Quiet mode - only output ids and URLs")
	fs.BoolVar(&p.verbose, "v", false, "Verbose - full output and debug logs")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.StringVar(&stateDir, "state", "", "State directory (default $STATE_DIR or the user config dir)")
	fs.Usage = printUsage
	fs.Parse(os.Args[1:])

	if noColor {
		disableColors()
	}
	if fs.NArg() == 0 {
		printUsage()
		os.Exit(1)
	}
	cmd, args := fs.Arg(0), fs.Args()[1:]
	if cmd == "help" {
		printUsage()
		return
	}
	p.w = os.Stdout

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, &p, stateDir, cmd, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		var r reportedError
		if !errors.As(err, &r) {
			fatal("%s", describe(err))
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, p *printer, stateDir, cmd string, args []string) error {
	var cfg cliConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	if stateDir != "" {
		cfg.StateDir = stateDir
	}
	if cfg.StateDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("locating state directory: %w", err)
		}
		cfg.StateDir = filepath.Join(dir, "shopfront")
	}

	level := slog.LevelWarn
	if p.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	hint, err := clienthint.Format(clienthint.Client{Name: "shopcli", Version: version})
	if err != nil {
		return err
	}
	client, err := api.New(api.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Transport: transport.New(transport.Options{
			Timeout:   cfg.APITimeout,
			ChromeTLS: cfg.ChromeTLS,
		}),
		Logger: logger,
		Header: http.Header{clienthint.Header: []string{hint}},
	})
	if err != nil {
		return err
	}
	state, err := localstore.NewFile(cfg.StateDir)
	if err != nil {
		return fmt.Errorf("opening state directory: %w", err)
	}
	logger.Debug("starting", slog.String("api", client.BaseURL()), slog.String("state_dir", cfg.StateDir))

	a, err := newApp(ctx, client, state, p, logger)
	if err != nil {
		return err
	}
	return a.run(ctx, cmd, args)
}

// describe turns an error into the line shown to the user.
func describe(err error) string {
	var ve *validation.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `shopcli - terminal storefront

Usage:
  shopcli [-q] [-v] [-no-color] [-state DIR] <command> [options]

Commands:
  login       Sign in and save the token
  logout      Forget the token; the guest wishlist comes back
  register    Create an account
  forgot      Reset a password: forgot send|verify|reset
  products    List products with filters
  product     Show one product
  categories  List categories, or subcategories with -id
  brands      List brands
  cart        show | add ID | qty ID N | rm ID | clear | apply FILE
  wishlist    show | toggle ID | clear (works without login)
  addresses   list | add | rm ID
  orders      list | cash -address ID | card -address ID [-return URL]

Environment:
  SHOPFRONT_API_BASE_URL  API origin (default %s)
  API_TIMEOUT             Request timeout (default 30s)
  API_CHROME_TLS          Present a Chrome TLS fingerprint
  STATE_DIR               Where the token and guest wishlist are kept

Run 'shopcli <command> -h' for command-specific options.
`, api.DefaultBaseURL)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
	os.Exit(1)
}
