// Package config handles loading and validation of storefront configuration.
// Supports both development (env vars) and production (Secret Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/caarlos0/env/v10"
	"github.com/google/uuid"
	"golang.org/x/mod/semver"

	"shopfront/internal/validation"
)

// Guest wishlist storage backends.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
)

// minProductionSecret is the shortest session secret accepted outside
// development.
const minProductionSecret = 32

// Config holds all storefront configuration.
// Environment determines whether secrets load from env vars (development) or Secret Manager (production).
type Config struct {
	// Server settings
	Port        string `json:"port" env:"PORT" envDefault:"8080" validate:"required,numeric"`
	Environment string `json:"environment" env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `json:"log_level" env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	// Remote API
	APIBaseURL string        `json:"api_base_url" env:"SHOPFRONT_API_BASE_URL" validate:"omitempty,url"`
	APITimeout time.Duration `json:"-" env:"API_TIMEOUT" envDefault:"30s"`
	ChromeTLS  bool          `json:"api_chrome_tls" env:"API_CHROME_TLS"`

	// Guest wishlists
	GuestStorage string `json:"guest_storage" env:"GUEST_STORAGE" envDefault:"memory" validate:"oneof=memory file redis"`
	StateDir     string `json:"state_dir" env:"STATE_DIR" validate:"required_if=GuestStorage file"`
	RedisAddr    string `json:"redis_addr" env:"REDIS_ADDR" validate:"required_if=GuestStorage redis"`

	// Sessions
	SessionTTL         time.Duration `json:"-" env:"SESSION_TTL" envDefault:"24h"`
	SessionSecret      string        `json:"session_secret" env:"SESSION_SECRET"`
	MergeGuestWishlist bool          `json:"merge_guest_wishlist" env:"MERGE_GUEST_WISHLIST"`

	// GCP settings (required in production)
	GCPProject string `json:"gcp_project" env:"GCP_PROJECT"`
	SecretName string `json:"secret_name" env:"SECRET_NAME" envDefault:"shopfront"`

	MinClientVersion string `json:"min_client_version" env:"MIN_CLIENT_VERSION"`
	PublicBaseURL    string `json:"public_base_url" env:"PUBLIC_BASE_URL" validate:"omitempty,url"`

	// EphemeralSecret is set when development mode generated a session
	// secret; cookies then do not survive a restart.
	EphemeralSecret bool `json:"-" env:"-"`
}

// Secrets is the JSON payload stored in Secret Manager.
type Secrets struct {
	SessionSecret string `json:"session_secret"`
	APIBaseURL    string `json:"api_base_url,omitempty"`
}

// accessSecret reads one secret version. Replaced in tests.
var accessSecret = accessSecretManager

// Load reads configuration from file, environment, or Secret Manager.
// Priority: CONFIG_FILE (if set) → ENV vars / Secret Manager.
// Validates all required fields and returns an error if any are missing.
func Load(ctx context.Context) (*Config, error) {
	var cfg *Config
	var err error
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		cfg, err = loadFromFile(configPath)
	} else {
		cfg = &Config{}
		err = env.Parse(cfg)
	}
	if err != nil {
		return nil, err
	}

	if cfg.IsProduction() {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production environment")
		}
		if err := cfg.loadFromSecretManager(ctx); err != nil {
			return nil, fmt.Errorf("loading secrets: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile reads all configuration from a JSON file. Fields the file
// leaves out keep their defaults; the environment is not consulted.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := &Config{}
	// An empty environment yields the envDefault values only.
	if err := env.ParseWithOptions(cfg, env.Options{Environment: map[string]string{}}); err != nil {
		return nil, fmt.Errorf("applying defaults: %w", err)
	}

	// Durations are written as strings ("30s") in the file.
	fileConfig := struct {
		*Config
		APITimeout string `json:"api_timeout"`
		SessionTTL string `json:"session_ttl"`
	}{Config: cfg}
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if cfg.APITimeout, err = durationOr(fileConfig.APITimeout, cfg.APITimeout); err != nil {
		return nil, fmt.Errorf("parsing api_timeout: %w", err)
	}
	if cfg.SessionTTL, err = durationOr(fileConfig.SessionTTL, cfg.SessionTTL); err != nil {
		return nil, fmt.Errorf("parsing session_ttl: %w", err)
	}
	return cfg, nil
}

func durationOr(val string, def time.Duration) (time.Duration, error) {
	if val == "" {
		return def, nil
	}
	return time.ParseDuration(val)
}

// loadFromSecretManager fetches secrets from GCP Secret Manager.
// Secret name format: projects/{project}/secrets/{secret_name}/versions/latest
func (c *Config) loadFromSecretManager(ctx context.Context) error {
	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", c.GCPProject, c.SecretName)

	data, err := accessSecret(ctx, secretName)
	if err != nil {
		return err
	}

	var s Secrets
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parsing secret JSON: %w", err)
	}
	if s.SessionSecret != "" {
		c.SessionSecret = s.SessionSecret
	}
	if s.APIBaseURL != "" {
		c.APIBaseURL = s.APIBaseURL
	}
	return nil
}

func accessSecretManager(ctx context.Context, name string) ([]byte, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return nil, fmt.Errorf("accessing secret %s: %w", name, err)
	}
	return result.Payload.Data, nil
}

// validate checks field rules and the cross-field requirements.
func (c *Config) validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.MinClientVersion != "" && !semver.IsValid(c.MinClientVersion) {
		return fmt.Errorf("MIN_CLIENT_VERSION %q is not a semantic version (want vMAJOR.MINOR.PATCH)", c.MinClientVersion)
	}

	if c.IsProduction() {
		if len(c.SessionSecret) < minProductionSecret {
			return fmt.Errorf("session secret must be at least %d characters in production, got %d",
				minProductionSecret, len(c.SessionSecret))
		}
		return nil
	}
	if c.SessionSecret == "" {
		// Cookies signed with a throwaway key only live as long as the process.
		c.SessionSecret = uuid.NewString() + uuid.NewString()
		c.EphemeralSecret = true
	}
	return nil
}

// IsProduction reports whether secrets come from Secret Manager.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
