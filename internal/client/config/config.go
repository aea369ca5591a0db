package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/flagx"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
)

// Config holds runtime settings for the console.
type Config struct {
	// ServerAddr is the backend address: host:port, or a base URL for HTTP.
	ServerAddr string
	// Transport is "http" or "grpc".
	Transport    string
	DatabasePath string

	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
	// TokenExpirySkew: access tokens expiring sooner than this are refreshed
	// before use. Zero disables proactive refresh.
	TokenExpirySkew time.Duration

	// RolesFile optionally replaces the built-in role table.
	RolesFile string
	// StorageSecret, when set, seals the persisted session.
	StorageSecret string

	Logging logging.Options
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "127.0.0.1:8000"
	c.Transport = "http"
	c.DatabasePath = "gatekeeper.db"
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.TokenExpirySkew = 30 * time.Second
	c.RolesFile = ""
	c.StorageSecret = ""
	c.Logging = logging.Options{Level: "info", Format: "text", Output: "stderr"}
}

// Validate reports settings the console cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.ServerAddr == "" {
		errs = append(errs, errors.New("server address is empty"))
	}
	if c.Transport != "http" && c.Transport != "grpc" {
		errs = append(errs, fmt.Errorf("unknown transport %q", c.Transport))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database path is empty"))
	}
	if c.OnlineCheckInterval <= 0 {
		errs = append(errs, errors.New("online check interval must be positive"))
	}
	if c.TokenExpirySkew < 0 {
		errs = append(errs, errors.New("token expiry skew must not be negative"))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config from defaults, the config file, the
// environment and os.Args, in that order.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], os.Getenv)
}

func load(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	path := flagx.ConfigPath(args)
	if path == "" {
		path = getenv(flagx.ConfigEnvVar)
	}
	if path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := parseEnv(cfg, getenv); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
