package config

import (
	"fmt"
	"time"
)

// Environment variables read by parseEnv.
const (
	EnvServerAddr          = "GATEKEEPER_SERVER_ADDR"
	EnvTransport           = "GATEKEEPER_TRANSPORT"
	EnvDatabasePath        = "GATEKEEPER_DATABASE_PATH"
	EnvRequestTimeout      = "GATEKEEPER_REQUEST_TIMEOUT"
	EnvOnlineCheckInterval = "GATEKEEPER_ONLINE_CHECK_INTERVAL"
	EnvTokenExpirySkew     = "GATEKEEPER_TOKEN_EXPIRY_SKEW"
	EnvRolesFile           = "GATEKEEPER_ROLES_FILE"
	EnvStorageSecret       = "GATEKEEPER_STORAGE_SECRET"
	EnvLogLevel            = "GATEKEEPER_LOG_LEVEL"
	EnvLogFormat           = "GATEKEEPER_LOG_FORMAT"
)

// parseEnv overlays cfg with the GATEKEEPER_* variables that are set.
// Durations use Go syntax ("10s").
func parseEnv(cfg *Config, getenv func(string) string) error {
	setString(&cfg.ServerAddr, getenv(EnvServerAddr))
	setString(&cfg.Transport, getenv(EnvTransport))
	setString(&cfg.DatabasePath, getenv(EnvDatabasePath))
	setString(&cfg.RolesFile, getenv(EnvRolesFile))
	setString(&cfg.StorageSecret, getenv(EnvStorageSecret))
	setString(&cfg.Logging.Level, getenv(EnvLogLevel))
	setString(&cfg.Logging.Format, getenv(EnvLogFormat))

	for name, dst := range map[string]*time.Duration{
		EnvRequestTimeout:      &cfg.RequestTimeout,
		EnvOnlineCheckInterval: &cfg.OnlineCheckInterval,
		EnvTokenExpirySkew:     &cfg.TokenExpirySkew,
	} {
		v := getenv(name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = d
	}
	return nil
}
