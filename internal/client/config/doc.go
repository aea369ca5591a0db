// Package config loads runtime configuration for the gatekeeper console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c/-config or GATEKEEPER_CONFIG.
//     ".yaml"/".yml" files are read as YAML, anything else as JSON.
//  3. GATEKEEPER_* environment variables.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   server address (host:port or base URL)
//	-t string   transport: http | grpc
//	-d string   path of the local SQLite database
//	-i int      online status check interval (seconds)
//	-l string   log level: debug | info | warn | error
//
// # File schema
//
// Durations use timex.Duration, so they can be strings like "3s" or integer
// nanoseconds:
//
//	{
//	  "server_addr": "127.0.0.1:8000",
//	  "transport": "http",
//	  "database_path": "gatekeeper.db",
//	  "request_timeout": "10s",
//	  "online_check_interval": "3s",
//	  "token_expiry_skew": "30s",
//	  "roles_file": "roles.yaml",
//	  "storage_secret": "",
//	  "logging": {"level": "info", "format": "text", "output": "stderr"}
//	}
package config
