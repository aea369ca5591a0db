package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gatekeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for file unmarshalling. Absent
// fields keep the value already in Config.
type FileConfig struct {
	ServerAddr          string         `json:"server_addr" yaml:"server_addr"`
	Transport           string         `json:"transport" yaml:"transport"`
	DatabasePath        string         `json:"database_path" yaml:"database_path"`
	RequestTimeout      timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	TokenExpirySkew     timex.Duration `json:"token_expiry_skew" yaml:"token_expiry_skew"`
	RolesFile           string         `json:"roles_file" yaml:"roles_file"`
	StorageSecret       string         `json:"storage_secret" yaml:"storage_secret"`
	Logging             struct {
		Level  string `json:"level" yaml:"level"`
		Format string `json:"format" yaml:"format"`
		Output string `json:"output" yaml:"output"`
	} `json:"logging" yaml:"logging"`
}

// parseFile overlays cfg with the values of the file at path.
func parseFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.ServerAddr, fc.ServerAddr)
	setString(&cfg.Transport, fc.Transport)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.RolesFile, fc.RolesFile)
	setString(&cfg.StorageSecret, fc.StorageSecret)
	setString(&cfg.Logging.Level, fc.Logging.Level)
	setString(&cfg.Logging.Format, fc.Logging.Format)
	setString(&cfg.Logging.Output, fc.Logging.Output)

	if fc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.TokenExpirySkew.Duration != 0 {
		cfg.TokenExpirySkew = fc.TokenExpirySkew.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
