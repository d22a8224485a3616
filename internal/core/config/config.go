// Package config provides configuration management for sitekit commands.
package config

import (
	"fmt"
	"net/url"

	"github.com/sitekit/sitekit/internal/types"
)

// AppConfig holds configuration shared by the CLI commands.
type AppConfig struct {
	PageSize        int
	KanaInsensitive bool
	DBURL           string
	DataDir         string
	ImportSheet     string
}

// DefaultAppConfig returns configuration with default values.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		PageSize:        types.DefaultPageSize,
		KanaInsensitive: false,
		DBURL:           "sqlite://./data/sitekit.db",
		DataDir:         "./data",
		ImportSheet:     "",
	}
}

// supportedSchemes lists database URL schemes db.Open understands.
var supportedSchemes = map[string]bool{
	"sqlite":   true,
	"postgres": true,
}

// ParseDBURL validates a database URL and returns its scheme.
func ParseDBURL(dbURL string) (string, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("invalid database URL: %w", err)
	}
	if !supportedSchemes[u.Scheme] {
		return "", fmt.Errorf("unsupported database scheme: %q (expected sqlite or postgres)", u.Scheme)
	}
	return u.Scheme, nil
}

// hasPassword reports whether a database URL embeds a password.
func hasPassword(dbURL string) bool {
	u, err := url.Parse(dbURL)
	if err != nil || u.User == nil {
		return false
	}
	_, set := u.User.Password()
	return set
}
