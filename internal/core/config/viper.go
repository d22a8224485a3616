package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*AppConfig, error) {
	v := viper.New()

	// Set defaults matching DefaultAppConfig
	def := DefaultAppConfig()
	v.SetDefault("view.page_size", def.PageSize)
	v.SetDefault("view.kana_insensitive", def.KanaInsensitive)
	v.SetDefault("storage.db_url", def.DBURL)
	v.SetDefault("storage.data_dir", def.DataDir)
	v.SetDefault("import.sheet", def.ImportSheet)

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Checked before env binding so only the file's own values are inspected
	if err := validateNoCredentialsInConfig(v); err != nil {
		return nil, err
	}

	// Bind environment variables with SK_ prefix
	v.SetEnvPrefix("SK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &AppConfig{
		PageSize:        v.GetInt("view.page_size"),
		KanaInsensitive: v.GetBool("view.kana_insensitive"),
		DBURL:           v.GetString("storage.db_url"),
		DataDir:         v.GetString("storage.data_dir"),
		ImportSheet:     v.GetString("import.sheet"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks page size and database URL.
func validateConfig(cfg *AppConfig) error {
	if cfg.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", cfg.PageSize)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if _, err := ParseDBURL(cfg.DBURL); err != nil {
		return err
	}
	return nil
}

// validateNoCredentialsInConfig enforces environment-only database passwords.
func validateNoCredentialsInConfig(v *viper.Viper) error {
	if v.InConfig("storage.db_url") && hasPassword(v.GetString("storage.db_url")) {
		return fmt.Errorf("database passwords not allowed in config files (use SK_STORAGE_DB_URL environment variable)")
	}
	return nil
}
