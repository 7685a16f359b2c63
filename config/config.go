package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Load loads the configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".vmsbridge"))
		}

		// Check /etc
		v.AddConfigPath("/etc/vmsbridge/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// HikCentral defaults
	v.SetDefault("hikcentral.port", 443)
	v.SetDefault("hikcentral.protocol", "https")
	v.SetDefault("hikcentral.timeout", "30s")

	// Dahua defaults
	v.SetDefault("dahua.port", 443)
	v.SetDefault("dahua.protocol", "https")
	v.SetDefault("dahua.timeout", "30s")

	// Uniview defaults
	v.SetDefault("uniview.port", 8088)
	v.SetDefault("uniview.protocol", "http")
	v.SetDefault("uniview.timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if !cfg.Hikcentral.Enabled && !cfg.Dahua.Enabled && !cfg.Uniview.Enabled {
		return fmt.Errorf("at least one platform must be enabled")
	}

	if cfg.Hikcentral.Enabled {
		if cfg.Hikcentral.Host == "" {
			return fmt.Errorf("hikcentral.host is required")
		}
		if cfg.Hikcentral.AppKey == "" || cfg.Hikcentral.AppSecret == "" {
			return fmt.Errorf("hikcentral.app_key and hikcentral.app_secret are required")
		}
	}

	if cfg.Dahua.Enabled {
		if cfg.Dahua.Host == "" {
			return fmt.Errorf("dahua.host is required")
		}
		if cfg.Dahua.Username == "" || cfg.Dahua.Password == "" {
			return fmt.Errorf("dahua.username and dahua.password are required")
		}
		if cfg.Dahua.ClientID == "" || cfg.Dahua.ClientSecret == "" {
			return fmt.Errorf("dahua.client_id and dahua.client_secret are required")
		}
	}

	if cfg.Uniview.Enabled {
		if cfg.Uniview.Host == "" {
			return fmt.Errorf("uniview.host is required")
		}
		if cfg.Uniview.Username == "" || cfg.Uniview.Password == "" {
			return fmt.Errorf("uniview.username and uniview.password are required")
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
