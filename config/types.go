package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Hikcentral HikcentralConfig `mapstructure:"hikcentral"`
	Dahua      DahuaConfig      `mapstructure:"dahua"`
	Uniview    UniviewConfig    `mapstructure:"uniview"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// HikcentralConfig holds HikCentral OpenAPI connection details
type HikcentralConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	Protocol      string        `mapstructure:"protocol"`
	AppKey        string        `mapstructure:"app_key"`
	AppSecret     string        `mapstructure:"app_secret"`
	Timeout       time.Duration `mapstructure:"timeout"`
	SkipTLSVerify bool          `mapstructure:"skip_tls_verify"`
}

// DahuaConfig holds Dahua ICC connection details
type DahuaConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	Protocol      string        `mapstructure:"protocol"`
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	ClientID      string        `mapstructure:"client_id"`
	ClientSecret  string        `mapstructure:"client_secret"`
	Timeout       time.Duration `mapstructure:"timeout"`
	SkipTLSVerify bool          `mapstructure:"skip_tls_verify"`
}

// UniviewConfig holds Uniview VMS connection details
type UniviewConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	Protocol          string        `mapstructure:"protocol"`
	Username          string        `mapstructure:"username"`
	Password          string        `mapstructure:"password"`
	KeepAliveInterval time.Duration `mapstructure:"keep_alive_interval"`
	Timeout           time.Duration `mapstructure:"timeout"`
	SkipTLSVerify     bool          `mapstructure:"skip_tls_verify"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
