package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"invisiguard/models"
)

// EnvPrefix is prepended to every environment override, e.g.
// INVISIGUARD_SERVICE_BASE_URL.
const EnvPrefix = "INVISIGUARD"

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance. An explicit path must exist;
// otherwise config.yaml is searched for in the usual places and is optional.
func New(path string) (*Config, error) {
	// A missing .env is fine, it only seeds the environment.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.invisiguard")
		v.AddConfigPath("/etc/invisiguard/")
	}

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults mirrors models.DefaultConfig so every key is known to viper
// and can be overridden from the environment.
func setDefaults(v *viper.Viper) {
	d := models.DefaultConfig()

	v.SetDefault("service.base_url", d.Service.BaseURL)
	v.SetDefault("service.timeout", "0s")
	v.SetDefault("service.user_agent", d.Service.UserAgent)

	v.SetDefault("workflow.error_policy", d.Workflow.ErrorPolicy)
	v.SetDefault("workflow.export_target", d.Workflow.ExportTarget)

	v.SetDefault("export.dir", d.Export.Dir)
	v.SetDefault("export.results_dir", d.Export.ResultsDir)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file", d.Logging.File)

	v.SetDefault("metrics.listen_address", "")
}

// Load builds and validates the typed configuration.
func (c *Config) Load() (*models.Config, error) {
	cfg := &models.Config{
		Service: models.ServiceConfig{
			BaseURL:   c.v.GetString("service.base_url"),
			Timeout:   c.v.GetDuration("service.timeout"),
			UserAgent: c.v.GetString("service.user_agent"),
		},
		Workflow: models.WorkflowConfig{
			ErrorPolicy:  strings.ToLower(c.v.GetString("workflow.error_policy")),
			ExportTarget: strings.ToLower(c.v.GetString("workflow.export_target")),
		},
		Export: models.ExportConfig{
			Dir:        c.v.GetString("export.dir"),
			ResultsDir: c.v.GetString("export.results_dir"),
		},
		Logging: models.LoggingConfig{
			Level:  c.v.GetString("logging.level"),
			Format: c.v.GetString("logging.format"),
			File:   c.v.GetString("logging.file"),
		},
		Metrics: models.MetricsConfig{
			ListenAddress: c.v.GetString("metrics.listen_address"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Set overrides a single key, used for command line flags.
func (c *Config) Set(key string, value any) {
	c.v.Set(key, value)
}

// ConfigFileUsed returns the path of the file that was read, if any.
func (c *Config) ConfigFileUsed() string {
	return c.v.ConfigFileUsed()
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
