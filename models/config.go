package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Error policies
const (
	ErrorPolicySwallow = "swallow"
	ErrorPolicySurface = "surface"
)

// Export targets
const (
	ExportTargetCurrent  = "current"
	ExportTargetAnalyzed = "analyzed"
)

type Config struct {
	Service  ServiceConfig  `json:"service" yaml:"service"`
	Workflow WorkflowConfig `json:"workflow" yaml:"workflow"`
	Export   ExportConfig   `json:"export" yaml:"export"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
}

type ServiceConfig struct {
	BaseURL   string        `json:"base_url" yaml:"base_url"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"` // 0 keeps the transport default
	UserAgent string        `json:"user_agent" yaml:"user_agent"`
}

type WorkflowConfig struct {
	ErrorPolicy  string `json:"error_policy" yaml:"error_policy"`
	ExportTarget string `json:"export_target" yaml:"export_target"`
}

type ExportConfig struct {
	Dir        string `json:"dir" yaml:"dir"`
	ResultsDir string `json:"results_dir" yaml:"results_dir"`
}

type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
	File   string `json:"file" yaml:"file"`
}

type MetricsConfig struct {
	ListenAddress string `json:"listen_address" yaml:"listen_address"`
}

// DefaultConfig returns a config pointing at the public detection service.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			BaseURL:   "https://web-production-49c9.up.railway.app",
			UserAgent: "invisiguard/1.0",
		},
		Workflow: WorkflowConfig{
			ErrorPolicy:  ErrorPolicySwallow,
			ExportTarget: ExportTargetCurrent,
		},
		Export: ExportConfig{
			Dir:        ".",
			ResultsDir: "outputs",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   "invisiguard.log",
		},
	}
}

// Validate checks the configuration and normalizes the base URL.
func (c *Config) Validate() error {
	base := strings.TrimRight(strings.TrimSpace(c.Service.BaseURL), "/")
	if base == "" {
		return fmt.Errorf("service base URL cannot be empty")
	}
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("invalid service base URL %q: %w", c.Service.BaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("service base URL must be an absolute http(s) URL, got %q", c.Service.BaseURL)
	}
	c.Service.BaseURL = base

	if c.Service.Timeout < 0 {
		return fmt.Errorf("service timeout cannot be negative, got %v", c.Service.Timeout)
	}

	switch c.Workflow.ErrorPolicy {
	case ErrorPolicySwallow, ErrorPolicySurface:
	default:
		return fmt.Errorf("unknown error policy %q (want %s or %s)", c.Workflow.ErrorPolicy, ErrorPolicySwallow, ErrorPolicySurface)
	}

	switch c.Workflow.ExportTarget {
	case ExportTargetCurrent, ExportTargetAnalyzed:
	default:
		return fmt.Errorf("unknown export target %q (want %s or %s)", c.Workflow.ExportTarget, ExportTargetCurrent, ExportTargetAnalyzed)
	}

	if c.Export.Dir == "" {
		return fmt.Errorf("export directory cannot be empty")
	}
	return nil
}
