package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"invisiguard/config"
	"invisiguard/gateway"
	"invisiguard/logging"
	"invisiguard/models"
	"invisiguard/utils"
	"invisiguard/workflow"
)

// Options controls how the container is assembled.
type Options struct {
	// ConfigFile is an explicit config path; empty searches the defaults.
	ConfigFile string
	// LogToFile sends logs to logging.file instead of stderr. The TUI owns
	// the terminal, so it logs to a file.
	LogToFile bool
	// Overrides are applied on top of file and environment values.
	Overrides map[string]any
}

// BuildContainer creates and configures a dependency injection container
func BuildContainer(opts Options) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		cfg, err := config.New(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		for key, value := range opts.Overrides {
			cfg.Set(key, value)
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config) (*models.Config, error) {
		return cfg.Load()
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(cfg *models.Config, raw *config.Config) (*zap.Logger, error) {
		logger, err := logging.InitLogger(cfg, opts.LogToFile)
		if err != nil {
			return nil, err
		}
		if used := raw.ConfigFileUsed(); used != "" {
			logger.Info("Loaded configuration from file", zap.String("file", used))
		}
		return logger, nil
	}); err != nil {
		return nil, err
	}

	// Register gateway
	if err := container.Provide(func(cfg *models.Config, logger *zap.Logger) *gateway.Client {
		return gateway.NewClient(cfg.Service, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(c *gateway.Client) workflow.Gateway { return c }); err != nil {
		return nil, err
	}

	// Register output writers
	if err := container.Provide(func(cfg *models.Config) workflow.Saver {
		return utils.NewFileSaver(cfg.Export.Dir)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *models.Config) *utils.ResultsWriter {
		return utils.NewResultsWriter(cfg.Export.ResultsDir)
	}); err != nil {
		return nil, err
	}

	// Register workflow session
	if err := container.Provide(workflow.OptionsFromConfig); err != nil {
		return nil, err
	}
	if err := container.Provide(workflow.NewSession); err != nil {
		return nil, err
	}

	return container, nil
}
