package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"invisiguard/models"
)

// ParseLevel maps a config level name to a zap level. Unknown names fall
// back to info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// InitLogger initializes a logger based on configuration. When toFile is
// set, output goes to cfg.Logging.File instead of stderr so the TUI's alt
// screen is left alone.
func InitLogger(cfg *models.Config, toFile bool) (*zap.Logger, error) {
	var logConfig zap.Config
	if cfg.Logging.Format == "json" {
		logConfig = zap.NewProductionConfig()
	} else {
		logConfig = zap.NewDevelopmentConfig()
		if !toFile {
			logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	}
	logConfig.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.Logging.Level))

	if toFile && cfg.Logging.File != "" {
		logConfig.OutputPaths = []string{cfg.Logging.File}
		logConfig.ErrorOutputPaths = []string{cfg.Logging.File}
	} else {
		logConfig.OutputPaths = []string{"stderr"}
		logConfig.ErrorOutputPaths = []string{"stderr"}
	}

	logger, err := logConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger.Named("invisiguard"), nil
}
