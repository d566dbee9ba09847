// Package logger builds the service's zap logger.
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger settings. Development is not read from the
// environment; the caller derives it from ENV.
type Config struct {
	Level       string `env:"LOG_LEVEL" env-default:""`       // debug, info, warn, error
	Encoding    string `env:"LOG_ENCODING" env-default:""`    // json or console
	OutputPath  string `env:"LOG_OUTPUT_PATH" env-default:""` // empty means stdout
	Development bool
}

// New builds a zap.Logger from cfg.
//
// Production defaults: info level, JSON, no caller, no stack traces.
// Development defaults: debug level, colored console output, caller and
// stack traces on errors. Explicit Level and Encoding override both.
func New(cfg Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(defaultLevel(cfg.Development))
	if raw := strings.ToLower(strings.TrimSpace(cfg.Level)); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			// No logger yet.
			fmt.Fprintf(os.Stderr, "Invalid log level '%s', using '%s'. Error: %v\n", cfg.Level, defaultLevel(cfg.Development), err)
			level.SetLevel(defaultLevel(cfg.Development))
		}
	}

	encoding := strings.ToLower(strings.TrimSpace(cfg.Encoding))
	if encoding != "console" && encoding != "json" {
		encoding = "json"
		if cfg.Development {
			encoding = "console"
		}
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if cfg.Development && encoding == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	outputPath := cfg.OutputPath
	if outputPath == "" {
		outputPath = "stdout"
	}

	zapConfig := zap.Config{
		Level:             level,
		Development:       cfg.Development,
		DisableCaller:     !cfg.Development,
		DisableStacktrace: !cfg.Development,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{outputPath},
		ErrorOutputPaths:  []string{"stderr"},
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.With(zap.String("service", "blackboxscan")), nil
}

func defaultLevel(development bool) zapcore.Level {
	if development {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}
