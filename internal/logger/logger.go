// Package logger provides structured logging using Zap.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init builds the global logger once. "production" logs JSON, "test" logs
// warnings and above only, anything else logs colored console output.
// LOG_LEVEL overrides the level.
func Init(env string) {
	once.Do(func() {
		var cfg zap.Config
		switch env {
		case "production":
			cfg = zap.NewProductionConfig()
			cfg.InitialFields = map[string]interface{}{"service": "finaudy-api"}
		case "test":
			cfg = zap.NewDevelopmentConfig()
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			cfg.DisableStacktrace = true
		default:
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}

		if raw := os.Getenv("LOG_LEVEL"); raw != "" {
			if level, err := zapcore.ParseLevel(raw); err == nil {
				cfg.Level = zap.NewAtomicLevelAt(level)
			}
		}

		base, err := cfg.Build()
		if err != nil {
			base = zap.NewNop()
		}
		sugar = base.Sugar()
	})
}

// Get returns the global logger, initializing a development one on first use.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Named returns the global logger scoped to a background component.
func Named(component string) *zap.SugaredLogger {
	return Get().Named(component)
}

// Sync flushes buffered entries. Call it before exit.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
