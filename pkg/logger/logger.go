// Package logger builds the single *zap.Logger shared by every
// component of the engine, the way the teacher threads one *zap.Logger
// instance from main into the routing engine, HTTP server and router.
package logger

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger whose level and encoding follow the LOG_LEVEL
// and LOG_JSON config keys (viper defaults to info/json, matching the
// teacher's production deployment rather than its dev console output).
func New() (*zap.Logger, error) {
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_JSON", true)

	level := zapcore.InfoLevel
	_ = level.UnmarshalText([]byte(viper.GetString("LOG_LEVEL")))

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	if !viper.GetBool("LOG_JSON") {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	return cfg.Build()
}
