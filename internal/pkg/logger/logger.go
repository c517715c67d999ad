package logger

import (
	"go.uber.org/zap"
)

var log *zap.Logger

// Init builds the global logger. Production config for APP_ENV=production,
// development config otherwise.
func Init(env string) error {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	log = l
	return nil
}

func Get() *zap.Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return log
}

func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
