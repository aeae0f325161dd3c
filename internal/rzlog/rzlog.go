// Package rzlog builds the *zap.SugaredLogger handed to every component via
// its Options struct, the way ignite's engine takes a Logger field rather
// than calling zap directly.
package rzlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a console-encoded logger at the requested verbosity. verbose
// selects debug level; otherwise only warnings and above are logged.
func New(verbose bool) *zap.SugaredLogger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.TimeKey = ""

	logger, err := cfg.Build()
	if err != nil {
		// Falls back to a logger that writes nowhere rather than panicking
		// the whole tool over a logging misconfiguration.
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

// Nop returns a logger that discards everything, for library callers (and
// tests) that don't want console output.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
