// Package tslog wraps zap with the small surface the interpreter needs:
// a production logger by default, switched to debug level when New is
// called with verbose set.
package tslog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger at info level, or debug level when verbose is
// true.
func New(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// Nop returns a logger that discards everything, for tests and library
// callers that don't want interpreter diagnostics on stderr.
func Nop() *zap.Logger { return zap.NewNop() }
