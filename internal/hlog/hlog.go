// Package hlog provides the level-gated logger injected into every
// HiveHyde-Anti subsystem, replacing chatty per-request console.log
// calls with structured, level-gated zap logging.
package hlog

import "go.uber.org/zap"

// Logger is the injected logging handle. A nil *zap.Logger passed to
// New is replaced with a no-op logger, so callers never need a nil
// check before logging.
type Logger struct {
	z *zap.Logger
}

// New wraps l, defaulting to a no-op logger when l is nil.
func New(l *zap.Logger) *Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &Logger{z: l}
}

// Nop returns a logger that discards everything.
func Nop() *Logger { return New(nil) }

// Named returns a child logger scoped to the given subsystem name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{z: l.z.Named(name)}
}

// Debug logs per-attempt chatter (probe dispatch, refresh timing) that
// production deployments keep suppressed.
func (l *Logger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }

// Info logs lifecycle events: initialize, policy build, session refresh.
func (l *Logger) Info(msg string, fields ...zap.Field) { l.z.Info(msg, fields...) }

// Warn logs recovered failures: a silent refresh miss, a probe sentinel.
func (l *Logger) Warn(msg string, fields ...zap.Field) { l.z.Warn(msg, fields...) }

// Error logs failures surfaced to the caller: init failure, signing
// failure.
func (l *Logger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }
