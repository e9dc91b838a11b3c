// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conduct

import (
	"strings"

	"go.uber.org/zap"
)

// Logger wraps a zap.SugaredLogger, grounded on
// yungbote-neurobridge-backend/internal/pkg/logger's thin wrapper shape.
// The conductor logs one Debug line per FSM state transition and one
// Error line when inspect unwinds an error past the bottom of the stack
// without finding a catch-frame; an error caught by a catch-frame is not
// logged at Error level.
type Logger struct {
	sugar *zap.SugaredLogger
}

// NewLogger builds a Logger. mode "prod"/"production" selects zap's
// production config; anything else (including "") selects development.
func NewLogger(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{sugar: zl.Sugar()}, nil
}

// NopLogger returns a Logger that discards everything, for callers
// (tests, or hosts that don't want conductor logging) that still need
// a non-nil *Logger to pass around.
func NopLogger() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() { _ = l.sugar.Sync() }

func (l *Logger) Debug(msg string, keysAndValues ...any) { l.sugar.Debugw(msg, keysAndValues...) }
func (l *Logger) Info(msg string, keysAndValues ...any)  { l.sugar.Infow(msg, keysAndValues...) }
func (l *Logger) Warn(msg string, keysAndValues ...any)  { l.sugar.Warnw(msg, keysAndValues...) }
func (l *Logger) Error(msg string, keysAndValues ...any) { l.sugar.Errorw(msg, keysAndValues...) }

// With returns a child Logger carrying additional structured fields
// (e.g. the run's correlation ID).
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...)}
}
