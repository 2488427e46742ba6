/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package logging constructs the process-wide zap logger and scopes it
// onto a context the way knative.dev/pkg/logging does throughout the
// teacher's controllers (logging.WithLogger / logging.FromContext).
package logging

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"knative.dev/pkg/logging"
)

// levelFor maps the six verbosity tiers this scheduler accepts (off,
// error, warn, info, debug, trace) onto zapcore.Level. zap has no "trace"
// tier below debug, so trace maps to debug with an extra stack annotation
// enabled below; "off" maps to the level just above Fatal, which no log
// entry reaches, so the logger is built but never writes.
func levelFor(verbosity string) (zapcore.Level, error) {
	switch verbosity {
	case "off":
		return zapcore.Level(zapcore.FatalLevel + 1), nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "trace":
		return zapcore.DebugLevel, nil
	default:
		return 0, fmt.Errorf("unknown verbosity %q", verbosity)
	}
}

// NewLogger builds a zap.SugaredLogger at the given verbosity. "trace"
// additionally attaches a stacktrace to every entry down to debug level for
// the extra detail that tier implies; other tiers keep zap's production
// default of stacktraces on error and above.
func NewLogger(verbosity string) (*zap.SugaredLogger, error) {
	level, err := levelFor(verbosity)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	var buildOpts []zap.Option
	if verbosity == "trace" {
		buildOpts = append(buildOpts, zap.AddStacktrace(zapcore.DebugLevel))
	}
	logger, err := cfg.Build(buildOpts...)
	if err != nil {
		return nil, fmt.Errorf("building zap logger: %w", err)
	}
	return logger.Sugar(), nil
}

// WithLogger scopes logger onto ctx for downstream logging.FromContext
// calls.
func WithLogger(ctx context.Context, logger *zap.SugaredLogger) context.Context {
	return logging.WithLogger(ctx, logger)
}
