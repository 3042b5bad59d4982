package main

import (
	"context"
	"log/slog"
	"os"

	glog "github.com/goliatone/go-logger/glog"
)

// slogLogger adapts log/slog to the glog contracts used across the module.
type slogLogger struct {
	base *slog.Logger
	ctx  context.Context
}

func newSlogLogger() *slogLogger {
	return &slogLogger{base: slog.New(slog.NewJSONHandler(os.Stdout, nil)), ctx: context.Background()}
}

func (l *slogLogger) GetLogger(name string) glog.Logger {
	return &slogLogger{base: l.base.With("logger", name), ctx: l.ctx}
}

func (l *slogLogger) WithFields(fields map[string]any) glog.Logger {
	args := make([]any, 0, len(fields)*2)
	for key, value := range fields {
		args = append(args, key, value)
	}
	return &slogLogger{base: l.base.With(args...), ctx: l.ctx}
}

func (l *slogLogger) WithContext(ctx context.Context) glog.Logger {
	if ctx == nil {
		ctx = context.Background()
	}
	return &slogLogger{base: l.base, ctx: ctx}
}

func (l *slogLogger) Trace(msg string, args ...any) {
	l.base.Log(l.ctx, slog.LevelDebug-4, msg, args...)
}

func (l *slogLogger) Debug(msg string, args ...any) {
	l.base.DebugContext(l.ctx, msg, args...)
}

func (l *slogLogger) Info(msg string, args ...any) {
	l.base.InfoContext(l.ctx, msg, args...)
}

func (l *slogLogger) Warn(msg string, args ...any) {
	l.base.WarnContext(l.ctx, msg, args...)
}

func (l *slogLogger) Error(msg string, args ...any) {
	l.base.ErrorContext(l.ctx, msg, args...)
}

func (l *slogLogger) Fatal(msg string, args ...any) {
	l.base.Log(l.ctx, slog.LevelError+4, msg, args...)
	os.Exit(1)
}

var (
	_ glog.Logger         = (*slogLogger)(nil)
	_ glog.LoggerProvider = (*slogLogger)(nil)
	_ glog.FieldsLogger   = (*slogLogger)(nil)
)
