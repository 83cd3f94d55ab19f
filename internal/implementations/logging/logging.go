package logging

import (
	"context"
	"medbot/internal/core/domain/logging"
	"os"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level string
	// File, when set, receives a copy of every record and is rotated by size.
	File string
	// ReportErrors sends error records to Sentry. Sentry must be initialized by the caller.
	ReportErrors bool
}

type ZapLogger struct {
	logger       *zap.Logger
	sugar        *zap.SugaredLogger
	reportErrors bool
}

func NewZapLogger(config Config) (*ZapLogger, error) {
	level := zapcore.InfoLevel
	if config.Level != "" {
		parsed, err := zapcore.ParseLevel(config.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	sinks := []zapcore.WriteSyncer{zapcore.Lock(os.Stdout)}
	if config.File != "" {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   config.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}))
	}
	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)

	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	return &ZapLogger{logger: logger, sugar: logger.Sugar(), reportErrors: config.ReportErrors}, nil
}

func (l *ZapLogger) Sync() {
	_ = l.logger.Sync()
}

func (l *ZapLogger) Debug(ctx context.Context, msg string, entries ...logging.LogEntry) {
	l.sugar.Debugw(msg, keysAndValues(entries...)...)
}

func (l *ZapLogger) Info(ctx context.Context, msg string, entries ...logging.LogEntry) {
	l.sugar.Infow(msg, keysAndValues(entries...)...)
}

func (l *ZapLogger) Warning(ctx context.Context, msg string, entries ...logging.LogEntry) {
	l.sugar.Warnw(msg, keysAndValues(entries...)...)
}

func (l *ZapLogger) Error(ctx context.Context, msg string, entries ...logging.LogEntry) {
	l.sugar.Errorw(msg, keysAndValues(entries...)...)
	if l.reportErrors {
		report(msg, entries...)
	}
}

func report(msg string, entries ...logging.LogEntry) {
	sentry.WithScope(func(scope *sentry.Scope) {
		var cause error
		for _, entry := range entries {
			if err, ok := entry.Value.(error); ok && entry.Key == "err" {
				cause = err
				continue
			}
			scope.SetExtra(entry.Key, entry.Value)
		}
		if cause != nil {
			scope.SetExtra("msg", msg)
			sentry.CaptureException(cause)
			return
		}
		sentry.CaptureMessage(msg)
	})
}

func keysAndValues(entries ...logging.LogEntry) []interface{} {
	args := make([]interface{}, 0, len(entries)*2)
	for _, e := range entries {
		args = append(args, e.Key, e.Value)
	}
	return args
}
