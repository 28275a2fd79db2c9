package logger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirschbaum-development/powerjoins/utils"
)

type slogLogger struct {
	settings
	Logger *slog.Logger
}

// NewSlogLogger reports built queries through slog, the fields of a built
// query are grouped under "trace"
func NewSlogLogger(logger *slog.Logger, config Config) Interface {
	return &slogLogger{settings: newSettings(config), Logger: logger}
}

func (l *slogLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *slogLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.logf(ctx, Info, msg, data)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.logf(ctx, Warn, msg, data)
}

func (l *slogLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.logf(ctx, Error, msg, data)
}

func (l *slogLogger) logf(ctx context.Context, level LogLevel, msg string, data []interface{}) {
	if l.enabled(level) {
		l.log(ctx, SlogLevel(level), fmt.Sprintf(msg, data...))
	}
}

func (l *slogLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, []string), err error) {
	tr, ok := l.trace(begin, fc, err)
	if !ok {
		return
	}

	fields := []slog.Attr{
		slog.String("duration", tr.duration()),
		slog.String("sql", tr.sql),
		slog.Any("joins", tr.joins),
	}
	if tr.slow != 0 {
		fields = append(fields, slog.Duration("slow_threshold", tr.slow))
	}
	if tr.err != nil {
		fields = append(fields, slog.String("error", tr.err.Error()))
	}
	l.log(ctx, SlogLevel(tr.level), tr.msg, slog.Attr{Key: "trace", Value: slog.GroupValue(fields...)})
}

func (l *slogLogger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if ctx == nil {
		ctx = context.Background()
	}

	if !l.Logger.Enabled(ctx, level) {
		return
	}

	r := slog.NewRecord(time.Now(), level, msg, utils.CallerFrame().PC)
	r.Add(args...)
	_ = l.Logger.Handler().Handle(ctx, r)
}

// SlogLevel converts LogLevel to slog.Level
func SlogLevel(level LogLevel) slog.Level {
	switch level {
	case Error:
		return slog.LevelError
	case Warn:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
