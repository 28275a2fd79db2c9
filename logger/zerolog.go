package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/kirschbaum-development/powerjoins/utils"
)

// ZerologLogger reports built queries as zerolog events
type ZerologLogger struct {
	settings
	Logger zerolog.Logger
}

// NewZerologLogger creates a new logger using zerolog
func NewZerologLogger(logger zerolog.Logger, config Config) Interface {
	return &ZerologLogger{settings: newSettings(config), Logger: logger}
}

// NewZerologConsoleLogger writes human readable entries to out, stdout when nil
func NewZerologConsoleLogger(config Config, out io.Writer) Interface {
	if out == nil {
		out = os.Stdout
	}

	consoleWriter := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = out
		w.TimeFormat = time.RFC3339
		w.NoColor = !config.Colorful
	})
	logger := zerolog.New(consoleWriter).
		Level(ZerologLevel(config.LogLevel)).
		With().
		Timestamp().
		Logger()

	return NewZerologLogger(logger, config)
}

func (l *ZerologLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *ZerologLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.logf(ctx, Info, msg, data)
}

func (l *ZerologLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.logf(ctx, Warn, msg, data)
}

func (l *ZerologLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.logf(ctx, Error, msg, data)
}

func (l *ZerologLogger) logf(ctx context.Context, level LogLevel, msg string, data []interface{}) {
	if l.enabled(level) {
		l.event(ctx, level).Msgf(msg, data...)
	}
}

// event is nil, and so a no-op, when the zerolog level filters it out
func (l *ZerologLogger) event(ctx context.Context, level LogLevel) *zerolog.Event {
	event := l.Logger.WithLevel(ZerologLevel(level)).Str("file", utils.FileWithLineNum())
	if ctx != nil {
		event = event.Ctx(ctx)
	}
	return event
}

func (l *ZerologLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, []string), err error) {
	tr, ok := l.trace(begin, fc, err)
	if !ok {
		return
	}

	event := l.event(ctx, tr.level).
		Str("duration", tr.duration()).
		Str("sql", tr.sql).
		Strs("joins", tr.joins)
	if tr.slow != 0 {
		event = event.Dur("slow_threshold", tr.slow)
	}
	event.Err(tr.err).Msg(tr.msg)
}

// ZerologLevel converts LogLevel to zerolog.Level
func ZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case Silent:
		return zerolog.Disabled
	case Error:
		return zerolog.ErrorLevel
	case Warn:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
