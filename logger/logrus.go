package logger

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kirschbaum-development/powerjoins/utils"
)

// LogrusLogger reports built queries as logrus entries
type LogrusLogger struct {
	settings
	Logger *logrus.Logger
}

// NewLogrusLogger creates a new logger using logrus
func NewLogrusLogger(logger *logrus.Logger, config Config) Interface {
	return &LogrusLogger{settings: newSettings(config), Logger: logger}
}

func (l *LogrusLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *LogrusLogger) entry(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithField("file", utils.FileWithLineNum())
	if ctx != nil {
		entry = entry.WithContext(ctx)
	}
	return entry
}

func (l *LogrusLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.enabled(Info) {
		l.entry(ctx).Infof(msg, data...)
	}
}

func (l *LogrusLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.enabled(Warn) {
		l.entry(ctx).Warnf(msg, data...)
	}
}

func (l *LogrusLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.enabled(Error) {
		l.entry(ctx).Errorf(msg, data...)
	}
}

func (l *LogrusLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, []string), err error) {
	tr, ok := l.trace(begin, fc, err)
	if !ok {
		return
	}

	fields := logrus.Fields{
		"duration": tr.duration(),
		"sql":      tr.sql,
		"joins":    strings.Join(tr.joins, ","),
	}
	if tr.slow != 0 {
		fields["slow_threshold"] = tr.slow.String()
	}
	entry := l.entry(ctx).WithFields(fields)
	if tr.err != nil {
		entry = entry.WithError(tr.err)
	}
	entry.Log(LogrusLevel(tr.level), tr.msg)
}

// LogrusLevel converts LogLevel to logrus.Level
func LogrusLevel(level LogLevel) logrus.Level {
	switch level {
	case Silent:
		return logrus.PanicLevel
	case Error:
		return logrus.ErrorLevel
	case Warn:
		return logrus.WarnLevel
	default:
		return logrus.InfoLevel
	}
}
