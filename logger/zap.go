package logger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kirschbaum-development/powerjoins/utils"
)

// ZapLogger reports built queries as zap entries. Joined tables are logged
// under "joins" by the name the query refers to them with.
type ZapLogger struct {
	settings
	Logger *zap.Logger
}

// NewZapLogger creates a new logger using zap
func NewZapLogger(logger *zap.Logger, config Config) Interface {
	return &ZapLogger{settings: newSettings(config), Logger: logger}
}

// NewZapLoggerWithConfig builds the zap logger from zapConfig, or from the
// production config at the matching level
func NewZapLoggerWithConfig(config Config, zapConfig ...zap.Config) (Interface, error) {
	var zapCfg zap.Config
	if len(zapConfig) > 0 {
		zapCfg = zapConfig[0]
	} else {
		zapCfg = zap.NewProductionConfig()
		zapCfg.Level = zap.NewAtomicLevelAt(ZapLevel(config.LogLevel))
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}
	return NewZapLogger(logger, config), nil
}

func (l *ZapLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *ZapLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.logf(Info, msg, data)
}

func (l *ZapLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.logf(Warn, msg, data)
}

func (l *ZapLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.logf(Error, msg, data)
}

func (l *ZapLogger) logf(level LogLevel, msg string, data []interface{}) {
	if !l.enabled(level) {
		return
	}
	if ce := l.Logger.Check(ZapLevel(level), fmt.Sprintf(msg, data...)); ce != nil {
		ce.Write(zap.String("file", utils.FileWithLineNum()))
	}
}

func (l *ZapLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, []string), err error) {
	tr, ok := l.trace(begin, fc, err)
	if !ok {
		return
	}

	ce := l.Logger.Check(ZapLevel(tr.level), tr.msg)
	if ce == nil {
		return
	}
	fields := []zap.Field{
		zap.String("file", utils.FileWithLineNum()),
		zap.String("duration", tr.duration()),
		zap.String("sql", tr.sql),
		zap.Strings("joins", tr.joins),
	}
	if tr.slow != 0 {
		fields = append(fields, zap.Duration("slow_threshold", tr.slow))
	}
	if tr.err != nil {
		fields = append(fields, zap.Error(tr.err))
	}
	ce.Write(fields...)
}

// WithFields adds fields to every entry
func (l *ZapLogger) WithFields(fields ...zap.Field) *ZapLogger {
	newLogger := *l
	newLogger.Logger = l.Logger.With(fields...)
	return &newLogger
}

// ZapLevel converts LogLevel to zapcore.Level
func ZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case Silent:
		return zapcore.DPanicLevel
	case Error:
		return zapcore.ErrorLevel
	case Warn:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
