package logger

import (
	"context"
	"fmt"
	"time"
)

// trace is one rendered query as reported by Trace
type trace struct {
	level   LogLevel
	msg     string
	sql     string
	joins   []string
	elapsed time.Duration
	err     error
	// slow is the exceeded threshold, zero unless the build was slow
	slow time.Duration
}

// newTrace decides at which level a rendered query is reported, ok is false
// when it is not reported at all. fc is only called for reported queries.
func newTrace(level LogLevel, threshold time.Duration, begin time.Time, fc func() (string, []string), err error) (tr trace, ok bool) {
	if level <= Silent {
		return tr, false
	}

	tr.elapsed, tr.err = time.Since(begin), err
	switch {
	case err != nil && level >= Error:
		tr.level, tr.msg = Error, "query build failed"
	case threshold != 0 && tr.elapsed > threshold && level >= Warn:
		tr.level, tr.msg, tr.slow = Warn, "slow query build", threshold
	case level >= Info:
		tr.level, tr.msg = Info, "query built"
	default:
		return tr, false
	}

	tr.sql, tr.joins = fc()
	return tr, true
}

func (tr trace) duration() string {
	return fmt.Sprintf("%.3fms", float64(tr.elapsed.Nanoseconds())/1e6)
}

// settings are the Config values the structured adapters apply
type settings struct {
	LogLevel      LogLevel
	SlowThreshold time.Duration
	Parameterized bool
}

func newSettings(config Config) settings {
	return settings{
		LogLevel:      config.LogLevel,
		SlowThreshold: config.SlowThreshold,
		Parameterized: config.ParameterizedQueries,
	}
}

func (s settings) enabled(level LogLevel) bool {
	return s.LogLevel >= level && level > Silent
}

func (s settings) trace(begin time.Time, fc func() (string, []string), err error) (trace, bool) {
	return newTrace(s.LogLevel, s.SlowThreshold, begin, fc, err)
}

// ParamsFilter drops the vars of parameterized loggers
func (s settings) ParamsFilter(_ context.Context, sql string, params ...interface{}) (string, []interface{}) {
	if s.Parameterized {
		return sql, nil
	}
	return sql, params
}
