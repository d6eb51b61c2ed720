package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

const defaultSlowQuery = 200 * time.Millisecond

// QueryLogger sends gorm's statement trace to slog. Lookups that miss and
// tag inserts that lose the uniqueness race are expected outcomes, so they
// are logged at debug instead of error.
type QueryLogger struct {
	logger        *slog.Logger
	level         logger.LogLevel
	slowThreshold time.Duration
}

// NewQueryLogger maps the service LOG_LEVEL onto gorm's levels.
func NewQueryLogger(l *slog.Logger, level string) *QueryLogger {
	gormLevel := logger.Warn // slow queries and errors

	switch level {
	case "DEBUG":
		gormLevel = logger.Info // every statement
	case "ERROR":
		gormLevel = logger.Error
	}

	return &QueryLogger{
		logger:        l.With("component", "gorm"),
		level:         gormLevel,
		slowThreshold: defaultSlowQuery,
	}
}

func (l *QueryLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *QueryLogger) Info(ctx context.Context, msg string, args ...any) {
	l.logf(ctx, logger.Info, slog.LevelInfo, msg, args...)
}

func (l *QueryLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.logf(ctx, logger.Warn, slog.LevelWarn, msg, args...)
}

func (l *QueryLogger) Error(ctx context.Context, msg string, args ...any) {
	l.logf(ctx, logger.Error, slog.LevelError, msg, args...)
}

func (l *QueryLogger) logf(ctx context.Context, threshold logger.LogLevel, lvl slog.Level, msg string, args ...any) {
	if l.level < threshold {
		return
	}
	l.logger.Log(ctx, lvl, fmt.Sprintf(msg, args...))
}

func (l *QueryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	attrs := []slog.Attr{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("latency", elapsed),
		slog.String("source", utils.FileWithLineNum()),
	}

	switch {
	case err != nil && isExpectedMiss(err):
		l.logger.LogAttrs(ctx, slog.LevelDebug, "sql_miss", append(attrs, slog.String("err", err.Error()))...)
	case err != nil && l.level >= logger.Error:
		l.logger.LogAttrs(ctx, slog.LevelError, "sql_error", append(attrs, slog.String("err", err.Error()))...)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= logger.Warn:
		l.logger.LogAttrs(ctx, slog.LevelWarn, "sql_slow", append(attrs, slog.Duration("slow_threshold", l.slowThreshold))...)
	case l.level >= logger.Info:
		l.logger.LogAttrs(ctx, slog.LevelInfo, "sql", attrs...)
	}
}

func isExpectedMiss(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || isUniqueViolation(err)
}
