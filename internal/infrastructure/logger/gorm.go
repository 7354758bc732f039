package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormConfig tunes the zap-backed GORM logger
type GormConfig struct {
	Level gormlogger.LogLevel
	// SlowThreshold turns queries slower than it into warnings; zero disables
	SlowThreshold time.Duration
	// FullSQL renders bound values into logged statements. When false the
	// statements keep their placeholders, so amounts and names stay out of logs.
	FullSQL bool
}

// GormLogger implements gormlogger.Interface on top of zap
type GormLogger struct {
	cfg GormConfig
	log *zap.Logger
}

// NewGormLogger creates a GORM logger writing to the "gorm" child of log
func NewGormLogger(log *zap.Logger, cfg GormConfig) *GormLogger {
	return &GormLogger{cfg: cfg, log: log.Named("gorm")}
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.cfg.Level = level
	return &clone
}

// ParamsFilter implements gorm.ParamsFilter. Dropping the params makes GORM
// log the statement with placeholders.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, params ...any) (string, []any) {
	if l.cfg.FullSQL {
		return sql, params
	}
	return sql, nil
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, msg, data)
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, msg, data)
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, level gormlogger.LogLevel, msg string, data []any) {
	if l.cfg.Level < level {
		return
	}
	sugar := Enrich(ctx, l.log).Sugar()
	switch level {
	case gormlogger.Error:
		sugar.Errorf(msg, data...)
	case gormlogger.Warn:
		sugar.Warnf(msg, data...)
	default:
		sugar.Infof(msg, data...)
	}
}

// Trace implements gormlogger.Interface. Record-not-found is never logged
// because repositories turn it into a domain NOT_FOUND.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	level := l.cfg.Level
	if level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	slow := l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold
	failed := err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound)

	var (
		msg   string
		write func(string, ...zap.Field)
		log   = Enrich(ctx, l.log)
	)
	switch {
	case failed && level >= gormlogger.Error:
		msg, write = "SQL Error", log.Error
	case slow && level >= gormlogger.Warn:
		msg, write = "Slow SQL", log.Warn
	case err == nil && level >= gormlogger.Info:
		msg, write = "SQL Query", log.Debug
	default:
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if failed {
		fields = append(fields, zap.Error(err))
	}
	if slow {
		fields = append(fields, zap.Duration("threshold", l.cfg.SlowThreshold))
	}
	write(msg, fields...)
}

// MapGormLogLevel maps an application log level to a GORM log level
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
