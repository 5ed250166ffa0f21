package database

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gormLogger routes gorm's statement log to zerolog. Failed statements are
// logged at debug; callers report the errors they care about.
type gormLogger struct {
	zl   zerolog.Logger
	slow time.Duration
}

var _ gormlogger.Interface = (*gormLogger)(nil)

func newGormLogger(zl zerolog.Logger, slow time.Duration) *gormLogger {
	return &gormLogger{zl: zl, slow: slow}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	out := *l
	if level == gormlogger.Silent {
		out.zl = zerolog.Nop()
	}
	return &out
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...any) {
	l.zl.Info().Msgf(msg, args...)
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...any) {
	l.zl.Warn().Msgf(msg, args...)
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...any) {
	l.zl.Error().Msgf(msg, args...)
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.zl.Debug().Err(err).Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("Statement failed")
	case l.slow > 0 && elapsed > l.slow:
		sql, rows := fc()
		l.zl.Warn().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("Slow statement")
	}
}
