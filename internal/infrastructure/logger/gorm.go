package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// QueryLogger routes GORM statements to zap with the request and tenant of
// the calling context. Failed statements log at error, slow ones at warn and
// the rest at debug when the level is Info.
type QueryLogger struct {
	log       *zap.Logger
	level     gormlogger.LogLevel
	slowQuery time.Duration
	// not found is an expected outcome of lookups, silent unless asked for
	logNotFound bool
}

type QueryLoggerOption func(*QueryLogger)

// WithSlowQuery sets the duration above which a statement is logged as slow.
// Zero disables slow query logging.
func WithSlowQuery(d time.Duration) QueryLoggerOption {
	return func(l *QueryLogger) { l.slowQuery = d }
}

// WithNotFoundLogged logs gorm.ErrRecordNotFound like any other error
func WithNotFoundLogged() QueryLoggerOption {
	return func(l *QueryLogger) { l.logNotFound = true }
}

func NewQueryLogger(log *zap.Logger, level gormlogger.LogLevel, opts ...QueryLoggerOption) *QueryLogger {
	l := &QueryLogger{
		log:       log.Named("sql"),
		level:     level,
		slowQuery: defaultSlowQuery,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *QueryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	copied := *l
	copied.level = level
	return &copied
}

func (l *QueryLogger) Info(_ context.Context, msg string, data ...any) {
	l.printf(gormlogger.Info, msg, data)
}

func (l *QueryLogger) Warn(_ context.Context, msg string, data ...any) {
	l.printf(gormlogger.Warn, msg, data)
}

func (l *QueryLogger) Error(_ context.Context, msg string, data ...any) {
	l.printf(gormlogger.Error, msg, data)
}

func (l *QueryLogger) printf(level gormlogger.LogLevel, msg string, data []any) {
	if l.level < level {
		return
	}
	sugar := l.log.Sugar()
	switch level {
	case gormlogger.Error:
		sugar.Errorf(msg, data...)
	case gormlogger.Warn:
		sugar.Warnf(msg, data...)
	default:
		sugar.Infof(msg, data...)
	}
}

func (l *QueryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var (
		level gormlogger.LogLevel
		msg   string
	)
	switch {
	case err != nil:
		if errors.Is(err, gormlogger.ErrRecordNotFound) && !l.logNotFound {
			return
		}
		level, msg = gormlogger.Error, "query failed"
	case l.slowQuery > 0 && elapsed > l.slowQuery:
		level, msg = gormlogger.Warn, "slow query"
	default:
		level, msg = gormlogger.Info, "query"
	}
	if l.level < level {
		return
	}

	statement, rows := fc()
	fields := []zap.Field{
		zap.String("sql", statement),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if tenant := GetTenantID(ctx); tenant != "" {
		fields = append(fields, zap.String("tenant_id", tenant))
	}

	switch level {
	case gormlogger.Error:
		l.log.Error(msg, append(fields, zap.Error(err))...)
	case gormlogger.Warn:
		l.log.Warn(msg, append(fields, zap.Duration("threshold", l.slowQuery))...)
	default:
		l.log.Debug(msg, fields...)
	}
}

// GormLevel maps the application log level to the GORM one. Statements are
// only traced at debug.
func GormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
