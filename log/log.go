package log

import (
	"context"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"moul.io/zapfilter"
)

type (
	Level  = zapcore.Level
	Field  = zap.Field
	Option = zap.Option
)

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
	FatalLevel = zapcore.FatalLevel
)

var (
	WithCaller    = zap.WithCaller
	AddCallerSkip = zap.AddCallerSkip

	String   = zap.String
	Int      = zap.Int
	Int64    = zap.Int64
	Uint     = zap.Uint
	Float    = zap.Float64
	Bool     = zap.Bool
	Any      = zap.Any
	Time     = zap.Time
	Duration = zap.Duration
	Strings  = zap.Strings
)

func ErrorField(err error) Field {
	return zap.Error(err)
}

type Logger struct {
	l     *zap.Logger
	level Level
}

type ctxKey struct{}

var std = New(os.Stderr, InfoLevel)

func Default() *Logger {
	return std
}

// ResetDefault replaces the package logger. Not safe to call concurrently with logging.
func ResetDefault(l *Logger) {
	std = l
}

func ParseLevel(s string) (Level, error) {
	return zapcore.ParseLevel(s)
}

// New creates a logger writing json lines to writer.
func New(writer io.Writer, level Level, opts ...Option) *Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(cfg),
		zapcore.AddSync(writer),
		level)
	return &Logger{l: zap.New(core, opts...), level: level}
}

// DevLogger creates a human readable console logger.
func DevLogger(writer io.Writer, level Level, opts ...Option) *Logger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.TimeOnly)
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.AddSync(writer),
		level)
	return &Logger{l: zap.New(core, opts...), level: level}
}

// WithFilter restricts output using zapfilter rules, e.g. "info+:* debug:race.engine".
// An empty rule string returns the logger unchanged.
func (l *Logger) WithFilter(rules string) (*Logger, error) {
	if rules == "" {
		return l, nil
	}
	filter, err := zapfilter.ParseRules(rules)
	if err != nil {
		return nil, err
	}
	filtered := l.l.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapfilter.NewFilteringCore(c, filter)
	}))
	return &Logger{l: filtered, level: l.level}, nil
}

func (l *Logger) Named(name string) *Logger {
	return &Logger{l: l.l.Named(name), level: l.level}
}

func (l *Logger) WithOptions(opts ...Option) *Logger {
	return &Logger{l: l.l.WithOptions(opts...), level: l.level}
}

func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{l: l.l.With(fields...), level: l.level}
}

func (l *Logger) Level() Level {
	return l.level
}

func (l *Logger) Debug(msg string, fields ...Field) { l.l.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.l.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.l.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.l.Error(msg, fields...) }
func (l *Logger) Fatal(msg string, fields ...Field) { l.l.Fatal(msg, fields...) }

func (l *Logger) Sync() error {
	return l.l.Sync()
}

// Zap exposes the underlying logger for libraries expecting a *zap.Logger.
func (l *Logger) Zap() *zap.Logger {
	return l.l
}

func Debug(msg string, fields ...Field) { std.l.Debug(msg, fields...) }
func Info(msg string, fields ...Field)  { std.l.Info(msg, fields...) }
func Warn(msg string, fields ...Field)  { std.l.Warn(msg, fields...) }
func Error(msg string, fields ...Field) { std.l.Error(msg, fields...) }
func Fatal(msg string, fields ...Field) { std.l.Fatal(msg, fields...) }

func Sync() error {
	return std.Sync()
}

func AddToContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// GetFromContext returns the logger stored in ctx or the default logger.
func GetFromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return Default()
}
