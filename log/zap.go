package log

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"moul.io/zapfilter"
)

type (
	Level  = zapcore.Level
	Field  = zap.Field
	Option = zap.Option

	Logger struct {
		l     *zap.Logger
		level Level
	}
)

const (
	DebugLevel  = zap.DebugLevel
	InfoLevel   = zap.InfoLevel
	WarnLevel   = zap.WarnLevel
	ErrorLevel  = zap.ErrorLevel
	DPanicLevel = zap.DPanicLevel
	PanicLevel  = zap.PanicLevel
	FatalLevel  = zap.FatalLevel
)

// aliases for zap field constructors
var (
	Skip       = zap.Skip
	Binary     = zap.Binary
	Bool       = zap.Bool
	ByteString = zap.ByteString
	Float64    = zap.Float64
	Float32    = zap.Float32
	Int        = zap.Int
	Int64      = zap.Int64
	Int32      = zap.Int32
	Uint       = zap.Uint
	Uint64     = zap.Uint64
	Uint32     = zap.Uint32
	String     = zap.String
	Stringer   = zap.Stringer
	Time       = zap.Time
	Duration   = zap.Duration
	Any        = zap.Any
	ErrorField = zap.Error

	WithCaller    = zap.WithCaller
	AddCallerSkip = zap.AddCallerSkip
)

func ParseLevel(text string) (Level, error) {
	return zapcore.ParseLevel(text)
}

// WithFilterRules wraps the core with a zapfilter core honoring rules
// of the form "level1,level2:namespace1,namespace2 ..." (see zapfilter
// docs). Filtering applies to named loggers derived from this one.
func WithFilterRules(rules string) (Option, error) {
	filter, err := zapfilter.ParseRules(rules)
	if err != nil {
		return nil, err
	}
	return zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapfilter.NewFilteringCore(core, filter)
	}), nil
}

// New creates a Logger with a production (JSON) encoder writing to w.
func New(w io.Writer, level Level, opts ...Option) *Logger {
	if w == nil {
		panic("the writer is nil")
	}
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(cfg),
		zapcore.AddSync(w),
		level,
	)
	return &Logger{l: zap.New(core, opts...), level: level}
}

// DevLogger creates a Logger with a console encoder writing to w.
func DevLogger(w io.Writer, level Level, opts ...Option) *Logger {
	if w == nil {
		panic("the writer is nil")
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.AddSync(w),
		level,
	)
	return &Logger{l: zap.New(core, opts...), level: level}
}

func (l *Logger) Named(name string) *Logger {
	return &Logger{l: l.l.Named(name), level: l.level}
}

func (l *Logger) WithOptions(opts ...Option) *Logger {
	return &Logger{l: l.l.WithOptions(opts...), level: l.level}
}

func (l *Logger) Level() Level { return l.level }

func (l *Logger) Debug(msg string, fields ...Field)  { l.l.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)   { l.l.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)   { l.l.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field)  { l.l.Error(msg, fields...) }
func (l *Logger) DPanic(msg string, fields ...Field) { l.l.DPanic(msg, fields...) }
func (l *Logger) Panic(msg string, fields ...Field)  { l.l.Panic(msg, fields...) }
func (l *Logger) Fatal(msg string, fields ...Field)  { l.l.Fatal(msg, fields...) }

func (l *Logger) Fatalf(template string, args ...interface{}) {
	l.l.Sugar().Fatalf(template, args...)
}

func (l *Logger) Sync() error { return l.l.Sync() }

var std = New(os.Stderr, InfoLevel)

func Default() *Logger { return std }

// ResetDefault replaces the default logger and rebinds the package
// level log functions. Call during process startup only; it is not
// safe for concurrent use.
func ResetDefault(l *Logger) {
	std = l
	Debug = std.Debug
	Info = std.Info
	Warn = std.Warn
	Error = std.Error
	DPanic = std.DPanic
	Panic = std.Panic
	Fatal = std.Fatal
	Fatalf = std.Fatalf
}

var (
	Debug  = std.Debug
	Info   = std.Info
	Warn   = std.Warn
	Error  = std.Error
	DPanic = std.DPanic
	Panic  = std.Panic
	Fatal  = std.Fatal
	Fatalf = std.Fatalf
)

func Sync() error {
	if std != nil {
		return std.Sync()
	}
	return nil
}

type ctxKey struct{}

func AddToContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// GetFromContext returns the logger stored in ctx, falling back to the
// default logger.
func GetFromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return Default()
}
