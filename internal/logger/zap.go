package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// traceLevel sits below zap's debug level.
const traceLevel = zapcore.DebugLevel - 1

// Config represents logging configuration
type Config struct {
	Level        string            `mapstructure:"level" yaml:"level"`                 // trace, debug, info, warn, error
	JSON         bool              `mapstructure:"json" yaml:"json"`                   // JSON output instead of console text
	Development  bool              `mapstructure:"development" yaml:"development"`     // development mode (stack traces on warn)
	DisableColor bool              `mapstructure:"disable_color" yaml:"disable_color"` // plain level names in console output
	ModuleLevels map[string]string `mapstructure:"module_levels" yaml:"module_levels"` // per-module level overrides
	Output       io.Writer         `mapstructure:"-" yaml:"-"`                         // defaults to stdout
}

// ZapLogger implements Logger on top of a zap core.
type ZapLogger struct {
	zap          *zap.Logger
	module       string
	level        zapcore.Level
	moduleLevels map[string]zapcore.Level
}

// NewZapLogger creates a root logger from config.
func NewZapLogger(config Config) *ZapLogger {
	level := ParseLevel(config.Level)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.MessageKey = "msg"
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderConfig.EncodeLevel = levelEncoder(!config.JSON && !config.DisableColor)

	var encoder zapcore.Encoder
	if config.JSON {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	out := config.Output
	if out == nil {
		out = os.Stdout
	}

	// The core accepts everything; per-module filtering happens in enabled.
	core := zapcore.NewCore(encoder, zapcore.AddSync(out), zap.NewAtomicLevelAt(traceLevel))

	opts := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(2)}
	if config.Development {
		opts = append(opts, zap.Development())
	}

	moduleLevels := make(map[string]zapcore.Level, len(config.ModuleLevels))
	for module, lvl := range config.ModuleLevels {
		moduleLevels[module] = ParseLevel(lvl)
	}

	return &ZapLogger{
		zap:          zap.New(core, opts...),
		level:        level,
		moduleLevels: moduleLevels,
	}
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *ZapLogger {
	return &ZapLogger{zap: zap.NewNop(), level: zapcore.FatalLevel}
}

// ParseLevel converts a level name to a zap level, defaulting to info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case string(LogLevelTrace):
		return traceLevel
	case string(LogLevelDebug):
		return zapcore.DebugLevel
	case string(LogLevelWarn), "warning":
		return zapcore.WarnLevel
	case string(LogLevelError):
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func levelEncoder(color bool) zapcore.LevelEncoder {
	return func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		if l == traceLevel {
			enc.AppendString("TRACE")
			return
		}
		if color {
			zapcore.CapitalColorLevelEncoder(l, enc)
			return
		}
		zapcore.CapitalLevelEncoder(l, enc)
	}
}

// Module returns a logger scoped to name; nested modules are joined with a dot.
func (l *ZapLogger) Module(name string) Logger {
	module := name
	if l.module != "" {
		module = l.module + "." + name
	}
	level := l.level
	if lvl, ok := l.moduleLevels[module]; ok {
		level = lvl
	} else if lvl, ok := l.moduleLevels[name]; ok {
		level = lvl
	}
	return &ZapLogger{
		zap:          l.zap.With(zap.String("module", module)),
		module:       module,
		level:        level,
		moduleLevels: l.moduleLevels,
	}
}

func (l *ZapLogger) Trace(msg string, fields ...Field) { l.write(traceLevel, msg, fields) }
func (l *ZapLogger) Debug(msg string, fields ...Field) { l.write(zapcore.DebugLevel, msg, fields) }
func (l *ZapLogger) Info(msg string, fields ...Field)  { l.write(zapcore.InfoLevel, msg, fields) }
func (l *ZapLogger) Warn(msg string, fields ...Field)  { l.write(zapcore.WarnLevel, msg, fields) }
func (l *ZapLogger) Error(msg string, fields ...Field) { l.write(zapcore.ErrorLevel, msg, fields) }

// Log writes msg at an explicit level.
func (l *ZapLogger) Log(level LogLevel, msg string, fields ...Field) {
	l.write(ParseLevel(string(level)), msg, fields)
}

// With returns a logger that adds fields to every entry.
func (l *ZapLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	clone := *l
	clone.zap = l.zap.With(toZapFields(fields)...)
	return &clone
}

// WithContext attaches request and trace ids found in ctx.
func (l *ZapLogger) WithContext(ctx context.Context) Logger {
	return l.With(contextFields(ctx)...)
}

// Flush syncs the underlying core.
func (l *ZapLogger) Flush() error {
	err := l.zap.Sync()
	// Syncing stdout/stderr fails with EINVAL on most terminals.
	if err != nil && strings.Contains(err.Error(), "invalid argument") {
		return nil
	}
	return err
}

func (l *ZapLogger) write(level zapcore.Level, msg string, fields []Field) {
	if level < l.level {
		return
	}
	if ce := l.zap.Check(level, msg); ce != nil {
		ce.Write(toZapFields(fields)...)
	}
}

func toZapFields(fields []Field) []zap.Field {
	zf := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		f = redactField(f)
		zf = append(zf, zap.Any(f.Key, f.Value))
	}
	return zf
}
