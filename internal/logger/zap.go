// Package logger provides a structured logger using Zap with Sentry integration.
package logger

import (
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration.
type Config struct {
	Name   string // service name stamped on every entry, optional
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// SentryConfig holds Sentry configuration.
type SentryConfig struct {
	Enabled     bool
	DSN         string
	Environment string
	SampleRate  float64
}

// Logger wraps zap.Logger with Sentry integration.
type Logger struct {
	*zap.Logger
	sentryEnabled bool
}

// New creates a new Logger instance with optional Sentry integration. Error
// level and above is teed to Sentry when enabled.
func New(cfg Config, sentryCfg SentryConfig) (*Logger, error) {
	if sentryCfg.Enabled && sentryCfg.DSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              sentryCfg.DSN,
			Environment:      sentryCfg.Environment,
			SampleRate:       sentryCfg.SampleRate,
			AttachStacktrace: true,
		})
		if err != nil {
			return nil, err
		}
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	output, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(buildEncoder(cfg.Format), output, level)
	if sentryCfg.Enabled {
		core = zapcore.NewTee(core, newSentryCore(level))
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Name != "" {
		opts = append(opts, zap.Fields(zap.String("service", cfg.Name)))
	}

	return &Logger{
		Logger:        zap.New(core, opts...),
		sentryEnabled: sentryCfg.Enabled,
	}, nil
}

func buildEncoder(format string) zapcore.Encoder {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if format == "console" {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

		return zapcore.NewConsoleEncoder(encCfg)
	}

	return zapcore.NewJSONEncoder(encCfg)
}

func openOutput(output string) (zapcore.WriteSyncer, error) {
	switch output {
	case "stdout", "":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	default:
		file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, err
		}

		return zapcore.AddSync(file), nil
	}
}

// Sync flushes any buffered log entries and Sentry events.
func (l *Logger) Sync() error {
	if l.sentryEnabled {
		sentry.Flush(2 * time.Second)
	}

	return l.Logger.Sync()
}

// sentryCore implements zapcore.Core to forward error-level entries to Sentry.
type sentryCore struct {
	zapcore.LevelEnabler
	fields []zapcore.Field
}

func newSentryCore(level zapcore.Level) *sentryCore {
	return &sentryCore{LevelEnabler: level}
}

func (c *sentryCore) With(fields []zapcore.Field) zapcore.Core {
	return &sentryCore{
		LevelEnabler: c.LevelEnabler,
		fields:       append(c.fields, fields...),
	}
}

func (c *sentryCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	// Only errors and above go to Sentry
	if entry.Level >= zapcore.ErrorLevel {
		return checked.AddCore(entry, c)
	}

	return checked
}

func (c *sentryCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	event := sentry.NewEvent()
	event.Level = sentryLevel(entry.Level)
	event.Message = entry.Message
	event.Logger = entry.LoggerName
	event.Timestamp = entry.Time
	event.Extra = fieldsToMap(append(c.fields, fields...))

	sentry.CaptureEvent(event)

	return nil
}

func (c *sentryCore) Sync() error {
	sentry.Flush(2 * time.Second)

	return nil
}

func sentryLevel(level zapcore.Level) sentry.Level {
	switch level {
	case zapcore.DebugLevel:
		return sentry.LevelDebug
	case zapcore.InfoLevel:
		return sentry.LevelInfo
	case zapcore.WarnLevel:
		return sentry.LevelWarning
	case zapcore.ErrorLevel:
		return sentry.LevelError
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return sentry.LevelFatal
	default:
		return sentry.LevelInfo
	}
}

// fieldsToMap converts zap fields to a map for Sentry extra data.
func fieldsToMap(fields []zapcore.Field) map[string]interface{} {
	m := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		switch f.Type {
		case zapcore.StringType:
			m[f.Key] = f.String
		case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type:
			m[f.Key] = f.Integer
		case zapcore.Float64Type, zapcore.Float32Type:
			m[f.Key] = float64(f.Integer)
		case zapcore.BoolType:
			m[f.Key] = f.Integer == 1
		case zapcore.DurationType:
			m[f.Key] = time.Duration(f.Integer).String()
		default:
			if f.Interface != nil {
				m[f.Key] = f.Interface
			}
		}
	}

	return m
}
