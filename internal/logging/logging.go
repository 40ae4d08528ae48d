package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a deliberately small, framework-agnostic logging interface.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger with persistent fields.
	With(fields ...Field) Logger
}

// Field is a simple key/value pair for structured logging fields.
type Field struct {
	Key   string
	Value any
}

// Config selects the level and output format of loggers built by New.
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// ZeroLogger implements Logger on top of zerolog.
type ZeroLogger struct {
	zl zerolog.Logger
}

// NewStdoutLogger creates a JSON logger on stdout at debug level. component is
// attached as a persistent field when non-empty.
func NewStdoutLogger(component string) *ZeroLogger {
	return New(os.Stdout, Config{Level: "debug", Format: "json"}).withComponent(component)
}

// New builds a ZeroLogger writing to w.
func New(w io.Writer, cfg Config) *ZeroLogger {
	if strings.EqualFold(cfg.Format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &ZeroLogger{zl: zl}
}

func (z *ZeroLogger) withComponent(component string) *ZeroLogger {
	if component == "" {
		return z
	}
	return &ZeroLogger{zl: z.zl.With().Str("component", component).Logger()}
}

func (z *ZeroLogger) Debug(msg string, fields ...Field) { emit(z.zl.Debug(), msg, fields) }

func (z *ZeroLogger) Info(msg string, fields ...Field) { emit(z.zl.Info(), msg, fields) }

func (z *ZeroLogger) Warn(msg string, fields ...Field) { emit(z.zl.Warn(), msg, fields) }

func (z *ZeroLogger) Error(msg string, fields ...Field) { emit(z.zl.Error(), msg, fields) }

func (z *ZeroLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return z
	}
	return &ZeroLogger{zl: z.zl.With().Fields(toMap(fields)).Logger()}
}

func emit(ev *zerolog.Event, msg string, fields []Field) {
	if ev == nil {
		return
	}
	if len(fields) > 0 {
		ev = ev.Fields(toMap(fields))
	}
	ev.Msg(msg)
}

func toMap(fields []Field) map[string]any {
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			m[f.Key] = err.Error()
			continue
		}
		m[f.Key] = f.Value
	}
	return m
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &ZeroLogger{zl: zerolog.Nop()}
}
