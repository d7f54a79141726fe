// Package log provides structured logging for dropsort, backed by logrus.
// All application packages log through this package rather than using
// logrus, fmt, or the standard library logger directly.
package log

import (
	"context"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"dropsort/internal/errors"
)

var (
	debugEnabled atomic.Bool
	logger       = NewLogger()
)

// Field is a single structured key/value pair attached to a log line
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger wraps a logrus logger with the field helpers used across the
// application
type Logger struct {
	rus  *logrus.Logger
	file *os.File
}

// Option configures a Logger
type Option func(*Logger)

// WithOutput directs log lines to w instead of stdout
func WithOutput(w io.Writer) Option {
	return func(l *Logger) {
		l.rus.SetOutput(w)
	}
}

// WithJSON switches the line format to JSON
func WithJSON() Option {
	return func(l *Logger) {
		l.rus.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyMsg:   "message",
				logrus.FieldKeyLevel: "level",
			},
		})
	}
}

// WithLevel sets the minimum level emitted by this logger. Unparseable
// levels are ignored with a warning. Debug lines additionally require
// SetDebug(true).
func WithLevel(level string) Option {
	return func(l *Logger) {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			l.rus.Warnf("unknown log level %q, keeping %s", level, l.rus.GetLevel())
			return
		}
		l.rus.SetLevel(parsed)
	}
}

// WithFile duplicates log lines into the named file in addition to stdout.
// The file is created when missing and appended to otherwise.
func WithFile(path string) Option {
	return func(l *Logger) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			l.rus.WithField("path", path).Warnf("cannot open log file: %v", err)
			return
		}
		l.file = f
		l.rus.SetOutput(io.MultiWriter(os.Stdout, f))
	}
}

// NewLogger builds a Logger with the default text format on stdout
func NewLogger(opts ...Option) *Logger {
	rus := logrus.New()
	rus.SetOutput(os.Stdout)
	rus.SetLevel(logrus.DebugLevel)
	rus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableColors:   true,
	})
	l := &Logger{rus: rus}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Configure rebuilds the package-level logger
func Configure(opts ...Option) {
	logger = NewLogger(opts...)
}

// SetDebug toggles debug-level output for all loggers
func SetDebug(debug bool) {
	debugEnabled.Store(debug)
}

// Entry carries accumulated fields toward a final log call
type Entry struct {
	e *logrus.Entry
}

func fieldsToLogrus(fields []Field) logrus.Fields {
	rf := make(logrus.Fields, len(fields))
	for _, f := range fields {
		rf[f.Key] = f.Value
	}
	return rf
}

// With attaches fields to the logger, returning an Entry
func (l *Logger) With(fields ...Field) *Entry {
	return &Entry{e: l.rus.WithFields(fieldsToLogrus(fields))}
}

// WithContext attaches a context to the entry
func (l *Logger) WithContext(ctx context.Context) *Entry {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Entry{e: l.rus.WithContext(ctx)}
}

// Info logs a message at info level
func (l *Logger) Info(msg string) { l.rus.Info(msg) }

// Infof logs a formatted message at info level
func (l *Logger) Infof(format string, args ...interface{}) { l.rus.Infof(format, args...) }

// Warn logs a message at warning level
func (l *Logger) Warn(msg string) { l.rus.Warn(msg) }

// Warnf logs a formatted message at warning level
func (l *Logger) Warnf(format string, args ...interface{}) { l.rus.Warnf(format, args...) }

// Error logs a message at error level
func (l *Logger) Error(msg string) { l.rus.Error(msg) }

// Errorf logs a formatted message at error level
func (l *Logger) Errorf(format string, args ...interface{}) { l.rus.Errorf(format, args...) }

// Debug logs a message at debug level when debug output is enabled
func (l *Logger) Debug(msg string) {
	if debugEnabled.Load() {
		l.rus.Debug(msg)
	}
}

// Debugf logs a formatted message at debug level when debug output is enabled
func (l *Logger) Debugf(format string, args ...interface{}) {
	if debugEnabled.Load() {
		l.rus.Debugf(format, args...)
	}
}

// With attaches further fields to the entry
func (e *Entry) With(fields ...Field) *Entry {
	return &Entry{e: e.e.WithFields(fieldsToLogrus(fields))}
}

// Info logs the entry at info level
func (e *Entry) Info(msg string) { e.e.Info(msg) }

// Infof logs the entry with a formatted message at info level
func (e *Entry) Infof(format string, args ...interface{}) { e.e.Infof(format, args...) }

// Warn logs the entry at warning level
func (e *Entry) Warn(msg string) { e.e.Warn(msg) }

// Warnf logs the entry with a formatted message at warning level
func (e *Entry) Warnf(format string, args ...interface{}) { e.e.Warnf(format, args...) }

// Error logs the entry at error level
func (e *Entry) Error(msg string) { e.e.Error(msg) }

// Errorf logs the entry with a formatted message at error level
func (e *Entry) Errorf(format string, args ...interface{}) { e.e.Errorf(format, args...) }

// Debug logs the entry at debug level when debug output is enabled
func (e *Entry) Debug(msg string) {
	if debugEnabled.Load() {
		e.e.Debug(msg)
	}
}

// Package-level logging functions delegating to the configured logger.
// The format argument accepts plain messages as well.

// Info logs a formatted message at info level
func Info(format string, args ...interface{}) { logger.Infof(format, args...) }

// Warn logs a formatted message at warning level
func Warn(format string, args ...interface{}) { logger.Warnf(format, args...) }

// Error logs a formatted message at error level
func Error(format string, args ...interface{}) { logger.Errorf(format, args...) }

// Debug logs a formatted message at debug level when debug output is enabled
func Debug(format string, args ...interface{}) { logger.Debugf(format, args...) }

// LogWithFields attaches fields to the package logger
func LogWithFields(fields ...Field) *Entry {
	return logger.With(fields...)
}

// LogWithError attaches err and its typed details to the package logger.
// Application error types contribute their kind and identifying fields.
func LogWithError(err error) *Entry {
	entry := logger.With(F("error", err))
	if err == nil {
		return entry
	}

	var appErr *errors.ApplicationError
	if errors.As(err, &appErr) {
		entry = entry.With(F("error_kind", int(appErr.Kind())))
	}
	var fileErr *errors.FileError
	if errors.As(err, &fileErr) {
		entry = entry.With(F("error_kind", int(fileErr.Kind())), F("path", fileErr.Path()))
	}
	var configErr *errors.ConfigError
	if errors.As(err, &configErr) {
		entry = entry.With(F("error_kind", int(configErr.Kind())), F("param", configErr.Param()))
	}
	var watchErr *errors.WatchError
	if errors.As(err, &watchErr) {
		entry = entry.With(F("error_kind", int(watchErr.Kind())), F("directory", watchErr.Dir()))
	}
	var journalErr *errors.JournalError
	if errors.As(err, &journalErr) {
		entry = entry.With(F("error_kind", int(journalErr.Kind())), F("operation", journalErr.Operation()))
	}
	return entry
}

// LogError logs err with a message at error level
func LogError(err error, msg string) {
	LogWithError(err).Error(msg)
}
