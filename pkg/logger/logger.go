// Package logger provides a small structured logging interface backed by slog.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Skip frames: getCaller -> logging method -> actual caller.
const callerSkipFrames = 2

// Logger defines the logging interface used across the service.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)

	// Named returns a logger whose attributes are grouped under name.
	Named(name string) Logger
	// With returns a logger that always carries fields.
	With(fields ...Field) Logger
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// Field constructors.
func String(key, val string) Field                 { return Field{Key: key, Value: val} }
func Int(key string, val int) Field                { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field        { return Field{Key: key, Value: val} }
func Bool(key string, val bool) Field              { return Field{Key: key, Value: val} }
func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val.String()} }
func Any(key string, val any) Field                { return Field{Key: key, Value: val} }
func Error(err error) Field                        { return Field{Key: "error", Value: err} }

type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Named(name string) Logger {
	return &slogLogger{l: s.l.WithGroup(name)}
}

func (s *slogLogger) With(fields ...Field) Logger {
	args := make([]any, 0, len(fields))
	for _, a := range convertFields(fields) {
		args = append(args, a)
	}
	return &slogLogger{l: s.l.With(args...)}
}

func (s *slogLogger) Info(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelInfo, msg, fields)
}

func (s *slogLogger) Error(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelError, msg, fields)
}

func (s *slogLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelDebug, msg, fields)
}

func (s *slogLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelWarn, msg, fields)
}

func (s *slogLogger) log(ctx context.Context, level slog.Level, msg string, fields []Field) {
	if !s.l.Enabled(ctx, level) {
		return
	}
	fields = append(fields, String("source", getCaller()))
	s.l.LogAttrs(ctx, level, msg, convertFields(fields)...)
}

func convertFields(fields []Field) []slog.Attr {
	attrs := make([]slog.Attr, len(fields))
	for i, f := range fields {
		if err, ok := f.Value.(error); ok && err != nil {
			attrs[i] = slog.String(f.Key, err.Error())
			continue
		}
		attrs[i] = slog.Any(f.Key, f.Value)
	}
	return attrs
}

var (
	mu       sync.RWMutex
	global   Logger
	levelVar slog.LevelVar
)

// Init initializes the global logger writing text records to stdout.
func Init() error {
	return InitWithWriter(os.Stdout)
}

// InitWithWriter initializes the global logger writing to w.
func InitWithWriter(w io.Writer) error {
	if w == nil {
		return fmt.Errorf("logger: nil writer")
	}
	levelVar.Set(slog.LevelInfo)
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: &levelVar})

	mu.Lock()
	global = &slogLogger{l: slog.New(h)}
	mu.Unlock()
	return nil
}

// getCaller returns the caller location as relative/path/file.go:line.
// Depth is fixed at slogLogger.log's caller's caller.
func getCaller() string {
	_, file, line, ok := runtime.Caller(callerSkipFrames + 1)
	if !ok {
		return "unknown:0"
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	rel, err := filepath.Rel(cwd, file)
	if err != nil {
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	return fmt.Sprintf("%s:%d", rel, line)
}

// Get returns the global logger. It panics if Init was never called.
func Get() Logger {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		panic("logger not initialized. Call logger.Init() first")
	}
	return global
}

// Named creates a named logger from the global one.
func Named(name string) Logger {
	return Get().Named(name)
}

// Sync flushes buffered log entries. slog does not buffer.
func Sync() error {
	return nil
}

// SetLevel updates the current logging level.
func SetLevel(level slog.Level) { levelVar.Set(level) }

// SetLevelString parses and sets the logging level.
// Accepts: debug, info, warn/warning, error (case-insensitive).
func SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		SetLevel(slog.LevelDebug)
	case "", "info":
		SetLevel(slog.LevelInfo)
	case "warn", "warning":
		SetLevel(slog.LevelWarn)
	case "error":
		SetLevel(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}
