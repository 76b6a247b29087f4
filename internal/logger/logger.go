package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// VerboseChecker interface for checking verbose state
type VerboseChecker interface {
	IsVerbose() bool
}

// Logger provides structured logging with verbose support
type Logger struct {
	component      string
	verboseChecker VerboseChecker
	base           *zap.Logger
	zl             *zap.Logger
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value interface{}
}

// switchWriter lets SetOutput redirect every logger created from the shared core
type switchWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *switchWriter) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.w.(*os.File); ok {
		return f.Sync()
	}
	return nil
}

func (s *switchWriter) set(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
}

var (
	output = &switchWriter{w: os.Stderr}
	shared = zap.New(newCore(output))
)

func newCore(ws zapcore.WriteSyncer) zapcore.Core {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + name + "]")
	}
	encCfg.CallerKey = zapcore.OmitKey
	encCfg.StacktraceKey = zapcore.OmitKey

	// Verbose gating happens in Logger, so the core accepts everything.
	return zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), ws, zap.NewAtomicLevelAt(zapcore.DebugLevel))
}

// SetOutput redirects all loggers to w. The TUI uses it to keep log lines
// off the screen it owns.
func SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	output.set(w)
}

// New creates a new logger instance
func New(component string, verboseChecker VerboseChecker) *Logger {
	return &Logger{
		component:      component,
		verboseChecker: verboseChecker,
		base:           shared,
		zl:             shared.Named(componentName(component)),
	}
}

// NewWithCallback creates a new logger instance with a callback function
func NewWithCallback(component string, verboseCheck func() bool) *Logger {
	return New(component, &callbackChecker{callback: verboseCheck})
}

// NewWithWriter creates a logger writing to w instead of the shared output
func NewWithWriter(component string, verboseChecker VerboseChecker, w io.Writer) *Logger {
	base := zap.New(newCore(zapcore.AddSync(w)))
	return &Logger{
		component:      component,
		verboseChecker: verboseChecker,
		base:           base,
		zl:             base.Named(componentName(component)),
	}
}

// Nop returns a logger that drops everything
func Nop() *Logger {
	return &Logger{base: zap.NewNop(), zl: zap.NewNop()}
}

// WithComponent creates a logger with a specific component name
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		component:      component,
		verboseChecker: l.verboseChecker,
		base:           l.base,
		zl:             l.base.Named(componentName(component)),
	}
}

func componentName(component string) string {
	if component == "" {
		return "main"
	}
	return component
}

// callbackChecker implements VerboseChecker with a callback function
type callbackChecker struct {
	callback func() bool
}

func (c *callbackChecker) IsVerbose() bool {
	if c.callback == nil {
		return false
	}
	return c.callback()
}

func (l *Logger) verbose() bool {
	return l.verboseChecker != nil && l.verboseChecker.IsVerbose()
}

// Debug logs debug messages (only when verbose=true)
func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.verbose() {
		l.zl.Debug(fmt.Sprintf(msg, args...))
	}
}

// Info logs informational messages (only when verbose=true)
func (l *Logger) Info(msg string, args ...interface{}) {
	if l.verbose() {
		l.zl.Info(fmt.Sprintf(msg, args...))
	}
}

// Warn logs warning messages (always shown)
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.zl.Warn(fmt.Sprintf(msg, args...))
}

// Error logs error messages (always shown)
func (l *Logger) Error(msg string, args ...interface{}) {
	l.zl.Error(fmt.Sprintf(msg, args...))
}

// DebugWithFields logs debug message with structured fields
func (l *Logger) DebugWithFields(msg string, fields []Field, args ...interface{}) {
	if l.verbose() {
		l.zl.Debug(fmt.Sprintf(msg, args...), zapFields(fields)...)
	}
}

// InfoWithFields logs info message with structured fields
func (l *Logger) InfoWithFields(msg string, fields []Field, args ...interface{}) {
	if l.verbose() {
		l.zl.Info(fmt.Sprintf(msg, args...), zapFields(fields)...)
	}
}

// WarnWithFields logs warning message with structured fields
func (l *Logger) WarnWithFields(msg string, fields []Field, args ...interface{}) {
	l.zl.Warn(fmt.Sprintf(msg, args...), zapFields(fields)...)
}

// Sync flushes buffered log entries
func (l *Logger) Sync() {
	_ = l.zl.Sync()
}

func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

// Helper functions for common field types
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

func Count(value int) Field {
	return Field{Key: "count", Value: value}
}

func Duration(d time.Duration) Field {
	return Field{Key: "duration", Value: d}
}

func Error(err error) Field {
	return Field{Key: "error", Value: err}
}
