package debuglog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff // Disables all logging
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "OFF":
		return LevelOff
	default:
		return LevelInfo // Default to INFO
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Options controls where log output goes and how it is rotated.
type Options struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	mu           sync.RWMutex
	currentLevel = LevelOff
	atomicLevel  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger       *zap.SugaredLogger
	rotator      *lumberjack.Logger
)

// Setup configures the logging system with the specified level and optional file path.
// If filePath is empty, defaults to ~/.crate/crate.log.
func Setup(level LogLevel, filePath ...string) error {
	var opts Options
	if len(filePath) > 0 {
		opts.Path = filePath[0]
	}
	return SetupWithOptions(level, opts)
}

// SetupWithOptions is Setup with rotation settings.
func SetupWithOptions(level LogLevel, opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()
	currentLevel = level
	if level == LevelOff {
		return nil
	}

	logPath := opts.Path
	if logPath == "" {
		home, _ := os.UserHomeDir()
		logPath = filepath.Join(home, ".crate", "crate.log")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	// lumberjack opens lazily; fail here rather than on the first write.
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}
	f.Close()

	rotator = &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	atomicLevel.SetLevel(level.zapLevel())
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotator), atomicLevel)
	logger = zap.New(core).Named("crate").Sugar()
	return nil
}

// SetupWithBool provides backward compatibility with the old Setup(bool) signature
func SetupWithBool(enabled bool) {
	if enabled {
		_ = Setup(LevelInfo)
	} else {
		_ = Setup(LevelOff)
	}
}

// SetLevel changes the current logging level
func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
	if level != LevelOff {
		atomicLevel.SetLevel(level.zapLevel())
	}
}

// GetLevel returns the current logging level
func GetLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel
}

// Close flushes and closes the log file if open
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return closeLocked()
}

func closeLocked() error {
	if logger != nil {
		_ = logger.Sync()
		logger = nil
	}
	if rotator != nil {
		err := rotator.Close()
		rotator = nil
		return err
	}
	return nil
}

func current(level LogLevel) *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	if logger == nil || currentLevel == LevelOff || level < currentLevel {
		return nil
	}
	return logger
}

// logw writes a log message at the specified level
func logw(level LogLevel, msg string, keysAndValues ...any) {
	l := current(level)
	if l == nil {
		return
	}
	switch level {
	case LevelDebug:
		l.Debugw(msg, keysAndValues...)
	case LevelInfo:
		l.Infow(msg, keysAndValues...)
	case LevelWarn:
		l.Warnw(msg, keysAndValues...)
	default:
		l.Errorw(msg, keysAndValues...)
	}
}

func Debugf(format string, args ...any) {
	logw(LevelDebug, fmt.Sprintf(format, args...))
}

func Infof(format string, args ...any) {
	logw(LevelInfo, fmt.Sprintf(format, args...))
}

func Warnf(format string, args ...any) {
	logw(LevelWarn, fmt.Sprintf(format, args...))
}

func Errorf(format string, args ...any) {
	logw(LevelError, fmt.Sprintf(format, args...))
}

// FieldLogger attaches structured fields to every message.
type FieldLogger struct {
	fields map[string]any
}

// WithFields returns a new logger with the specified fields
func WithFields(fields map[string]any) *FieldLogger {
	return &FieldLogger{fields: fields}
}

func (fl *FieldLogger) keysAndValues() []any {
	kv := make([]any, 0, len(fl.fields)*2)
	for k, v := range fl.fields {
		kv = append(kv, k, v)
	}
	return kv
}

func (fl *FieldLogger) Debugf(format string, args ...any) {
	logw(LevelDebug, fmt.Sprintf(format, args...), fl.keysAndValues()...)
}

func (fl *FieldLogger) Infof(format string, args ...any) {
	logw(LevelInfo, fmt.Sprintf(format, args...), fl.keysAndValues()...)
}

func (fl *FieldLogger) Warnf(format string, args ...any) {
	logw(LevelWarn, fmt.Sprintf(format, args...), fl.keysAndValues()...)
}

func (fl *FieldLogger) Errorf(format string, args ...any) {
	logw(LevelError, fmt.Sprintf(format, args...), fl.keysAndValues()...)
}
