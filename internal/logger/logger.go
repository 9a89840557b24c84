package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level represents log severity
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case DEBUG:
		return zerolog.DebugLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseLevel converts a string to a Level
func ParseLevel(s string) Level {
	switch s {
	case "DEBUG", "debug":
		return DEBUG
	case "INFO", "info":
		return INFO
	case "WARN", "warn":
		return WARN
	case "ERROR", "error":
		return ERROR
	default:
		return INFO
	}
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value interface{}
}

// F is a shorthand for creating a Field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Config holds logger configuration
type Config struct {
	Level      Level  // Minimum log level
	FilePath   string // Path to log file
	MaxSize    int64  // Max size in bytes before rotation (default: 10MB)
	MaxAge     int    // Max age in days (default: 7)
	MaxBackups int    // Max number of backup files (default: 5)
	Console    bool   // Enable console logging
}

// DefaultConfig returns default logger configuration
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	logPath := filepath.Join(home, ".diary", "logs", "diary.log")

	return Config{
		Level:      INFO,
		FilePath:   logPath,
		MaxSize:    10 * 1024 * 1024, // 10MB
		MaxAge:     7,
		MaxBackups: 5,
		Console:    false, // Disabled by default to not interfere with TUI
	}
}

// Logger is the main logger instance
type Logger struct {
	config Config
	file   *rotatingFile
	zl     zerolog.Logger
}

var (
	globalLogger *Logger
	once         sync.Once
)

// Init initializes the global logger
func Init(config Config) error {
	var err error
	once.Do(func() {
		globalLogger, err = New(config)
	})
	return err
}

// New creates a new logger instance
func New(config Config) (*Logger, error) {
	l := &Logger{config: config}

	var writers []io.Writer
	if config.FilePath != "" {
		rf, err := openRotatingFile(config)
		if err != nil {
			return nil, err
		}
		l.file = rf
		writers = append(writers, rf)
	}

	if config.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"})
	}

	if len(writers) == 0 {
		l.zl = zerolog.Nop()
		return l, nil
	}

	l.zl = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(config.Level.zerolog()).
		With().
		Timestamp().
		CallerWithSkipFrameCount(4).
		Logger()
	return l, nil
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// rotatingFile is an io.Writer over the log file that rotates it by size and age
type rotatingFile struct {
	mu     sync.Mutex
	config Config
	file   *os.File
	size   int64
	opened time.Time
}

func openRotatingFile(config Config) (*rotatingFile, error) {
	logDir := filepath.Dir(config.FilePath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	rf := &rotatingFile{config: config}
	if err := rf.open(); err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	// Check if rotation is needed
	if rf.needsRotation() {
		if err := rf.rotate(); err != nil {
			return nil, err
		}
	}
	return rf, nil
}

func (rf *rotatingFile) open() error {
	file, err := os.OpenFile(rf.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return err
	}
	rf.file = file
	rf.size = info.Size()
	rf.opened = info.ModTime()
	return nil
}

func (rf *rotatingFile) needsRotation() bool {
	if rf.config.MaxSize > 0 && rf.size >= rf.config.MaxSize {
		return true
	}
	if rf.config.MaxAge > 0 && rf.size > 0 &&
		time.Since(rf.opened) > time.Duration(rf.config.MaxAge)*24*time.Hour {
		return true
	}
	return false
}

// rotate performs log rotation; callers hold mu or own rf exclusively
func (rf *rotatingFile) rotate() error {
	if rf.file != nil {
		_ = rf.file.Close()
	}

	// Rotate existing backups
	for i := rf.config.MaxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", rf.config.FilePath, i)
		newPath := fmt.Sprintf("%s.%d", rf.config.FilePath, i+1)
		_ = os.Rename(oldPath, newPath)
	}

	// Move current log to .1
	if _, err := os.Stat(rf.config.FilePath); err == nil {
		backupPath := fmt.Sprintf("%s.1", rf.config.FilePath)
		if err := os.Rename(rf.config.FilePath, backupPath); err != nil {
			return err
		}
	}

	if err := rf.open(); err != nil {
		return err
	}
	rf.opened = time.Now()
	return nil
}

func (rf *rotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.needsRotation() {
		if err := rf.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := rf.file.Write(p)
	rf.size += int64(n)
	return n, err
}

func (rf *rotatingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.file == nil {
		return nil
	}
	err := rf.file.Close()
	rf.file = nil
	return err
}

// log writes a log entry
func (l *Logger) log(level Level, msg string, fields []Field) {
	if l == nil {
		return
	}

	var ev *zerolog.Event
	switch level {
	case DEBUG:
		ev = l.zl.Debug()
	case WARN:
		ev = l.zl.Warn()
	case ERROR:
		ev = l.zl.Error()
	default:
		ev = l.zl.Info()
	}
	if ev == nil {
		return
	}

	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			ev = ev.AnErr(f.Key, err)
			continue
		}
		ev = ev.Interface(f.Key, f.Value)
	}
	ev.Msg(msg)
}

// WithFields creates a new logger with preset fields
func (l *Logger) WithFields(fields ...Field) *Logger {
	if l == nil {
		return nil
	}
	ctx := l.zl.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &Logger{
		config: l.config,
		file:   l.file,
		zl:     ctx.Logger(),
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...Field) {
	l.log(DEBUG, msg, fields)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...Field) {
	l.log(INFO, msg, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...Field) {
	l.log(WARN, msg, fields)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields ...Field) {
	l.log(ERROR, msg, fields)
}

// Close closes the logger and flushes any buffered data
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Global logger functions

// Default returns the global logger, or a no-op logger before Init
func Default() *Logger {
	if globalLogger != nil {
		return globalLogger
	}
	return Nop()
}

// Debug logs a debug message using the global logger
func Debug(msg string, fields ...Field) {
	if globalLogger != nil {
		globalLogger.Debug(msg, fields...)
	}
}

// Info logs an info message using the global logger
func Info(msg string, fields ...Field) {
	if globalLogger != nil {
		globalLogger.Info(msg, fields...)
	}
}

// Warn logs a warning message using the global logger
func Warn(msg string, fields ...Field) {
	if globalLogger != nil {
		globalLogger.Warn(msg, fields...)
	}
}

// Error logs an error message using the global logger
func Error(msg string, fields ...Field) {
	if globalLogger != nil {
		globalLogger.Error(msg, fields...)
	}
}

// WithFields creates a new logger with preset fields using the global logger
func WithFields(fields ...Field) *Logger {
	return Default().WithFields(fields...)
}

// Close closes the global logger
func Close() error {
	if globalLogger != nil {
		return globalLogger.Close()
	}
	return nil
}

// GetConfig returns the current logger configuration
func GetConfig() Config {
	if globalLogger != nil {
		return globalLogger.config
	}
	return DefaultConfig()
}
