package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents logging verbosity levels.
type LogLevel int

// Log level constants.
const (
	LogLevelOff LogLevel = iota
	LogLevelError
	LogLevelDebug
)

// ParseLogLevel parses a log level string.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return LogLevelOff
	case "error":
		return LogLevelError
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelError
	}
}

// String returns the string representation of a log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelOff:
		return "off"
	case LogLevelError:
		return "error"
	case LogLevelDebug:
		return "debug"
	default:
		return "error"
	}
}

// zerologLevel maps a LogLevel onto zerolog's levels.
func (l LogLevel) zerologLevel() zerolog.Level {
	switch l {
	case LogLevelOff:
		return zerolog.Disabled
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.ErrorLevel
	}
}

// Logger writes JSON log lines to a file, and optionally human-readable
// lines to a console writer.
type Logger struct {
	mu       sync.Mutex
	level    LogLevel
	file     *os.File
	filePath string
	console  io.Writer
	zl       zerolog.Logger
}

// LoggerOption configures a Logger.
type LoggerOption func(*Logger)

// WithConsole mirrors log lines to w in zerolog's console format.
func WithConsole(w io.Writer) LoggerOption {
	return func(l *Logger) { l.console = w }
}

// NewLogger creates a new logger.
func NewLogger(level LogLevel, filePath string, opts ...LoggerOption) (*Logger, error) {
	logger := &Logger{
		level:    level,
		filePath: filePath,
	}
	for _, opt := range opts {
		opt(logger)
	}

	if level != LogLevelOff && filePath != "" {
		// Expand home directory
		if strings.HasPrefix(filePath, "~/") {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			filePath = filepath.Join(home, filePath[2:])
		}

		// Ensure directory exists
		dir := filepath.Dir(filePath)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, err
		}

		// #nosec G304 -- log file path is from validated config
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, err
		}

		logger.file = f
		logger.filePath = filePath
	}

	logger.zl = logger.build()
	return logger, nil
}

// build assembles the zerolog logger for the current sinks and level.
func (l *Logger) build() zerolog.Logger {
	var writers []io.Writer
	if l.file != nil {
		writers = append(writers, l.file)
	}
	if l.console != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: l.console, TimeFormat: time.RFC3339})
	}
	if len(writers) == 0 {
		return zerolog.Nop()
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(l.level.zerologLevel()).
		With().
		Timestamp().
		Logger()
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		l.zl = l.build()
		return err
	}
	return nil
}

// SetLevel changes the log level.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.zl = l.zl.Level(level.zerologLevel())
}

// Level returns the current log level.
func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Zerolog returns the structured logger handed to components.
func (l *Logger) Zerolog() zerolog.Logger {
	if l == nil {
		return zerolog.Nop()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.zl
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.log(LogLevelDebug, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log(LogLevelError, format, args...)
}

// Writer returns an io.Writer that writes to the logger at the specified level.
func (l *Logger) Writer(level LogLevel) io.Writer {
	return &logWriter{logger: l, level: level}
}

// log writes a log message if the level is appropriate.
func (l *Logger) log(level LogLevel, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.level == LogLevelOff || level > l.level {
		return
	}

	msg := fmt.Sprintf(format, args...)
	switch level {
	case LogLevelDebug:
		l.zl.Debug().Msg(msg)
	case LogLevelError, LogLevelOff:
		l.zl.Error().Msg(msg)
	}
}

// logWriter implements io.Writer for the logger.
type logWriter struct {
	logger *Logger
	level  LogLevel
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.logger.log(w.level, "%s", strings.TrimSpace(string(p)))
	return len(p), nil
}

// NullLogger returns a logger that discards all output.
func NullLogger() *Logger {
	return &Logger{level: LogLevelOff, zl: zerolog.Nop()}
}
