package services

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gookit/color"
)

// Logger defines common logging interface for all services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// LogLevel represents different logging levels
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLogLevel maps LOG_LEVEL values to a LogLevel, defaulting to INFO.
func ParseLogLevel(value string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "DEBUG":
		return LogLevelDebug
	case "WARN":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// ProductionLogger is a structured logger for production use
type ProductionLogger struct {
	logger  *slog.Logger
	level   *slog.LevelVar
	service string
}

// NewProductionLogger creates a JSON logger writing to stdout.
func NewProductionLogger(service string) *ProductionLogger {
	return NewProductionLoggerWithLevel(service, LogLevelInfo, os.Stdout, true)
}

// NewProductionLoggerWithLevel creates a logger with a specific level and output.
// structured selects JSON output; otherwise a coloured, human-readable text format is used.
func NewProductionLoggerWithLevel(service string, level LogLevel, w io.Writer, structured bool) *ProductionLogger {
	lv := new(slog.LevelVar)
	lv.Set(level.slogLevel())

	var handler slog.Handler
	if structured {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv, ReplaceAttr: colorizeLevel})
	}

	return &ProductionLogger{
		logger:  slog.New(handler).With(slog.String("service", service)),
		level:   lv,
		service: service,
	}
}

// SetLevel updates the logging level
func (p *ProductionLogger) SetLevel(level LogLevel) {
	p.level.Set(level.slogLevel())
}

// Slog exposes the underlying slog.Logger for libraries that want one.
func (p *ProductionLogger) Slog() *slog.Logger {
	return p.logger
}

func (p *ProductionLogger) Info(msg string, keysAndValues ...interface{}) {
	p.logger.Info(msg, keysAndValues...)
}

func (p *ProductionLogger) Error(msg string, keysAndValues ...interface{}) {
	p.logger.Error(msg, keysAndValues...)
}

func (p *ProductionLogger) Debug(msg string, keysAndValues ...interface{}) {
	p.logger.Debug(msg, keysAndValues...)
}

func (p *ProductionLogger) Warn(msg string, keysAndValues ...interface{}) {
	p.logger.Warn(msg, keysAndValues...)
}

// colorizeLevel paints the level label for terminal output.
func colorizeLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) > 0 {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	switch {
	case level >= slog.LevelError:
		a.Value = slog.StringValue(color.Red.Sprint("ERROR"))
	case level >= slog.LevelWarn:
		a.Value = slog.StringValue(color.Yellow.Sprint("WARN"))
	case level >= slog.LevelInfo:
		a.Value = slog.StringValue(color.Cyan.Sprint("INFO"))
	default:
		a.Value = slog.StringValue(color.Gray.Sprint("DEBUG"))
	}
	return a
}

// NoOpLogger is a logger that does nothing (for testing)
type NoOpLogger struct{}

func (n *NoOpLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *NoOpLogger) Error(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Warn(msg string, keysAndValues ...interface{})  {}

// Environment-based logger factory
func NewLogger(service string) Logger {
	env := os.Getenv("GO_ENV")
	if env == "test" {
		return &NoOpLogger{}
	}

	// JSON in production, readable text everywhere else
	return NewProductionLoggerWithLevel(service, ParseLogLevel(os.Getenv("LOG_LEVEL")), os.Stdout, env == "production")
}
