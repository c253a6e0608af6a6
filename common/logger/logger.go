package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds logger configuration
type Config struct {
	Level       logrus.Level
	Output      io.Writer
	JSONFormat  bool
	EnableColor bool
	ShowCaller  bool
	TimeFormat  string
	ServiceName string
}

// DefaultConfig reads LOG_LEVEL, LOG_FORMAT, LOG_COLOR and SERVICE_NAME.
func DefaultConfig() *Config {
	level := logrus.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if parsed, err := logrus.ParseLevel(lvl); err == nil {
			level = parsed
		}
	}

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "eventful"
	}

	return &Config{
		Level:       level,
		Output:      os.Stdout,
		JSONFormat:  os.Getenv("LOG_FORMAT") == "json",
		EnableColor: os.Getenv("LOG_COLOR") != "false",
		ShowCaller:  true,
		TimeFormat:  "2006-01-02T15:04:05.000Z07:00",
		ServiceName: service,
	}
}

// Logger is a structured logger. Child loggers share the underlying logrus instance.
type Logger struct {
	config *Config
	entry  *logrus.Entry
}

type ctxKey string

// Context keys understood by WithContext.
const (
	RequestIDKey ctxKey = "requestID"
	SessionIDKey ctxKey = "sessionID"
)

var (
	defaultLogger *Logger
	once          sync.Once
)

// New creates a new logger with given config
func New(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}

	base := logrus.New()
	base.SetLevel(config.Level)
	if config.Output != nil {
		base.SetOutput(config.Output)
	}
	if config.JSONFormat {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: config.TimeFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: config.TimeFormat,
			ForceColors:     config.EnableColor,
			DisableColors:   !config.EnableColor,
		})
	}

	entry := logrus.NewEntry(base)
	if config.ServiceName != "" {
		entry = entry.WithField("service", config.ServiceName)
	}
	return &Logger{config: config, entry: entry}
}

// Default returns the default logger singleton
func Default() *Logger {
	once.Do(func() {
		defaultLogger = New(nil)
	})
	return defaultLogger
}

// With creates a child logger with an additional field
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{config: l.config, entry: l.entry.WithField(key, value)}
}

// WithFields creates a child logger with multiple additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{config: l.config, entry: l.entry.WithFields(logrus.Fields(fields))}
}

// WithError adds error field to logger
func (l *Logger) WithError(err error) *Logger {
	return &Logger{config: l.config, entry: l.entry.WithError(err)}
}

// WithContext copies request-scoped values from ctx into fields.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	entry := l.entry.WithContext(ctx)
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}
	if sessionID, ok := ctx.Value(SessionIDKey).(string); ok && sessionID != "" {
		entry = entry.WithField("session_id", sessionID)
	}
	return &Logger{config: l.config, entry: entry}
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(logrus.DebugLevel, msg, args...)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(logrus.InfoLevel, msg, args...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(logrus.WarnLevel, msg, args...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(logrus.ErrorLevel, msg, args...)
}

func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.log(logrus.FatalLevel, msg, args...)
	l.entry.Logger.Exit(1)
}

func (l *Logger) log(level logrus.Level, msg string, args ...interface{}) {
	if !l.entry.Logger.IsLevelEnabled(level) {
		return
	}

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	entry := l.entry
	if l.config.ShowCaller {
		if _, file, line, ok := runtime.Caller(2); ok {
			entry = entry.WithField("caller", fmt.Sprintf("%s:%d", shortenPath(file), line))
		}
	}
	entry.Log(level, msg)
}

// ============================================================
// Request Logger - HTTP request/response logging
// ============================================================

// RequestLog represents an HTTP request log
type RequestLog struct {
	Method       string        `json:"method"`
	Path         string        `json:"path"`
	Status       int           `json:"status"`
	Duration     time.Duration `json:"duration_ms"`
	ClientIP     string        `json:"client_ip"`
	UserAgent    string        `json:"user_agent,omitempty"`
	RequestID    string        `json:"request_id,omitempty"`
	ResponseSize int64         `json:"response_size,omitempty"`
}

// LogRequest logs an HTTP request at a level derived from its status.
func (l *Logger) LogRequest(req RequestLog) {
	level := logrus.InfoLevel
	if req.Status >= 500 {
		level = logrus.ErrorLevel
	} else if req.Status >= 400 {
		level = logrus.WarnLevel
	}

	msg := fmt.Sprintf("%s %s -> %d (%s)", req.Method, req.Path, req.Status, req.Duration)

	l.WithFields(map[string]interface{}{
		"method":        req.Method,
		"path":          req.Path,
		"status":        req.Status,
		"duration_ms":   req.Duration.Milliseconds(),
		"client_ip":     req.ClientIP,
		"user_agent":    req.UserAgent,
		"request_id":    req.RequestID,
		"response_size": req.ResponseSize,
	}).log(level, msg)
}

// ============================================================
// Database Logger - SQL query logging
// ============================================================

// QueryLog represents a database query log
type QueryLog struct {
	Query    string        `json:"query"`
	Duration time.Duration `json:"duration_ms"`
	Rows     int64         `json:"rows,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// LogQuery logs a database query
func (l *Logger) LogQuery(query QueryLog) {
	level := logrus.DebugLevel
	if query.Error != "" {
		level = logrus.ErrorLevel
	} else if query.Duration > time.Second {
		level = logrus.WarnLevel
	}

	msg := fmt.Sprintf("SQL (%s): %s", query.Duration, truncate(query.Query, 200))

	fields := map[string]interface{}{
		"query":       truncate(query.Query, 500),
		"duration_ms": query.Duration.Milliseconds(),
	}
	if query.Rows > 0 {
		fields["rows"] = query.Rows
	}
	if query.Error != "" {
		fields["error"] = query.Error
	}

	l.WithFields(fields).log(level, msg)
}

// ============================================================
// Business Event Logger
// ============================================================

// EventLog represents a business event log
type EventLog struct {
	Event    string                 `json:"event"`
	Entity   string                 `json:"entity,omitempty"`
	EntityID string                 `json:"entity_id,omitempty"`
	Action   string                 `json:"action"`
	Success  bool                   `json:"success"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// LogEvent logs a business event
func (l *Logger) LogEvent(evt EventLog) {
	level := logrus.InfoLevel
	if !evt.Success {
		level = logrus.ErrorLevel
	}

	msg := fmt.Sprintf("[%s] %s %s", evt.Event, evt.Action, evt.Entity)
	if evt.EntityID != "" {
		msg += " (" + evt.EntityID + ")"
	}

	fields := map[string]interface{}{
		"event":   evt.Event,
		"action":  evt.Action,
		"success": evt.Success,
	}
	if evt.Entity != "" {
		fields["entity"] = evt.Entity
	}
	if evt.EntityID != "" {
		fields["entity_id"] = evt.EntityID
	}
	for k, v := range evt.Metadata {
		fields[k] = v
	}
	if evt.Error != "" {
		fields["error"] = evt.Error
	}

	l.WithFields(fields).log(level, msg)
}

func shortenPath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) > 2 {
		return strings.Join(parts[len(parts)-2:], "/")
	}
	return path
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// ============================================================
// Package-level convenience functions
// ============================================================

func Debug(msg string, args ...interface{}) { Default().Debug(msg, args...) }
func Info(msg string, args ...interface{})  { Default().Info(msg, args...) }
func Warn(msg string, args ...interface{})  { Default().Warn(msg, args...) }
func Error(msg string, args ...interface{}) { Default().Error(msg, args...) }
func Fatal(msg string, args ...interface{}) { Default().Fatal(msg, args...) }

func With(key string, value interface{}) *Logger       { return Default().With(key, value) }
func WithFields(fields map[string]interface{}) *Logger { return Default().WithFields(fields) }
func WithError(err error) *Logger                      { return Default().WithError(err) }
func WithContext(ctx context.Context) *Logger          { return Default().WithContext(ctx) }
