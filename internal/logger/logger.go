// Package logger writes one JSON object per line and keeps in-process poll
// metrics for atm-watch.
//
//	logger.Warn("Fetching ATMs failed", logger.Fields{"cycle_id": id}, err)
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

func (l Level) rank() int {
	switch l {
	case LevelDebug:
		return 0
	case LevelWarn:
		return 2
	case LevelError:
		return 3
	default:
		return 1
	}
}

// ParseLevel maps a --log-level value onto a Level. WARNING, CRITICAL and
// FATAL are accepted so older configs keep working.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO", "":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR", "CRITICAL", "FATAL":
		return LevelError, nil
	}
	return "", fmt.Errorf("unknown log level: %q", s)
}

// Fields are extra key/value pairs attached to an entry
type Fields map[string]interface{}

// LogEntry is the JSON shape of a single line
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Fields    Fields `json:"fields,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Logger drops entries below its level and serialises writes to out
type Logger struct {
	mu    sync.Mutex
	level Level
	out   io.Writer
}

var std = New(LevelInfo, os.Stdout)

// New creates a logger writing to out
func New(level Level, out io.Writer) *Logger {
	return &Logger{level: level, out: out}
}

// SetDefault replaces the logger behind the package-level functions
func SetDefault(l *Logger) {
	std = l
}

// Default returns the logger behind the package-level functions
func Default() *Logger {
	return std
}

func (l *Logger) write(level Level, msg string, fields Fields, err error) {
	if level.rank() < l.level.rank() {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     string(level),
		Message:   msg,
		Fields:    fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	line, marshalErr := json.Marshal(entry)

	l.mu.Lock()
	defer l.mu.Unlock()
	if marshalErr != nil {
		// fields held something encoding/json cannot handle
		fmt.Fprintf(l.out, "[%s] %s: %s (marshal error: %v)\n", entry.Timestamp, entry.Level, msg, marshalErr)
		return
	}
	l.out.Write(append(line, '\n'))
}

func (l *Logger) Debug(msg string, fields Fields) { l.write(LevelDebug, msg, fields, nil) }

func (l *Logger) Info(msg string, fields Fields) { l.write(LevelInfo, msg, fields, nil) }

// Warn is for failures the poller recovers from on its own
func (l *Logger) Warn(msg string, fields Fields, err error) { l.write(LevelWarn, msg, fields, err) }

func (l *Logger) Error(msg string, fields Fields, err error) { l.write(LevelError, msg, fields, err) }

func Debug(msg string, fields Fields) { std.Debug(msg, fields) }

func Info(msg string, fields Fields) { std.Info(msg, fields) }

func Warn(msg string, fields Fields, err error) { std.Warn(msg, fields, err) }

func Error(msg string, fields Fields, err error) { std.Error(msg, fields, err) }
