package logging

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Level describes severity of log message.
type Level int

const (
	// LevelError reports failures only.
	LevelError Level = iota
	// LevelInfo is the default log level.
	LevelInfo
	// LevelDebug enables verbose output.
	LevelDebug
)

// ParseLevel converts string to Level.
func ParseLevel(v string) Level {
	switch v {
	case "error":
		return LevelError
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Logger is a thin wrapper around log.Logger with levels.
type Logger struct {
	logger *log.Logger
	level  Level
}

// New creates a configured logger. An empty path logs to stdout.
func New(path string, level Level) (*Logger, error) {
	var output io.Writer = os.Stdout
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		output = f
	}
	return &Logger{logger: log.New(output, "goserials ", log.LstdFlags), level: level}, nil
}

func (l *Logger) logf(lvl Level, prefix, format string, args ...interface{}) {
	if l == nil {
		return
	}
	if lvl > l.level {
		return
	}
	l.logger.Printf("[%s] %s", prefix, fmt.Sprintf(format, args...))
}

// Errorf logs failures.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logf(LevelError, "ERROR", format, args...)
}

// Infof logs informational messages.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logf(LevelInfo, "INFO", format, args...)
}

// Debugf logs verbose diagnostic messages.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logf(LevelDebug, "DEBUG", format, args...)
}
