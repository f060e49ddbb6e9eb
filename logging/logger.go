package logging

import (
	"fmt"
	"log"
	"os"
)

// A Logger receives leveled log messages
type Logger interface {
	Logf(level int, format string, args ...interface{})
}

type stdLogger struct {
	logger   *log.Logger
	minLevel int
}

// NewStdLogger creates a Logger which writes messages at or above minLevel to stderr, prefixed with prefix
func NewStdLogger(prefix string, minLevel int) Logger {
	return &stdLogger{
		logger:   log.New(os.Stderr, prefix, log.LstdFlags|log.Lmicroseconds),
		minLevel: minLevel,
	}
}

// Logf logs a message if its level is high enough. FatalLevel messages terminate the process.
func (l *stdLogger) Logf(level int, format string, args ...interface{}) {
	if level < l.minLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if level >= FatalLevel {
		l.logger.Fatalf("[%s] %s", LogLevelToString(level), msg)
	}
	l.logger.Printf("[%s] %s", LogLevelToString(level), msg)
}

type nopLogger struct{}

// Nop returns a Logger which discards everything
func Nop() Logger {
	return nopLogger{}
}

func (nopLogger) Logf(level int, format string, args ...interface{}) {}

// Tee returns a Logger which forwards every message to all of the given Loggers
func Tee(loggers ...Logger) Logger {
	return teeLogger(loggers)
}

type teeLogger []Logger

func (t teeLogger) Logf(level int, format string, args ...interface{}) {
	for _, l := range t {
		l.Logf(level, format, args...)
	}
}
