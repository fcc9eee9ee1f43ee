package utils

import (
	"fmt"
	"log"
	"os"
	"time"
)

// Logger provides leveled, timestamped logging throughout the pipeline.
// Diagnostics go to stdout, errors to stderr.
type Logger struct {
	out *log.Logger
	err *log.Logger
}

// NewLogger creates a new Logger writing to stdout/stderr.
func NewLogger() *Logger {
	return &Logger{
		out: log.New(os.Stdout, "", 0),
		err: log.New(os.Stderr, "", 0),
	}
}

func (l *Logger) logf(dst *log.Logger, color, level, format string, args ...any) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	dst.Printf("[%s] \033[%sm%-5s\033[0m %s", ts, color, level, fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...any) {
	l.logf(l.out, "32", "INFO", format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.logf(l.out, "33", "WARN", format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.logf(l.err, "31", "ERROR", format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.logf(l.out, "36", "DEBUG", format, args...)
}
