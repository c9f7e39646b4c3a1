// Package logger provides leveled logging for the game server.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger writes info and warnings to stdout and errors to stderr.
type Logger struct {
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// NewLogger creates a new logger instance.
func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout, os.Stderr)
}

// NewLoggerTo 指定输出目标，测试中用来捕获日志
func NewLoggerTo(out, errOut io.Writer) *Logger {
	flags := log.Ldate | log.Ltime | log.Lshortfile
	return &Logger{
		infoLogger:  log.New(out, "[CENTIPEDE-INFO] ", flags),
		warnLogger:  log.New(out, "[CENTIPEDE-WARN] ", flags),
		errorLogger: log.New(errOut, "[CENTIPEDE-ERROR] ", flags),
	}
}

// Info logs informational messages.
func (l *Logger) Info(format string, args ...interface{}) {
	l.infoLogger.Output(2, fmt.Sprintf(format, args...))
}

// Warn logs warning messages.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.warnLogger.Output(2, fmt.Sprintf(format, args...))
}

// Error logs error messages.
func (l *Logger) Error(format string, args ...interface{}) {
	l.errorLogger.Output(2, fmt.Sprintf(format, args...))
}

// Event logs a game event for a group.
func (l *Logger) Event(groupID, kind string, x, y int) {
	l.infoLogger.Output(2, fmt.Sprintf("[EVENT:%s] Group:%s | cell (%d,%d)", kind, groupID, x, y))
}
