// Package logger provides structured logging for the shop server.
// Everything the simulation decides should be traceable through this.
package logger

import (
	"log"
	"os"
)

// Logger provides leveled logging with context.
type Logger struct {
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// NewLogger creates a new logger instance.
func NewLogger() *Logger {
	return &Logger{
		infoLogger:  log.New(os.Stdout, "[SHOP-INFO] ", log.Ldate|log.Ltime|log.Lshortfile),
		warnLogger:  log.New(os.Stdout, "[SHOP-WARN] ", log.Ldate|log.Ltime|log.Lshortfile),
		errorLogger: log.New(os.Stderr, "[SHOP-ERROR] ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// Info logs informational messages.
func (l *Logger) Info(msg string) {
	l.infoLogger.Println(msg)
}

// Infof logs a formatted informational message.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.infoLogger.Printf(format, args...)
}

// Warn logs warning messages.
func (l *Logger) Warn(msg string) {
	l.warnLogger.Println(msg)
}

// Warnf logs a formatted warning message.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.warnLogger.Printf(format, args...)
}

// Error logs error messages.
func (l *Logger) Error(msg string) {
	l.errorLogger.Println(msg)
}

// Errorf logs a formatted error message.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.errorLogger.Printf(format, args...)
}

// Event logs a specific shop event for the audit trail.
func (l *Logger) Event(eventType string, actorID string, details string) {
	l.infoLogger.Printf("[EVENT:%s] Actor:%s | %s", eventType, actorID, details)
}
