package log

import (
	"context"
	"log"

	"github.com/fatih/color"
)

var (
	colorInfo  = color.New(color.FgCyan).SprintFunc()
	colorWarn  = color.New(color.FgYellow).SprintFunc()
	colorError = color.New(color.FgRed).SprintFunc()
	colorOk    = color.New(color.FgGreen).SprintFunc()
	colorDim   = color.New(color.Faint).SprintFunc()
	colorAlarm = color.New(color.FgMagenta, color.Bold).SprintFunc()
)

type CslLogger struct {
	logger *log.Logger
}

func NewCslLogger() (*CslLogger, error) {
	return &CslLogger{logger: log.Default()}, nil
}

// NewCslLoggerWith dùng một *log.Logger có sẵn (ví dụ ghi ra buffer trong test)
func NewCslLoggerWith(l *log.Logger) *CslLogger {
	return &CslLogger{logger: l}
}

func (l *CslLogger) printf(prefix, format string, args ...interface{}) {
	l.logger.Printf(prefix+" "+format, args...)
}

func (l *CslLogger) Info(ctx context.Context, format string, args ...interface{}) {
	l.printf(colorInfo("[INFO]"), format, args...)
}

func (l *CslLogger) Success(ctx context.Context, format string, args ...interface{}) {
	l.printf(colorOk("[SUCCESS]"), format, args...)
}

func (l *CslLogger) Alert(ctx context.Context, format string, args ...interface{}) {
	l.printf(colorAlarm("[ALERT]"), format, args...)
}

func (l *CslLogger) Error(ctx context.Context, format string, args ...interface{}) {
	l.printf(colorError("[ERROR]"), format, args...)
}

func (l *CslLogger) Warn(ctx context.Context, format string, args ...interface{}) {
	l.printf(colorWarn("[WARN]"), format, args...)
}

func (l *CslLogger) Debug(ctx context.Context, format string, args ...interface{}) {
	l.printf(colorDim("[DEBUG]"), format, args...)
}

func (l *CslLogger) Critical(ctx context.Context, format string, args ...interface{}) {
	l.printf(colorAlarm("[CRITICAL]"), format, args...)
}

func (l *CslLogger) Emergency(ctx context.Context, format string, args ...interface{}) {
	l.printf(colorAlarm("[EMERGENCY]"), format, args...)
}

func (l *CslLogger) Notice(ctx context.Context, format string, args ...interface{}) {
	l.printf(colorInfo("[NOTICE]"), format, args...)
}
