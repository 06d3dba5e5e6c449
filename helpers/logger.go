package helpers

import (
	"fmt"
	"os"
	"time"

	"sjsage522/rentalscraper/logger"
)

// LoggerInterface defines the interface for logger implementations
type LoggerInterface interface {
	LogError(component string, err error)
	LogInfo(format string, args ...interface{})
}

// Logger writes info entries to the structured logger and mirrors errors into a file
type Logger struct {
	errorFile string
	log       *logger.Logger
}

// NewLogger creates a new logger instance. An empty errorFile disables the file mirror.
func NewLogger(errorFile string, log *logger.Logger) *Logger {
	return &Logger{
		errorFile: errorFile,
		log:       log,
	}
}

// LogError logs an error with component name and appends it to the error file
func (l *Logger) LogError(component string, err error) {
	l.log.Error().Str("component", component).Err(err).Send()

	if l.errorFile == "" {
		return
	}

	f, fileErr := os.OpenFile(l.errorFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if fileErr != nil {
		l.log.Warn().Err(fileErr).Str("file", l.errorFile).Msg("failed to open error log")
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(f, "%s - ERROR - [%s] %s\n", timestamp, component, err.Error())
}

// LogInfo logs an informational message
func (l *Logger) LogInfo(format string, args ...interface{}) {
	l.log.Info().Msgf(format, args...)
}
