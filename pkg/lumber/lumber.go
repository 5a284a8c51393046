// Package lumber provides a thin logging facade over zap and logrus so the
// rest of the application never imports a concrete logging library.
package lumber

import "errors"

// A global variable so that log functions can be directly accessed
var log Logger

// Fields Type to pass when we want to call WithFields for structured logging
type Fields map[string]interface{}

const (
	// DebugLevel has verbose message
	DebugLevel = "debug"
	// InfoLevel is default log level
	InfoLevel = "info"
	// WarnLevel is for logging messages about possible issues
	WarnLevel = "warn"
	// ErrorLevel is for logging errors
	ErrorLevel = "error"
	// FatalLevel is for logging fatal messages. The system shutdowns after logging the message.
	FatalLevel = "fatal"
)

const (
	// InstanceZapLogger zap logger instance
	InstanceZapLogger int = iota
	// InstanceLogrusLogger logrus logger instance
	InstanceLogrusLogger
)

var errInvalidLoggerInstance = errors.New("invalid logger instance")

// Logger is the contract for the logger interface
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	Panicf(format string, args ...interface{})
	WithFields(keyValues Fields) Logger
}

// LoggingConfig stores the config for the logger
// For some loggers there can only be one level across writers, for such
// the level of Console is picked by default
type LoggingConfig struct {
	EnableConsole     bool
	ConsoleJSONFormat bool
	ConsoleLevel      string
	EnableFile        bool
	FileJSONFormat    bool
	FileLevel         string
	FileLocation      string
}

// NewLogger returns an instance of logger
func NewLogger(config *LoggingConfig, verbose bool, loggerInstance int) (Logger, error) {
	if verbose {
		config.ConsoleLevel = DebugLevel
		config.FileLevel = DebugLevel
	}
	if config.ConsoleLevel == "" {
		config.ConsoleLevel = InfoLevel
	}
	if config.FileLevel == "" {
		config.FileLevel = InfoLevel
	}
	switch loggerInstance {
	case InstanceZapLogger:
		logger, err := newZapLogger(config)
		if err != nil {
			return nil, err
		}
		log = logger
		return logger, nil

	case InstanceLogrusLogger:
		logger, err := newLogrusLogger(config)
		if err != nil {
			return nil, err
		}
		log = logger
		return logger, nil

	default:
		return nil, errInvalidLoggerInstance
	}
}

// Debugf logs a formatted debug message on the global logger.
func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Infof logs a formatted info message on the global logger.
func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Warnf logs a formatted warning message on the global logger.
func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

// Errorf logs a formatted error message on the global logger.
func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// Fatalf logs a formatted fatal message on the global logger.
func Fatalf(format string, args ...interface{}) {
	log.Fatalf(format, args...)
}

// Panicf logs a formatted message on the global logger and panics.
func Panicf(format string, args ...interface{}) {
	log.Panicf(format, args...)
}

// WithFields adds structured fields to the global logger.
func WithFields(keyValues Fields) Logger {
	return log.WithFields(keyValues)
}
