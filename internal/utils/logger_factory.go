package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	consoleMessageKeyConstant            = "message"
)

// LogLevel names a logging threshold accepted in configuration.
type LogLevel string

// Supported log levels.
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat names the encoding of the diagnostic log.
type LogFormat string

// Supported log formats.
const (
	LogFormatStructured LogFormat = "structured"
	LogFormatConsole    LogFormat = "console"
)

var zapLevelsByName = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

// LoggerOutputs pairs the diagnostic logger with the console logger used for
// per-command progress lines. The console logger is a no-op unless the console
// format is selected.
type LoggerOutputs struct {
	DiagnosticLogger *zap.Logger
	ConsoleLogger    *zap.Logger
}

// LoggerFactory builds zap loggers writing to a single destination, standard error by default.
type LoggerFactory struct {
	destination zapcore.WriteSyncer
}

// NewLoggerFactory constructs a factory writing to standard error.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{destination: zapcore.Lock(os.Stderr)}
}

// NewLoggerFactoryWithOutput constructs a factory writing to output.
func NewLoggerFactoryWithOutput(output io.Writer) *LoggerFactory {
	return &LoggerFactory{destination: zapcore.Lock(zapcore.AddSync(output))}
}

// CreateLogger builds the diagnostic logger: JSON lines for the structured
// format, zap's development encoding for the console format.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	level, levelError := parseLogLevel(requestedLogLevel)
	if levelError != nil {
		return nil, levelError
	}

	var encoder zapcore.Encoder
	switch normalizeLogFormat(requestedLogFormat) {
	case LogFormatStructured:
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	case LogFormatConsole:
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	default:
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}

	core := zapcore.NewCore(encoder, factory.output(), level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// CreateLoggerOutputs builds the diagnostic logger and, for the console format,
// a console logger printing bare messages at the requested level.
func (factory *LoggerFactory) CreateLoggerOutputs(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (LoggerOutputs, error) {
	diagnosticLogger, diagnosticError := factory.CreateLogger(requestedLogLevel, requestedLogFormat)
	if diagnosticError != nil {
		return LoggerOutputs{}, diagnosticError
	}

	if normalizeLogFormat(requestedLogFormat) != LogFormatConsole {
		return LoggerOutputs{DiagnosticLogger: diagnosticLogger, ConsoleLogger: zap.NewNop()}, nil
	}

	level, _ := parseLogLevel(requestedLogLevel)
	consoleEncoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:     consoleMessageKeyConstant,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
	})
	consoleLogger := zap.New(zapcore.NewCore(consoleEncoder, factory.output(), level))
	return LoggerOutputs{DiagnosticLogger: diagnosticLogger, ConsoleLogger: consoleLogger}, nil
}

func (factory *LoggerFactory) output() zapcore.WriteSyncer {
	if factory == nil || factory.destination == nil {
		return zapcore.Lock(os.Stderr)
	}
	return factory.destination
}

func parseLogLevel(requestedLogLevel LogLevel) (zapcore.Level, error) {
	level, known := zapLevelsByName[LogLevel(strings.ToLower(strings.TrimSpace(string(requestedLogLevel))))]
	if !known {
		return zapcore.InfoLevel, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}
	return level, nil
}

func normalizeLogFormat(requestedLogFormat LogFormat) LogFormat {
	return LogFormat(strings.ToLower(strings.TrimSpace(string(requestedLogFormat))))
}
