package echofriend

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EchoLogger wraps zerolog for structured logging
type EchoLogger struct {
	logger zerolog.Logger
}

// LogConfig represents the configuration for logging
type LogConfig struct {
	Level  string
	Pretty bool
	Output io.Writer
}

// DefaultLogConfig returns a default logging configuration
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		Level:  "INFO",
		Pretty: true,
		Output: os.Stderr,
	}
}

// NewEchoLogger creates a new structured logger
func NewEchoLogger(config *LogConfig) *EchoLogger {
	if config == nil {
		config = DefaultLogConfig()
	}

	zerolog.TimeFieldFormat = time.RFC3339

	var logger zerolog.Logger

	if config.Pretty {
		logger = log.Output(zerolog.ConsoleWriter{
			Out:        config.Output,
			TimeFormat: time.Kitchen,
		})
	} else {
		logger = zerolog.New(config.Output)
	}

	switch config.Level {
	case "DEBUG":
		logger = logger.Level(zerolog.DebugLevel)
	case "INFO":
		logger = logger.Level(zerolog.InfoLevel)
	case "WARNING":
		logger = logger.Level(zerolog.WarnLevel)
	case "ERROR":
		logger = logger.Level(zerolog.ErrorLevel)
	default:
		logger = logger.Level(zerolog.InfoLevel)
	}

	logger = logger.With().Timestamp().Logger()

	return &EchoLogger{
		logger: logger,
	}
}

// WithComponent adds a component field to the logger
func (l *EchoLogger) WithComponent(component string) *EchoLogger {
	return &EchoLogger{
		logger: l.logger.With().Str("component", component).Logger(),
	}
}

// WithField adds a field to the logger
func (l *EchoLogger) WithField(key string, value interface{}) *EchoLogger {
	return &EchoLogger{
		logger: l.logger.With().Interface(key, value).Logger(),
	}
}

// WithError adds an error field to the logger
func (l *EchoLogger) WithError(err error) *EchoLogger {
	return &EchoLogger{
		logger: l.logger.With().Err(err).Logger(),
	}
}

func (l *EchoLogger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

func (l *EchoLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

func (l *EchoLogger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

func (l *EchoLogger) Infof(format string, args ...interface{}) {
	l.logger.Info().Msgf(format, args...)
}

func (l *EchoLogger) Warn(msg string) {
	l.logger.Warn().Msg(msg)
}

func (l *EchoLogger) Warnf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l *EchoLogger) Error(msg string) {
	l.logger.Error().Msg(msg)
}

func (l *EchoLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l *EchoLogger) Fatal(msg string) {
	l.logger.Fatal().Msg(msg)
}

// LogTurnEvent logs turn-pipeline events with structured fields
func (l *EchoLogger) LogTurnEvent(turn int, stage Stage, fields map[string]interface{}) {
	l.logger.Info().
		Str("event_type", "turn").
		Int("turn", turn).
		Str("stage", string(stage)).
		Fields(fields).
		Msg("Turn event")
}

// LogAudioEvent logs audio-related events with structured fields
func (l *EchoLogger) LogAudioEvent(event string, fields map[string]interface{}) {
	l.logger.Info().
		Str("event_type", "audio").
		Str("event", event).
		Fields(fields).
		Msg("Audio event")
}

// LogError logs an EchoError with structured fields
func (l *EchoLogger) LogError(err *EchoError) {
	l.logger.Error().
		Str("error_code", err.Code).
		Float64("timestamp", err.Timestamp).
		Fields(err.Details).
		Msg(err.Message)
}

// Global logger instance
var globalLogger *EchoLogger

func init() {
	globalLogger = NewEchoLogger(DefaultLogConfig())
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *EchoLogger {
	return globalLogger
}

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(logger *EchoLogger) {
	globalLogger = logger
}
