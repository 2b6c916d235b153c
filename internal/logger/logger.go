package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string // trace, debug, info, warn, error, fatal, panic
	Format     string // json, console
	TimeFormat string
	Output     string // stdout, stderr, or file path
}

// DefaultConfig returns the console logger used when nothing is configured
func DefaultConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Format:     "console",
		TimeFormat: time.RFC3339,
		Output:     "stdout",
	}
}

var (
	outputMu   sync.Mutex
	baseOutput io.Writer = os.Stderr
	fileSink   io.Writer
)

// Setup initializes the global logger with the provided configuration
func Setup(config LogConfig) error {
	level, err := zerolog.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer
	switch config.Output {
	case "", "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		output = file
	}

	if strings.ToLower(config.Format) != "json" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: config.TimeFormat,
			NoColor:    config.Output != "stdout" && config.Output != "stderr" && config.Output != "",
		}
	}

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	outputMu.Lock()
	baseOutput = output
	rebuildLocked()
	outputMu.Unlock()
	return nil
}

// attachSink tees every log line into w, in JSON, next to the configured
// output. Passing nil detaches it.
func attachSink(w io.Writer) {
	outputMu.Lock()
	fileSink = w
	rebuildLocked()
	outputMu.Unlock()
}

func rebuildLocked() {
	var out io.Writer = baseOutput
	if fileSink != nil {
		out = zerolog.MultiLevelWriter(baseOutput, fileSink)
	}
	log.Logger = zerolog.New(out).With().
		Timestamp().
		Caller().
		Logger()
}

// GetLogger returns a logger instance
func GetLogger() *zerolog.Logger {
	return &log.Logger
}

// WithComponent returns a logger with a component field
func WithComponent(component string) *zerolog.Logger {
	l := log.Logger.With().Str("component", component).Logger()
	return &l
}

// WithRequestID returns a logger with a request ID field
func WithRequestID(requestID string) *zerolog.Logger {
	l := log.Logger.With().Str("request_id", requestID).Logger()
	return &l
}
