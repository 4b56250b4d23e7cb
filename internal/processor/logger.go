// Logger abstraction of the processing pipeline, implemented on zerolog.
// The pipeline only depends on the interface, so tests can run silent.

package processor

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the logging interface of the pipeline.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

type zerologAdapter struct {
	log zerolog.Logger
}

// NewLogger builds the application logger. verbose forces debug level,
// otherwise level names one of debug, info, warn, error.
func NewLogger(level string, verbose bool) Logger {
	return NewLoggerTo(os.Stderr, level, verbose)
}

// NewLoggerTo is NewLogger with an explicit destination.
func NewLoggerTo(w io.Writer, level string, verbose bool) Logger {
	lvl := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(level); err == nil {
		lvl = parsed
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}

	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	return &zerologAdapter{
		log: zerolog.New(out).Level(lvl).With().Timestamp().Logger(),
	}
}

// NopLogger discards everything; used by tests.
func NopLogger() Logger {
	return &zerologAdapter{log: zerolog.Nop()}
}

func (z *zerologAdapter) Debug(msg string, args ...interface{}) { z.log.Debug().Msgf(msg, args...) }
func (z *zerologAdapter) Info(msg string, args ...interface{})  { z.log.Info().Msgf(msg, args...) }
func (z *zerologAdapter) Warn(msg string, args ...interface{})  { z.log.Warn().Msgf(msg, args...) }
func (z *zerologAdapter) Error(msg string, args ...interface{}) { z.log.Error().Msgf(msg, args...) }
