package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// New builds the process logger from LOG_LEVEL and LOG_FORMAT. It reads the
// environment directly because it is constructed before the config.
func New() zerolog.Logger {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if os.Getenv("LOG_FORMAT") == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}
	return build(out, level)
}

func build(out io.Writer, level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "pat-tracker").
		Caller().
		Logger()
}

var Module = fx.Provide(New)
