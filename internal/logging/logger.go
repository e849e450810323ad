package logging

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	TextFormat = "text"
	JSONFormat = "json"
)

const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// New builds the process logger. format is "text" (console, no color) or "json".
func New(level, format string, w io.Writer) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), err
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out, err := selectFormatOutput(format, w)
	if err != nil {
		return zerolog.Nop(), err
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

func selectFormatOutput(format string, w io.Writer) (io.Writer, error) {
	switch strings.ToLower(format) {
	case "", TextFormat:
		return zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    true,
			TimeFormat: TimestampFormat,
			PartsOrder: []string{
				zerolog.TimestampFieldName,
				zerolog.LevelFieldName,
				zerolog.MessageFieldName,
			},
		}, nil
	case JSONFormat:
		return w, nil
	default:
		return nil, errors.New("unknown log format " + format)
	}
}
