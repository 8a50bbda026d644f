package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger returns a zerolog Logger.
// APP_ENV=dev (or development) uses a human-friendly console writer.
// A non-empty file additionally writes JSON lines to a rotated log file.
func NewLogger(env, file string) zerolog.Logger {
	if env == "dev" || env == "development" {
		return NewConsoleLogger(os.Stdout, file)
	}
	return zerolog.New(withFile(os.Stdout, file)).With().Timestamp().Logger()
}

// NewConsoleLogger writes human-friendly lines to w, plus JSON to file if set.
func NewConsoleLogger(w io.Writer, file string) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(withFile(console, file)).With().Timestamp().Logger()
}

func withFile(out io.Writer, file string) io.Writer {
	if file == "" {
		return out
	}
	return zerolog.MultiLevelWriter(out, &lumberjack.Logger{
		Filename:   file,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	})
}
