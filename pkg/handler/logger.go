package handler

import (
	"io"
	"log/slog"
	"os"
)

type Logger interface {
	Debug(string, ...interface{})
	Info(string, ...interface{})
}

type fullLogger struct {
	log *slog.Logger
}

// NewLogger returns a structured logger on stderr. Debug messages are only
// written when debug is set. Arguments are slog key/value pairs.
func NewLogger(debug bool) Logger {
	return newLogger(os.Stderr, debug)
}

func newLogger(w io.Writer, debug bool) Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	return fullLogger{
		log: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})),
	}
}

func (l fullLogger) Debug(msg string, args ...interface{}) {
	l.log.Debug(msg, args...)
}

func (l fullLogger) Info(msg string, args ...interface{}) {
	l.log.Info(msg, args...)
}
