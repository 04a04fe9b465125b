package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.Formatter = NewFormatter(os.Getenv("PECAN_LOGFORMAT"))
	log.Level = ParseLevel(os.Getenv("PECAN_LOGLEVEL"))
}

// Get returns the process logger.
func Get() *logrus.Logger {
	return log
}

// NewFormatter returns a JSON formatter for "json" and a text formatter otherwise.
func NewFormatter(name string) logrus.Formatter {
	switch strings.ToLower(name) {
	case "json":
		return &logrus.JSONFormatter{}
	default:
		return &logrus.TextFormatter{FullTimestamp: true}
	}
}

// ParseLevel maps a level name onto a logrus level, falling back to info.
func ParseLevel(name string) logrus.Level {
	switch strings.ToLower(name) {
	case "error":
		return logrus.ErrorLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "debug":
		return logrus.DebugLevel
	case "trace":
		return logrus.TraceLevel
	default:
		return logrus.InfoLevel
	}
}

// SetLevel changes the level of the process logger. An empty name keeps the
// current level.
func SetLevel(name string) {
	if name == "" {
		return
	}
	log.SetLevel(ParseLevel(name))
}

// TeeToFile makes the process logger also append to path. The returned closer
// restores the previous output.
func TeeToFile(path string) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	prev := log.Out
	log.SetOutput(io.MultiWriter(prev, f))
	return closerFunc(func() error {
		log.SetOutput(prev)
		return f.Close()
	}), nil
}

type closerFunc func() error

func (c closerFunc) Close() error { return c() }
