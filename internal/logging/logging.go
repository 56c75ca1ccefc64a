package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New builds the application logger writing to stderr. The level string is
// case-insensitive; anything unrecognized falls back to info.
func New(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "docvault",
	})
	logger.SetLevel(parseLevel(level))
	return logger
}

// Nop returns a logger that discards all output. Intended for tests.
func Nop() *log.Logger {
	return log.New(io.Discard)
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
