package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Handlers and services receive it via
// injection, never through a package-level global.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
