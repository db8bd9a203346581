package httpserver

import (
	"io"
	"log/slog"
)

// newNoopLogger returns a logger that discards everything, so the server
// never has to nil-check its logger.
func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
