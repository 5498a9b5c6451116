// Package logging installs the compiler's slog handler tree: human-readable
// text to stderr at Info and above, plus an optional JSON handler at Debug
// writing to a file when one is configured. Grounded on the slog-multi
// dependency declared (but never wired) in Manu343726-cucaracha's go.mod.
package logging

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"

	"github.com/moneylang/moneylang/internal/core"
)

// New builds a *slog.Logger fanning out to stderr text at Info+ and,
// when logFile is non-empty, JSON at Debug+ to that file. The returned
// closer must be called once logging is done (no-op when logFile is
// empty).
func New(logFile string) (*slog.Logger, func() error, error) {
	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})

	if logFile == "" {
		return slog.New(stderrHandler), func() error { return nil }, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, &core.FileError{Path: logFile, Err: err}
	}
	jsonHandler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})

	handler := slogmulti.Fanout(stderrHandler, jsonHandler)
	return slog.New(handler), f.Close, nil
}

// NewDiscard builds a logger that drops everything, for tests.
func NewDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
