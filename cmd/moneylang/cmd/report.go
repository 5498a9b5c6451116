package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/moneylang/moneylang/internal/core"
)

// reportError prints the offending line with its baked-in caret (when the
// error carries one) followed by the message, then logs it and returns the
// exit code the caller should use.
func reportError(logger *slog.Logger, err error) int {
	switch e := err.(type) {
	case *core.SyntaxError:
		printSnippet(e.Snippet)
	case *core.FileError:
		logger.Error(err.Error())
		return exitFileError
	}
	logger.Error(err.Error())
	return exitCompileError
}

func printSnippet(snippet string) {
	if snippet == "" {
		return
	}
	fmt.Fprintln(os.Stderr, snippet)
}
