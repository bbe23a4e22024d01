package cmd

import (
	"io"
	"log/slog"

	"github.com/ethereum/go-ethereum/log"
)

// Logger builds the structured logger the run command passes down as the
// Hart's debug sink, matching the teacher's own cmd.Logger helper: a
// logfmt handler over an arbitrary writer at a chosen minimum level.
func Logger(w io.Writer, lvl slog.Level) log.Logger {
	return log.NewLogger(log.LogfmtHandlerWithLevel(w, lvl))
}
