package observability

import (
	"log/slog"
	"os"
)

// Logger is the process-wide structured logger. It writes JSON to stdout
// and must never be handed secret material.
var Logger *slog.Logger

func init() {
	Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
