package observability

import (
	"log/slog"
	"os"
)

// NewLogger returns a JSON logger whose records pick up the active trace and
// span ids when a request context carries one.
func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(NewTraceHandler(handler))
}
