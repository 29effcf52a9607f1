package api

import (
	"context"
	"log/slog"
)

// LevelTrace is the log level of per-command progress records. It sits
// above Info, so the default slog handler prints one record per translated
// command. Callers that embed the driver install a handler at slog.LevelWarn
// or higher to silence it.
const LevelTrace slog.Level = slog.LevelInfo + 1

// Trace logs at LevelTrace through the default logger.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}
