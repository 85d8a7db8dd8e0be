package testutil

import (
	"context"
	"io"
	"log/slog"
	"time"

	"safereturn/pkg/requestcontext"
)

// FixedNow is the reference instant used by service tests.
var FixedNow = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

// Context returns a background context pinned to FixedNow.
func Context() context.Context {
	return requestcontext.WithTime(context.Background(), FixedNow)
}

// DiscardLogger returns a logger that drops all output.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
