package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/secmon-lab/argus/pkg/utils/logging"
)

// Close closes closer and logs a failure. Nil closers are ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Warn("failed to close", slog.Any("error", err))
	}
}

// CloseFunc runs a close function and logs a failure. It suits clients
// whose Close does not match io.Closer.
func CloseFunc(ctx context.Context, name string, closeFn func() error) {
	if closeFn == nil {
		return
	}
	if err := closeFn(); err != nil {
		logging.From(ctx).Warn("failed to close", slog.String("target", name), slog.Any("error", err))
	}
}
