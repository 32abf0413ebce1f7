package middleware

import (
	"context"
	"fmt"

	"stayquote/internal/app/commands"
	"stayquote/internal/app/outbox"
)

// OutboxFlush hands recorded events to the box after a successful command.
// A flush failure fails the command, so Idempotency above it stores nothing
// and a retry re-records under the same event IDs.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, fmt.Errorf("flush outbox after %s: %w", cmd.Key(), err)
			}
			return res, nil
		})
	}
}
