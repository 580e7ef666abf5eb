package middleware

import (
	"context"

	"tripdesk/internal/app/commands"
	"tripdesk/internal/app/outbox"
)

// discarder is implemented by outboxes that buffer records outside the
// transaction and must drop them when a command fails.
type discarder interface {
	Discard(ctx context.Context)
}

// OutboxFlush persists buffered events after the command returns without error.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				if d, ok := box.(discarder); ok {
					d.Discard(ctx)
				}
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
