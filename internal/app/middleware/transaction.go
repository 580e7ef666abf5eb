package middleware

import (
	"context"
	"log/slog"

	"tripdesk/internal/app/commands"
	"tripdesk/internal/app/uow"
)

// TxPolicy tunes Transaction. The zero value opens a writable unit per
// command and never retries.
type TxPolicy struct {
	Options func(cmd commands.Command) uow.TxOptions
	// Retryable marks errors after which the whole command may be rerun in a
	// fresh unit, e.g. a storage write conflict.
	Retryable func(err error) bool
	Attempts  int
	Logger    *slog.Logger
}

func (p TxPolicy) attempts() int {
	if p.Retryable == nil || p.Attempts < 1 {
		return 1
	}
	return p.Attempts
}

// Transaction runs each command inside a fresh unit of work, committing only
// when the handler succeeds. Availability is re-read on every attempt, so a
// retried booking sees the writes that made the first attempt fail.
func Transaction(factory uow.UoWFactory, policy TxPolicy) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			var (
				res any
				err error
			)
			for attempt := 1; attempt <= policy.attempts(); attempt++ {
				res, err = runInUnit(ctx, factory, policy, next, cmd)
				if err == nil || policy.Retryable == nil || !policy.Retryable(err) {
					return res, err
				}
				if policy.Logger != nil {
					policy.Logger.WarnContext(ctx, "command conflicted, retrying", "command", cmd.Key(), "attempt", attempt, "error", err)
				}
			}
			return nil, err
		})
	}
}

func runInUnit(ctx context.Context, factory uow.UoWFactory, policy TxPolicy, next commands.Bus, cmd commands.Command) (any, error) {
	opts := uow.TxOptions{}
	if policy.Options != nil {
		opts = policy.Options(cmd)
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	execCtx := uow.Bind(ctx, unit)
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := unit.Rollback(execCtx); rbErr != nil && policy.Logger != nil {
			policy.Logger.ErrorContext(ctx, "rollback failed", "command", cmd.Key(), "error", rbErr)
		}
	}()

	res, err := next.Dispatch(execCtx, cmd)
	if err != nil {
		return nil, err
	}
	if err := unit.Commit(execCtx); err != nil {
		return nil, err
	}
	committed = true
	return res, nil
}
