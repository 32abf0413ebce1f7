package middleware

import (
	"context"
	"log/slog"
	"time"

	"stayquote/internal/app/commands"
	"stayquote/internal/app/queries"
)

// Recorder receives one observation per bus message.
type Recorder interface {
	Observe(key string, elapsed time.Duration, err error)
}

func InstrumentCommands(log *slog.Logger, rec Recorder) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := nextFn(ctx, cmd)
			observe(ctx, log, rec, "command", cmd.Key(), time.Since(start), err)
			return res, err
		})
	}
}

func InstrumentQueries(log *slog.Logger, rec Recorder) QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			start := time.Now()
			res, err := nextFn(ctx, q)
			observe(ctx, log, rec, "query", q.Key(), time.Since(start), err)
			return res, err
		})
	}
}

func observe(ctx context.Context, log *slog.Logger, rec Recorder, kind, key string, elapsed time.Duration, err error) {
	if rec != nil {
		rec.Observe(key, elapsed, err)
	}
	if log == nil {
		return
	}
	if err != nil {
		log.WarnContext(ctx, "bus message failed", "kind", kind, "key", key, "duration", elapsed, "error", err)
		return
	}
	log.DebugContext(ctx, "bus message handled", "kind", kind, "key", key, "duration", elapsed)
}
