package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/machi/pkg/domain"
)

// DebugHooks logs every lifecycle event at debug level.
func DebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnResolve: func(ctx context.Context, e *domain.ResolveEvent) {
			logger.DebugContext(ctx, "resolve",
				"flow", e.Flow,
				"entry", e.EntryID,
				"current", e.CurrentID,
				"resumed", e.Resumed,
				"history", e.HistoryLength,
				"took", e.Duration,
			)
		},
		OnForkEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "fork entered", "flow", e.Flow, "fork", e.NodeID, "internal_id", e.InternalID)
		},
		OnFlowComplete: func(ctx context.Context, e *domain.ResolveEvent) {
			logger.DebugContext(ctx, "flow complete", "flow", e.Flow, "history", e.HistoryLength)
		},
	}
}

// MergeHooks calls every non-nil hook of each set, in order.
func MergeHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnResolve = chain(out.OnResolve, h.OnResolve)
		out.OnForkEnter = chain(out.OnForkEnter, h.OnForkEnter)
		out.OnFlowComplete = chain(out.OnFlowComplete, h.OnFlowComplete)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
