package runtime

import (
	"context"
	"time"

	"github.com/aretw0/machi/pkg/domain"
)

func (e *Engine[C, D]) emit(ctx context.Context, res *domain.Result[C, D], currentEntryID string, took time.Duration) {
	now := time.Now()

	if e.hooks.OnForkEnter != nil {
		for _, s := range res.History {
			if !s.IsFork() {
				continue
			}
			e.hooks.OnForkEnter(ctx, &domain.NodeEvent{
				EventBase:  domain.EventBase{Timestamp: now, Type: domain.EventForkEnter, Flow: e.name},
				NodeID:     s.Label(),
				InternalID: s.InternalID,
				Kind:       domain.KindFork,
			})
		}
	}

	if e.hooks.OnResolve == nil && e.hooks.OnFlowComplete == nil {
		return
	}

	evt := &domain.ResolveEvent{
		EventBase:     domain.EventBase{Timestamp: now, Type: domain.EventResolve, Flow: e.name},
		EntryID:       entryLabel(res),
		CurrentID:     currentEntryID,
		HistoryLength: len(res.History),
		Resumed:       res.Resumed,
		Done:          res.Done(),
		Duration:      took,
	}
	if e.hooks.OnResolve != nil {
		e.hooks.OnResolve(ctx, evt)
	}
	if evt.Done && e.hooks.OnFlowComplete != nil {
		complete := *evt
		complete.Type = domain.EventFlowComplete
		e.hooks.OnFlowComplete(ctx, &complete)
	}
}
