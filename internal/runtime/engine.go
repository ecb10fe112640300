// Package runtime resolves a normalized flow tree against a context.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/aretw0/machi/internal/compiler"
	"github.com/aretw0/machi/internal/logging"
	"github.com/aretw0/machi/pkg/domain"
)

// Engine resolves the current entry of a flow. It holds no state between
// calls and is safe for concurrent use.
type Engine[C, D any] struct {
	nodes      []*compiler.Node[C, D]
	conditions domain.ConditionsMap[C]
	keys       []string
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	name       string
}

type engineConfig struct {
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	name   string
}

// EngineOption configures an Engine.
type EngineOption func(*engineConfig)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(c *engineConfig) {
		c.hooks = hooks
	}
}

// WithLogger sets the structured logger used for debug traces.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(c *engineConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithName labels the flow in events and logs.
func WithName(name string) EngineOption {
	return func(c *engineConfig) {
		c.name = name
	}
}

// NewEngine creates an engine over an already normalized tree. Every
// condition the tree refers to must exist in conditions.
func NewEngine[C, D any](nodes []*compiler.Node[C, D], conditions domain.ConditionsMap[C], opts ...EngineOption) (*Engine[C, D], error) {
	cfg := engineConfig{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validateConditions(nodes, conditions); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(conditions))
	for k := range conditions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return &Engine[C, D]{
		nodes:      nodes,
		conditions: conditions,
		keys:       keys,
		hooks:      cfg.hooks,
		logger:     cfg.logger,
		name:       cfg.name,
	}, nil
}

// Nodes returns the normalized tree the engine walks.
func (e *Engine[C, D]) Nodes() []*compiler.Node[C, D] {
	return e.nodes
}

// Execute resolves the flow for c. See ExecuteContext.
func (e *Engine[C, D]) Execute(c C, currentEntryID string) (*domain.Result[C, D], error) {
	return e.ExecuteContext(context.Background(), c, currentEntryID)
}

// ExecuteContext resolves the current entry and the history leading to it.
//
// When currentEntryID names an entry of the resolved history (by id or
// internal id), the entry following it in that history is returned instead
// and the result is marked Resumed. When it does not, the naturally resolved
// result is returned. A result with a nil Entry means the flow is finished.
// This applies to a finished flow too: given an entry of its history that is
// not the last one, the finished flow comes back positioned on the entry
// after it, marked Resumed.
//
// ctx is only handed to lifecycle hooks; resolution itself never blocks.
func (e *Engine[C, D]) ExecuteContext(ctx context.Context, c C, currentEntryID string) (*domain.Result[C, D], error) {
	start := time.Now()

	evaluated, err := e.evaluate(c)
	if err != nil {
		return nil, err
	}

	w := &walker[C, D]{ctx: c, evaluated: evaluated}
	current, history, err := w.resolve(e.nodes, nil)
	if err != nil {
		return nil, err
	}

	res := &domain.Result[C, D]{History: history}
	if current != nil {
		step := current.Step
		res.Entry = &step
	}
	if currentEntryID != "" {
		resume(res, currentEntryID)
	}

	e.logger.Debug("flow resolved",
		"flow", e.name,
		"entry", entryLabel(res),
		"current", currentEntryID,
		"history", len(res.History),
		"resumed", res.Resumed,
	)
	e.emit(ctx, res, currentEntryID, time.Since(start))

	return res, nil
}

// evaluate runs every named condition once against c. The answers are
// reused for the whole walk.
func (e *Engine[C, D]) evaluate(c C) (map[string]bool, error) {
	out := make(map[string]bool, len(e.keys))
	for _, k := range e.keys {
		ok, err := e.conditions[k](c)
		if err != nil {
			return nil, &domain.ConditionError{Condition: k, Err: err}
		}
		out[k] = ok
	}
	return out, nil
}

func validateConditions[C, D any](nodes []*compiler.Node[C, D], conditions domain.ConditionsMap[C]) error {
	for k, fn := range conditions {
		if fn == nil {
			return &domain.ConditionError{Condition: k, Err: domain.ErrNilPredicate}
		}
	}

	var err error
	compiler.Conditions(nodes, func(n *compiler.Node[C, D], c domain.Condition[C]) {
		if err != nil {
			return
		}
		switch c.Kind() {
		case domain.ConditionRef:
			if _, ok := conditions[c.Key()]; !ok {
				err = &domain.ConditionError{Condition: c.Key(), Node: n.Label(), Err: domain.ErrUnknownCondition}
			}
		case domain.ConditionInline:
			if c.Predicate() == nil {
				err = &domain.ConditionError{Condition: c.Label(), Node: n.Label(), Err: domain.ErrNilPredicate}
			}
		default:
			err = fmt.Errorf("node %q: unsupported condition kind %v", n.Label(), c.Kind())
		}
	})
	return err
}

func entryLabel[C, D any](res *domain.Result[C, D]) string {
	if res.Entry == nil {
		return ""
	}
	return res.Entry.Label()
}
