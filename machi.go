package machi

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/machi/internal/compiler"
	"github.com/aretw0/machi/internal/logging"
	"github.com/aretw0/machi/internal/runtime"
	"github.com/aretw0/machi/pkg/domain"
)

// Machine resolves one flow. It is immutable and safe for concurrent use.
type Machine[C, D any] struct {
	nodes  []*compiler.Node[C, D]
	engine *runtime.Engine[C, D]
	name   string
	logger *slog.Logger
}

type config struct {
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	name   string
}

// Option defines a functional option for configuring the Machine.
type Option func(*config)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithName names the flow in events, logs and metrics.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// New normalizes the tree and checks that every condition it refers to is
// in conditions.
func New[C, D any](tree []domain.Node[C, D], conditions domain.ConditionsMap[C], opts ...Option) (*Machine[C, D], error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}

	nodes, err := compiler.Normalize(tree)
	if err != nil {
		return nil, fmt.Errorf("normalize flow: %w", err)
	}

	engine, err := runtime.NewEngine(nodes, conditions,
		runtime.WithLifecycleHooks(cfg.hooks),
		runtime.WithLogger(cfg.logger),
		runtime.WithName(cfg.name),
	)
	if err != nil {
		return nil, err
	}

	cfg.logger.Debug("machine ready", "flow", cfg.name, "nodes", len(compiler.Flatten(nodes)), "conditions", len(conditions))
	return &Machine[C, D]{
		nodes:  nodes,
		engine: engine,
		name:   cfg.name,
		logger: cfg.logger,
	}, nil
}

// Name returns the flow name given with WithName.
func (m *Machine[C, D]) Name() string { return m.name }

// Execute resolves the current entry for ctx. currentEntryID, when not
// empty, is the entry (id or internal id) the caller is positioned on; the
// entry after it in the resolved history is returned, marked Resumed, even
// when the flow is otherwise finished.
func (m *Machine[C, D]) Execute(ctx C, currentEntryID string) (*domain.Result[C, D], error) {
	return m.engine.Execute(ctx, currentEntryID)
}

// ExecuteContext is Execute with a context handed to lifecycle hooks.
func (m *Machine[C, D]) ExecuteContext(goctx context.Context, ctx C, currentEntryID string) (*domain.Result[C, D], error) {
	return m.engine.ExecuteContext(goctx, ctx, currentEntryID)
}

// InspectedNode is a node of the normalized tree.
type InspectedNode[C, D any] struct {
	domain.Step[C, D]
	// Path is the structural key the internal id is derived from.
	Path  string
	Depth int
}

// Inspect lists the normalized tree in declaration order.
func (m *Machine[C, D]) Inspect() []InspectedNode[C, D] {
	flat := compiler.Flatten(m.nodes)
	out := make([]InspectedNode[C, D], len(flat))
	for i, n := range flat {
		out[i] = InspectedNode[C, D]{Step: n.Step, Path: n.Path, Depth: n.Depth}
	}
	return out
}
