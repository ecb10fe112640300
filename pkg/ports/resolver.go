package ports

import (
	"context"

	"github.com/aretw0/machi/pkg/domain"
)

// Resolver resolves a flow against an untyped context. current is the entry
// the caller is positioned on, or empty.
type Resolver interface {
	Resolve(ctx context.Context, data map[string]any, current string) (*domain.Outcome, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, data map[string]any, current string) (*domain.Outcome, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, data map[string]any, current string) (*domain.Outcome, error) {
	return f(ctx, data, current)
}
