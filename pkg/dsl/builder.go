package dsl

import "github.com/aretw0/machi/pkg/domain"

// Builder collects the nodes of one tree level in declaration order.
type Builder[C, D any] struct {
	items []item[C, D]
}

type item[C, D any] interface {
	build(path string) (domain.Node[C, D], error)
}

// New creates an empty builder.
func New[C, D any]() *Builder[C, D] {
	return &Builder[C, D]{}
}

// Entry appends an entry to the current level.
func (b *Builder[C, D]) Entry(id string) *EntryBuilder[C, D] {
	eb := &EntryBuilder[C, D]{entry: &domain.Entry[C, D]{ID: id}}
	b.items = append(b.items, eb)
	return eb
}

// Fork appends a fork to the current level. Its children are declared with
// Then.
func (b *Builder[C, D]) Fork(name string) *ForkBuilder[C, D] {
	fb := &ForkBuilder[C, D]{fork: &domain.Fork[C, D]{Name: name}}
	b.items = append(b.items, fb)
	return fb
}

// Build returns the tree. A fork without children fails with
// domain.ErrEmptyFork.
func (b *Builder[C, D]) Build() ([]domain.Node[C, D], error) {
	return b.build("")
}

func (b *Builder[C, D]) build(path string) ([]domain.Node[C, D], error) {
	nodes := make([]domain.Node[C, D], 0, len(b.items))
	for _, it := range b.items {
		n, err := it.build(path)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
