package dsl

import (
	"fmt"

	"github.com/aretw0/machi/pkg/domain"
)

// EntryBuilder configures an entry.
type EntryBuilder[C, D any] struct {
	entry *domain.Entry[C, D]
}

// DoneWhen adds named completion conditions.
func (e *EntryBuilder[C, D]) DoneWhen(keys ...string) *EntryBuilder[C, D] {
	e.entry.IsDone = append(e.entry.IsDone, domain.Refs[C](keys...)...)
	return e
}

// DoneIf adds inline completion conditions.
func (e *EntryBuilder[C, D]) DoneIf(conds ...domain.Condition[C]) *EntryBuilder[C, D] {
	e.entry.IsDone = append(e.entry.IsDone, conds...)
	return e
}

// Data attaches the caller payload.
func (e *EntryBuilder[C, D]) Data(d D) *EntryBuilder[C, D] {
	e.entry.Data = d
	return e
}

func (e *EntryBuilder[C, D]) build(string) (domain.Node[C, D], error) {
	out := *e.entry
	out.IsDone = append([]domain.Condition[C](nil), e.entry.IsDone...)
	return &out, nil
}

// ForkBuilder configures a fork.
type ForkBuilder[C, D any] struct {
	fork     *domain.Fork[C, D]
	children *Builder[C, D]
}

// Requires adds named requirements.
func (f *ForkBuilder[C, D]) Requires(keys ...string) *ForkBuilder[C, D] {
	f.fork.Requirements = append(f.fork.Requirements, domain.Refs[C](keys...)...)
	return f
}

// RequiresIf adds inline requirements.
func (f *ForkBuilder[C, D]) RequiresIf(conds ...domain.Condition[C]) *ForkBuilder[C, D] {
	f.fork.Requirements = append(f.fork.Requirements, conds...)
	return f
}

// Group places the fork in a chart subgraph.
func (f *ForkBuilder[C, D]) Group(label string) *ForkBuilder[C, D] {
	f.fork.ChartGroup = label
	return f
}

// Then declares the children of the fork. Calling it again appends more.
func (f *ForkBuilder[C, D]) Then(fn func(b *Builder[C, D])) *ForkBuilder[C, D] {
	if f.children == nil {
		f.children = New[C, D]()
	}
	fn(f.children)
	return f
}

func (f *ForkBuilder[C, D]) build(path string) (domain.Node[C, D], error) {
	path = path + "/" + f.fork.Name
	if f.children == nil || len(f.children.items) == 0 {
		return nil, fmt.Errorf("fork %q: %w", path, domain.ErrEmptyFork)
	}
	children, err := f.children.build(path)
	if err != nil {
		return nil, err
	}

	out := *f.fork
	out.Requirements = append([]domain.Condition[C](nil), f.fork.Requirements...)
	out.Children = children
	return &out, nil
}
