package runtime

import (
	"fmt"

	"github.com/aretw0/machi/internal/compiler"
	"github.com/aretw0/machi/pkg/domain"
)

// walker carries the per-call inputs of one traversal.
type walker[C, D any] struct {
	ctx       C
	evaluated map[string]bool
}

// resolve walks nodes in declaration order and returns the first incomplete
// entry with the history accumulated before it. A nil node means every entry
// reachable from nodes is complete; the returned history then holds all of
// them.
//
// history is never mutated in place: appends always copy, so the slice a
// caller passes in stays valid whatever happens below it.
func (w *walker[C, D]) resolve(nodes []*compiler.Node[C, D], history []domain.Step[C, D]) (*compiler.Node[C, D], []domain.Step[C, D], error) {
	// name of the fork completed just before the current sibling, if any
	var completed *string

	for _, n := range nodes {
		switch node := n.Node.(type) {
		case *domain.Fork[C, D]:
			// The variants that follow a completed fork belong to the
			// decision already taken.
			if completed != nil && *completed == node.Name {
				continue
			}
			completed = nil

			entered, err := w.all(n, node.Requirements)
			if err != nil {
				return nil, nil, err
			}
			if !entered {
				continue
			}

			current, next, err := w.resolve(n.Children, appendStep(history, n.Step))
			if err != nil {
				return nil, nil, err
			}
			if current != nil {
				return current, next, nil
			}
			history = next
			name := node.Name
			completed = &name

		case *domain.Entry[C, D]:
			completed = nil

			done, err := w.isDone(n, node)
			if err != nil {
				return nil, nil, err
			}
			if !done {
				return n, history, nil
			}
			history = appendStep(history, n.Step)

		default:
			return nil, nil, fmt.Errorf("node %q: unsupported node type %T", n.Label(), n.Node)
		}
	}

	return nil, history, nil
}

// isDone reports whether every IsDone condition holds. An entry without
// conditions is never done.
func (w *walker[C, D]) isDone(n *compiler.Node[C, D], e *domain.Entry[C, D]) (bool, error) {
	if len(e.IsDone) == 0 {
		return false, nil
	}
	return w.all(n, e.IsDone)
}

func (w *walker[C, D]) all(n *compiler.Node[C, D], conds []domain.Condition[C]) (bool, error) {
	for _, c := range conds {
		ok, err := w.holds(n, c)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (w *walker[C, D]) holds(n *compiler.Node[C, D], c domain.Condition[C]) (bool, error) {
	switch c.Kind() {
	case domain.ConditionRef:
		ok, found := w.evaluated[c.Key()]
		if !found {
			return false, &domain.ConditionError{Condition: c.Key(), Node: n.Label(), Err: domain.ErrUnknownCondition}
		}
		return ok, nil
	case domain.ConditionInline:
		fn := c.Predicate()
		if fn == nil {
			return false, &domain.ConditionError{Condition: c.Label(), Node: n.Label(), Err: domain.ErrNilPredicate}
		}
		ok, err := fn(w.ctx)
		if err != nil {
			return false, &domain.ConditionError{Condition: c.Label(), Node: n.Label(), Err: err}
		}
		return ok, nil
	default:
		return false, fmt.Errorf("node %q: unsupported condition kind %v", n.Label(), c.Kind())
	}
}

func appendStep[C, D any](history []domain.Step[C, D], s domain.Step[C, D]) []domain.Step[C, D] {
	return append(history[:len(history):len(history)], s)
}

// resume moves the result entry to the entry following currentEntryID in the
// history. The history itself is left as naturally resolved.
func resume[C, D any](res *domain.Result[C, D], currentEntryID string) {
	entries := res.Entries()
	for i, s := range entries {
		if s.Label() != currentEntryID && s.InternalID != currentEntryID {
			continue
		}
		if i+1 < len(entries) {
			next := entries[i+1]
			res.Entry = &next
			res.Resumed = true
		}
		return
	}
}
