package domain

// NodeKind distinguishes entries from forks.
type NodeKind string

const (
	// KindEntry is a step of the flow.
	KindEntry NodeKind = "entry"
	// KindFork is a decision point gating a sub-tree.
	KindFork NodeKind = "fork"
)

// Node is either an *Entry or a *Fork.
type Node[C, D any] interface {
	// Kind reports whether the node is an entry or a fork.
	Kind() NodeKind
	// Label is the entry id or the fork name.
	Label() string

	sealed()
}

// Entry is a step in the flow. The first entry whose IsDone conditions do not
// all hold becomes the current entry.
type Entry[C, D any] struct {
	// ID identifies the step to the consumer (for example a screen name).
	// It does not need to be unique within the tree.
	ID string
	// IsDone must all hold for the entry to be complete. An empty list means
	// the entry is never complete.
	IsDone []Condition[C]
	// Data is carried through untouched.
	Data D
}

// Kind implements Node.
func (e *Entry[C, D]) Kind() NodeKind { return KindEntry }

// Label implements Node.
func (e *Entry[C, D]) Label() string { return e.ID }

func (e *Entry[C, D]) sealed() {}

// Fork is a decision point. When every requirement holds the fork's children
// are traversed in place of the fork.
type Fork[C, D any] struct {
	// Name labels the decision. Adjacent sibling forks sharing a name are
	// variants of one decision: the first whose requirements hold is entered,
	// and once its children are complete the remaining variants are skipped
	// even if their requirements also hold.
	Name string
	// ChartGroup optionally groups the fork's children in generated charts.
	ChartGroup string
	// Requirements must all hold for the fork to be entered.
	Requirements []Condition[C]
	// Children are evaluated in order once the fork is entered. Must not be
	// empty.
	Children []Node[C, D]
}

// Kind implements Node.
func (f *Fork[C, D]) Kind() NodeKind { return KindFork }

// Label implements Node.
func (f *Fork[C, D]) Label() string { return f.Name }

func (f *Fork[C, D]) sealed() {}

// NewEntry is a shorthand for an entry whose IsDone list only holds refs.
func NewEntry[C, D any](id string, isDone ...string) *Entry[C, D] {
	return &Entry[C, D]{ID: id, IsDone: Refs[C](isDone...)}
}

// NewFork is a shorthand for a fork whose requirements only hold refs.
func NewFork[C, D any](name string, requirements []string, children ...Node[C, D]) *Fork[C, D] {
	return &Fork[C, D]{Name: name, Requirements: Refs[C](requirements...), Children: children}
}
