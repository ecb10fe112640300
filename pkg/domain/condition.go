package domain

// Predicate reports whether a condition holds for the given context.
// Predicates must be pure: the engine may evaluate them once per call and
// reuse the answer for the whole traversal.
type Predicate[C any] func(ctx C) (bool, error)

// Test adapts an infallible boolean function into a Predicate.
func Test[C any](fn func(ctx C) bool) Predicate[C] {
	return func(ctx C) (bool, error) {
		return fn(ctx), nil
	}
}

// ConditionsMap holds the named conditions a tree can refer to by key.
type ConditionsMap[C any] map[string]Predicate[C]

// ConditionKind discriminates the two forms a Condition can take.
type ConditionKind int

const (
	// ConditionRef refers to a predicate in the ConditionsMap by key.
	ConditionRef ConditionKind = iota
	// ConditionInline embeds the predicate in the tree itself.
	ConditionInline
)

func (k ConditionKind) String() string {
	switch k {
	case ConditionRef:
		return "ref"
	case ConditionInline:
		return "inline"
	default:
		return "unknown"
	}
}

// Condition is a single item of an entry's IsDone list or a fork's
// Requirements list.
type Condition[C any] struct {
	kind  ConditionKind
	key   string
	label string
	fn    Predicate[C]
}

// Ref builds a condition that is resolved from the ConditionsMap by key.
func Ref[C any](key string) Condition[C] {
	return Condition[C]{kind: ConditionRef, key: key}
}

// Refs builds one Ref per key.
func Refs[C any](keys ...string) []Condition[C] {
	out := make([]Condition[C], 0, len(keys))
	for _, k := range keys {
		out = append(out, Ref[C](k))
	}
	return out
}

// Inline builds a condition around a predicate embedded in the tree.
func Inline[C any](fn Predicate[C]) Condition[C] {
	return Condition[C]{kind: ConditionInline, fn: fn}
}

// When is Inline for an infallible boolean function.
func When[C any](fn func(ctx C) bool) Condition[C] {
	return Inline(Test(fn))
}

// Named returns a copy of the condition carrying a display label.
// Labels are only used when charting the tree.
func (c Condition[C]) Named(label string) Condition[C] {
	c.label = label
	return c
}

// Kind reports which form the condition takes.
func (c Condition[C]) Kind() ConditionKind { return c.kind }

// Key returns the ConditionsMap key of a ref condition, or "" for inline ones.
func (c Condition[C]) Key() string { return c.key }

// Predicate returns the embedded predicate of an inline condition.
func (c Condition[C]) Predicate() Predicate[C] { return c.fn }

// Label is the human readable name of the condition: the explicit label when
// set, the key for refs, and "unknown" for unlabeled inline predicates.
func (c Condition[C]) Label() string {
	switch {
	case c.label != "":
		return c.label
	case c.kind == ConditionRef:
		return c.key
	default:
		return "unknown"
	}
}

// Labels maps Label over a list of conditions.
func Labels[C any](conds []Condition[C]) []string {
	out := make([]string, len(conds))
	for i, c := range conds {
		out[i] = c.Label()
	}
	return out
}
