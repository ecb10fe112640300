package domain

// Step is a node as placed in the normalized tree.
type Step[C, D any] struct {
	// Node is the node as authored.
	Node Node[C, D]
	// InternalID is unique within the normalized tree and stable across
	// normalizations of the same tree.
	InternalID string
	// VariantID is the ordinal of a fork among its siblings sharing the same
	// name. Empty for entries.
	VariantID string
}

// IsEntry reports whether the step is an entry.
func (s Step[C, D]) IsEntry() bool { return s.Node != nil && s.Node.Kind() == KindEntry }

// IsFork reports whether the step is a fork.
func (s Step[C, D]) IsFork() bool { return s.Node != nil && s.Node.Kind() == KindFork }

// Entry returns the authored entry, or nil when the step is a fork.
func (s Step[C, D]) Entry() *Entry[C, D] {
	e, _ := s.Node.(*Entry[C, D])
	return e
}

// Fork returns the authored fork, or nil when the step is an entry.
func (s Step[C, D]) Fork() *Fork[C, D] {
	f, _ := s.Node.(*Fork[C, D])
	return f
}

// Label returns the entry id or fork name.
func (s Step[C, D]) Label() string {
	if s.Node == nil {
		return ""
	}
	return s.Node.Label()
}

// Result is the outcome of resolving a flow against one context.
type Result[C, D any] struct {
	// Entry is the current entry, or nil when every entry is complete.
	Entry *Step[C, D]
	// History holds every entry and entered fork visited before Entry, in
	// traversal order.
	History []Step[C, D]
	// Resumed is true when Entry was picked by continuing after the entry id
	// passed to Execute instead of by natural resolution.
	Resumed bool
}

// Done reports whether the flow is finished.
func (r *Result[C, D]) Done() bool { return r == nil || r.Entry == nil }

// Entries returns the entry subsequence of the history.
func (r *Result[C, D]) Entries() []Step[C, D] {
	if r == nil {
		return nil
	}
	out := make([]Step[C, D], 0, len(r.History))
	for _, s := range r.History {
		if s.IsEntry() {
			out = append(out, s)
		}
	}
	return out
}

// EntryIDs returns the ids of the entries in the history.
func (r *Result[C, D]) EntryIDs() []string {
	entries := r.Entries()
	ids := make([]string, len(entries))
	for i, s := range entries {
		ids[i] = s.Label()
	}
	return ids
}

// Labels returns the labels of every step in the history, forks included.
func (r *Result[C, D]) Labels() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.History))
	for i, s := range r.History {
		out[i] = s.Label()
	}
	return out
}

// Outcome returns the untyped, id-only view of the result.
func (r *Result[C, D]) Outcome() *Outcome {
	out := &Outcome{History: []HistoryItem{}}
	if r == nil {
		out.Done = true
		return out
	}
	for _, s := range r.History {
		out.History = append(out.History, HistoryItem{
			ID:         s.Label(),
			InternalID: s.InternalID,
			Kind:       s.Node.Kind(),
		})
	}
	if r.Entry == nil {
		out.Done = true
		return out
	}
	out.EntryID = r.Entry.Label()
	out.InternalID = r.Entry.InternalID
	out.Resumed = r.Resumed
	return out
}

// Outcome is a Result reduced to identifiers, suited for transport and
// storage.
type Outcome struct {
	EntryID    string        `json:"entry_id,omitempty"`
	InternalID string        `json:"internal_id,omitempty"`
	History    []HistoryItem `json:"history"`
	Resumed    bool          `json:"resumed,omitempty"`
	Done       bool          `json:"done"`
}

// HistoryItem identifies one visited step.
type HistoryItem struct {
	ID         string   `json:"id"`
	InternalID string   `json:"internal_id"`
	Kind       NodeKind `json:"kind"`
}

// EntryIDs returns the ids of the entries in the outcome history.
func (o *Outcome) EntryIDs() []string {
	ids := []string{}
	for _, h := range o.History {
		if h.Kind == KindEntry {
			ids = append(ids, h.ID)
		}
	}
	return ids
}
