package domain

import "time"

// State is the serialisable snapshot of a session. The engine never sees it;
// session managers and stores use it to persist the context and the last
// resolved position between calls.
type State struct {
	SessionID string `json:"session_id"`

	// Context holds the caller data that conditions are evaluated against.
	Context map[string]any `json:"context"`

	// CurrentEntryID is the entry the session is positioned on. After a
	// rewind it points back into History.
	CurrentEntryID string `json:"current_entry_id,omitempty"`

	// History lists the ids of the entries completed before the current one.
	History []string `json:"history"`

	// Terminated indicates the flow has no further entry.
	Terminated bool `json:"terminated,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewState creates a clean state for a session.
func NewState(sessionID string, initial map[string]any) *State {
	s := &State{
		SessionID: sessionID,
		Context:   make(map[string]any, len(initial)),
		History:   []string{},
	}
	for k, v := range initial {
		s.Context[k] = v
	}
	return s
}

// Snapshot returns a copy of the state whose context and history can be
// mutated without affecting the original.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.Context = make(map[string]any, len(s.Context))
	for k, v := range s.Context {
		next.Context[k] = v
	}
	next.History = append([]string(nil), s.History...)
	return &next
}

// Apply records an outcome on the state.
func (s *State) Apply(o *Outcome) {
	s.History = o.EntryIDs()
	s.CurrentEntryID = o.EntryID
	s.Terminated = o.Done
}
