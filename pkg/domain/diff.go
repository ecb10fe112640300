package domain

import (
	"reflect"
	"slices"
)

// StateDiff represents the changes between two session states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	CurrentEntryID *string `json:"current_entry_id,omitempty"`

	// Context contains only changed, added or deleted keys.
	// For deletions, the key is present with a nil value.
	Context map[string]any `json:"context,omitempty"`

	History *HistoryDelta `json:"history,omitempty"`

	Terminated *bool `json:"terminated,omitempty"`
}

// HistoryDelta represents changes to the history stack. Resolution can
// abandon a branch, so history is not append-only: when the old history is
// not a prefix of the new one the whole list is sent in Replaced.
type HistoryDelta struct {
	Appended []string `json:"appended,omitempty"`
	Replaced []string `json:"replaced,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		SessionID: newState.SessionID,
	}

	if oldState == nil || oldState.CurrentEntryID != newState.CurrentEntryID {
		diff.CurrentEntryID = &newState.CurrentEntryID
	}
	if oldState == nil {
		if newState.Terminated {
			diff.Terminated = &newState.Terminated
		}
	} else if oldState.Terminated != newState.Terminated {
		diff.Terminated = &newState.Terminated
	}

	diff.Context = diffContext(oldState, newState)
	diff.History = diffHistory(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffContext(old *State, new *State) map[string]any {
	delta := make(map[string]any)

	if old == nil {
		for k, v := range new.Context {
			delta[k] = v
		}
		if len(delta) == 0 {
			return nil
		}
		return delta
	}

	for k, newVal := range new.Context {
		oldVal, exists := old.Context[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}

	for k := range old.Context {
		if _, exists := new.Context[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

func diffHistory(old *State, new *State) *HistoryDelta {
	if old == nil {
		if len(new.History) == 0 {
			return nil
		}
		return &HistoryDelta{Appended: new.History}
	}

	if slices.Equal(old.History, new.History) {
		return nil
	}

	oldLen := len(old.History)
	if len(new.History) > oldLen && slices.Equal(old.History, new.History[:oldLen]) {
		return &HistoryDelta{Appended: new.History[oldLen:]}
	}

	return &HistoryDelta{Replaced: append([]string{}, new.History...)}
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.CurrentEntryID == nil &&
		d.Terminated == nil &&
		len(d.Context) == 0 &&
		d.History == nil
}
