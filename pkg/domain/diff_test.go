package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		old      *State
		new      *State
		wantDiff *StateDiff // nil means we expect no diff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new: &State{
				SessionID:      "sess-1",
				CurrentEntryID: "age",
				Context:        map[string]any{"a": 1},
				History:        []string{"welcome"},
			},
			wantDiff: &StateDiff{
				SessionID:      "sess-1",
				CurrentEntryID: &[]string{"age"}[0],
				Context:        map[string]any{"a": 1},
				History:        &HistoryDelta{Appended: []string{"welcome"}},
			},
		},
		{
			name: "No Changes",
			old: &State{
				SessionID:      "sess-1",
				CurrentEntryID: "age",
				Context:        map[string]any{"a": 1},
				History:        []string{"welcome"},
			},
			new: &State{
				SessionID:      "sess-1",
				CurrentEntryID: "age",
				Context:        map[string]any{"a": 1},
				History:        []string{"welcome"},
			},
			wantDiff: nil,
		},
		{
			name: "Terminated",
			old: &State{
				SessionID:      "sess-1",
				CurrentEntryID: "salary",
			},
			new: &State{
				SessionID:  "sess-1",
				Terminated: true,
			},
			wantDiff: &StateDiff{
				SessionID:      "sess-1",
				CurrentEntryID: &[]string{""}[0],
				Terminated:     &[]bool{true}[0],
			},
		},
		{
			name: "Context Added & Modified",
			old: &State{
				SessionID:      "sess-1",
				CurrentEntryID: "mid",
				Context:        map[string]any{"a": 1, "b": "old"},
			},
			new: &State{
				SessionID:      "sess-1",
				CurrentEntryID: "mid",
				Context:        map[string]any{"a": 1, "b": "new", "c": true},
			},
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Context:   map[string]any{"b": "new", "c": true},
			},
		},
		{
			name: "History Append",
			old: &State{
				SessionID:      "sess-1",
				CurrentEntryID: "name",
				History:        []string{"age"},
			},
			new: &State{
				SessionID:      "sess-1",
				CurrentEntryID: "postcode",
				History:        []string{"age", "name"},
			},
			wantDiff: &StateDiff{
				SessionID:      "sess-1",
				CurrentEntryID: &[]string{"postcode"}[0],
				History:        &HistoryDelta{Appended: []string{"name"}},
			},
		},
		{
			name: "History Replaced After Branch Change",
			old: &State{
				SessionID:      "sess-1",
				CurrentEntryID: "salary",
				History:        []string{"age", "name", "postcode"},
			},
			new: &State{
				SessionID:      "sess-1",
				CurrentEntryID: "too young",
				History:        []string{"age"},
			},
			wantDiff: &StateDiff{
				SessionID:      "sess-1",
				CurrentEntryID: &[]string{"too young"}[0],
				History:        &HistoryDelta{Replaced: []string{"age"}},
			},
		},
		{
			name: "Context Deletion",
			old: &State{
				Context: map[string]any{"a": 1, "b": 2},
			},
			new: &State{
				Context: map[string]any{"a": 1},
			},
			wantDiff: &StateDiff{
				Context: map[string]any{"b": nil},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if tt.wantDiff == nil {
				if got != nil {
					t.Errorf("Diff() = %v, want nil", got)
				}
				return
			}

			if got == nil {
				t.Fatalf("Diff() = nil, want %v", tt.wantDiff)
			}

			if got.SessionID != tt.wantDiff.SessionID {
				t.Errorf("Diff().SessionID = %v, want %v", got.SessionID, tt.wantDiff.SessionID)
			}
			if !reflect.DeepEqual(got.Context, tt.wantDiff.Context) {
				t.Errorf("Diff().Context = %v, want %v", got.Context, tt.wantDiff.Context)
			}
			if !reflect.DeepEqual(got.History, tt.wantDiff.History) {
				t.Errorf("Diff().History = %v, want %v", got.History, tt.wantDiff.History)
			}
			if !equalPtr(got.CurrentEntryID, tt.wantDiff.CurrentEntryID) {
				t.Errorf("Diff().CurrentEntryID = %v, want %v", got.CurrentEntryID, tt.wantDiff.CurrentEntryID)
			}
			if !equalPtr(got.Terminated, tt.wantDiff.Terminated) {
				t.Errorf("Diff().Terminated = %v, want %v", got.Terminated, tt.wantDiff.Terminated)
			}
		})
	}
}

func TestDiffJSONSerialization(t *testing.T) {
	t.Run("Empty Context Omitted", func(t *testing.T) {
		s1 := &State{Context: map[string]any{"a": 1}, CurrentEntryID: "x"}
		s2 := &State{Context: map[string]any{"a": 1}, CurrentEntryID: "y"}
		diff := Diff(s1, s2)

		if diff == nil {
			t.Fatal("Expected diff, got nil")
		}
		bytes, _ := json.Marshal(diff)
		if strings.Contains(string(bytes), `"context"`) {
			t.Errorf("JSON should not contain 'context' when empty, got: %s", string(bytes))
		}
	})

	t.Run("Deletions as Null", func(t *testing.T) {
		s1 := &State{Context: map[string]any{"a": 1, "b": 2}}
		s2 := &State{Context: map[string]any{"a": 1}}
		diff := Diff(s1, s2)

		if diff == nil {
			t.Fatal("Expected diff, got nil")
		}

		bytes, _ := json.Marshal(diff)
		if !strings.Contains(string(bytes), `"b":null`) {
			t.Errorf("JSON should contain 'b':null for deletion, got: %s", string(bytes))
		}
	})
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
