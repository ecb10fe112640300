package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventResolve      EventType = "resolve"
	EventForkEnter    EventType = "fork_enter"
	EventFlowComplete EventType = "flow_complete"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Flow      string    `json:"flow,omitempty"`
}

// NodeEvent represents a node visited during resolution.
type NodeEvent struct {
	EventBase
	NodeID     string   `json:"node_id"`
	InternalID string   `json:"internal_id"`
	Kind       NodeKind `json:"kind"`
}

// ResolveEvent summarises one resolution call.
type ResolveEvent struct {
	EventBase
	EntryID       string        `json:"entry_id,omitempty"`
	CurrentID     string        `json:"current_id,omitempty"`
	HistoryLength int           `json:"history_length"`
	Resumed       bool          `json:"resumed,omitempty"`
	Done          bool          `json:"done,omitempty"`
	Duration      time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnResolve      func(context.Context, *ResolveEvent)
	OnForkEnter    func(context.Context, *NodeEvent)
	OnFlowComplete func(context.Context, *ResolveEvent)
}
