package queue

import (
	"context"
	"time"
)

const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionRestored = "restored"
	ActionDeleted  = "deleted"
)

// EntryChange is the event published after a successful write to an entry.
// Downstream consumers (indexers, audit sinks) replay history from it.
type EntryChange struct {
	EntryID   uint      `json:"entryId"`
	Version   int64     `json:"version"`
	Action    string    `json:"action"`
	ChangedBy string    `json:"changedBy,omitempty"`
	ChangedAt time.Time `json:"changedAt"`
}

type EntryQueue interface {
	// PublishChange appends an entry change to the queue.
	PublishChange(ctx context.Context, change *EntryChange) error
	Close()
}
