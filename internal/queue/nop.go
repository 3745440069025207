package queue

import "context"

// NopEntryQueue is used when no broker is configured.
type NopEntryQueue struct {
}

func NewNop() NopEntryQueue {
	return NopEntryQueue{}
}

func (NopEntryQueue) PublishChange(ctx context.Context, change *EntryChange) error {
	return nil
}

func (NopEntryQueue) Close() {
}
