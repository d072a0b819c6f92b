package events

import "context"

// Log is the durable event journal. Every emitted event is appended with
// its resolved recipient list; per-character queries power the admin
// event_query command and offline replay.
type Log interface {
	Append(ctx context.Context, event *Event, recipients []string) error
	ListByCharacter(ctx context.Context, characterID string, afterSequence uint64, limit int) ([]*Event, error)
	Reset(ctx context.Context) error
}
