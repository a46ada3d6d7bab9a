package model

import "time"

// OutboxEvent is a change event persisted for retry after a failed delivery.
// Payload holds the JSON-encoded event exactly as it would have gone on the
// wire.
type OutboxEvent struct {
	ID        string
	Payload   []byte
	Attempts  int
	CreatedAt time.Time
}
