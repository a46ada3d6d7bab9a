package event

import (
	"context"
	"log/slog"
)

// LogConsumer is the reference downstream consumer: it observes every change
// event and performs no side effect beyond logging it.
type LogConsumer struct {
	bus Bus
}

func NewLogConsumer(bus Bus) *LogConsumer {
	return &LogConsumer{bus: bus}
}

func (c *LogConsumer) Run(ctx context.Context) {
	events, unsubscribe := c.bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			slog.Info("received spaceship event",
				"change_kind", e.ChangeKind, "record_id", e.RecordID, "name", e.Name)
		}
	}
}
