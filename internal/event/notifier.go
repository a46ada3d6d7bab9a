package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"spaceship-manager/internal/model"
)

// OutboxStore persists events that could not be delivered to the bus.
type OutboxStore interface {
	Enqueue(ctx context.Context, e model.OutboxEvent) error
	Pending(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkDelivered(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// Notifier delivers committed-mutation events with at-least-once semantics.
// It is invoked only after the store transaction has committed and the cache
// has been invalidated. When the bus rejects a publish the event is persisted
// to the outbox and retried by the Dispatcher; only a bus failure combined
// with an outbox failure surfaces ErrDeliveryFailed. The mutation itself is
// never rolled back on delivery failure.
type Notifier struct {
	bus    Bus
	outbox OutboxStore
}

func NewNotifier(bus Bus, outbox OutboxStore) *Notifier {
	return &Notifier{bus: bus, outbox: outbox}
}

func (n *Notifier) Publish(ctx context.Context, e SpaceshipEvent) error {
	if err := n.bus.Publish(e); err == nil {
		return nil
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%w: marshal event: %v", model.ErrDeliveryFailed, err)
	}

	row := model.OutboxEvent{
		ID:        uuid.NewString(),
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := n.outbox.Enqueue(ctx, row); err != nil {
		return fmt.Errorf("%w: enqueue outbox: %v", model.ErrDeliveryFailed, err)
	}

	slog.Warn("event bus unavailable, queued to outbox",
		"outbox_id", row.ID, "change_kind", e.ChangeKind, "record_id", e.RecordID)
	return nil
}

// Dispatcher drains the outbox on a ticker, republishing pending events and
// marking them delivered afterwards. A crash between publish and mark causes
// a redelivery on the next run, which consumers must tolerate.
type Dispatcher struct {
	bus    Bus
	outbox OutboxStore
	limit  int
}

func NewDispatcher(bus Bus, outbox OutboxStore, limit int) *Dispatcher {
	if limit <= 0 {
		limit = 100
	}
	return &Dispatcher{bus: bus, outbox: outbox, limit: limit}
}

func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Drain(ctx)
		}
	}
}

// Drain attempts one delivery pass. Exported so tests and shutdown hooks can
// flush without waiting for the ticker.
func (d *Dispatcher) Drain(ctx context.Context) {
	pending, err := d.outbox.Pending(ctx, d.limit)
	if err != nil {
		slog.Error("outbox fetch failed", "error", err)
		return
	}

	for _, row := range pending {
		var e SpaceshipEvent
		if err := json.Unmarshal(row.Payload, &e); err != nil {
			slog.Error("outbox row is not a valid event, dropping", "outbox_id", row.ID, "error", err)
			_ = d.outbox.MarkDelivered(ctx, row.ID)
			continue
		}

		if err := d.bus.Publish(e); err != nil {
			// Bus still down; stop the pass and retry on the next tick.
			_ = d.outbox.MarkFailed(ctx, row.ID)
			return
		}

		if err := d.outbox.MarkDelivered(ctx, row.ID); err != nil {
			slog.Error("mark outbox delivered failed", "outbox_id", row.ID, "error", err)
			return
		}

		slog.Info("outbox event delivered",
			"outbox_id", row.ID, "change_kind", e.ChangeKind, "record_id", e.RecordID, "attempts", row.Attempts)
	}
}
