package event

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"spaceship-manager/internal/model"
)

type fakeOutbox struct {
	mu         sync.Mutex
	rows       map[string]model.OutboxEvent
	enqueueErr error
}

func newFakeOutbox() *fakeOutbox {
	return &fakeOutbox{rows: map[string]model.OutboxEvent{}}
}

func (f *fakeOutbox) Enqueue(_ context.Context, e model.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.rows[e.ID] = e
	return nil
}

func (f *fakeOutbox) Pending(_ context.Context, limit int) ([]model.OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.OutboxEvent, 0, len(f.rows))
	for _, e := range f.rows {
		if len(out) == limit {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeOutbox) MarkDelivered(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

func (f *fakeOutbox) MarkFailed(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := f.rows[id]
	e.Attempts++
	f.rows[id] = e
	return nil
}

func (f *fakeOutbox) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func TestNotifier_PublishLive(t *testing.T) {
	bus := NewBus()
	outbox := newFakeOutbox()
	notifier := NewNotifier(bus, outbox)

	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	e := SpaceshipEvent{ChangeKind: KindCreate, RecordID: 1, Name: "Falcon", Category: "freighter"}
	assert.NoError(t, notifier.Publish(context.Background(), e))

	select {
	case got := <-events:
		assert.Equal(t, e, got)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	assert.Zero(t, outbox.size(), "live delivery must not touch the outbox")
}

func TestNotifier_FallsBackToOutbox(t *testing.T) {
	bus := NewBus()
	bus.Close() // broker unavailable
	outbox := newFakeOutbox()
	notifier := NewNotifier(bus, outbox)

	e := SpaceshipEvent{ChangeKind: KindUpdate, RecordID: 2, Name: "Serenity", Category: "transport"}
	assert.NoError(t, notifier.Publish(context.Background(), e), "mutation must still succeed")
	assert.Equal(t, 1, outbox.size())

	rows, err := outbox.Pending(context.Background(), 10)
	assert.NoError(t, err)
	var stored SpaceshipEvent
	assert.NoError(t, json.Unmarshal(rows[0].Payload, &stored))
	assert.Equal(t, e, stored)
}

func TestNotifier_DoubleFailure(t *testing.T) {
	bus := NewBus()
	bus.Close()
	outbox := newFakeOutbox()
	outbox.enqueueErr = errors.New("database down")
	notifier := NewNotifier(bus, outbox)

	err := notifier.Publish(context.Background(), Deleted(3))
	assert.ErrorIs(t, err, model.ErrDeliveryFailed)
}

func TestDispatcher_DrainDelivers(t *testing.T) {
	bus := NewBus()
	bus.Close()
	outbox := newFakeOutbox()
	notifier := NewNotifier(bus, outbox)

	queued := SpaceshipEvent{ChangeKind: KindCreate, RecordID: 5, Name: "Nostromo", Category: "hauler"}
	assert.NoError(t, notifier.Publish(context.Background(), queued))

	// Broker comes back.
	live := NewBus()
	events, unsubscribe := live.Subscribe()
	defer unsubscribe()

	dispatcher := NewDispatcher(live, outbox, 10)
	dispatcher.Drain(context.Background())

	select {
	case got := <-events:
		assert.Equal(t, queued, got)
	case <-time.After(time.Second):
		t.Fatal("outbox event not redelivered")
	}
	assert.Zero(t, outbox.size(), "delivered rows must be marked")
}

func TestDispatcher_KeepsRowsWhileBusDown(t *testing.T) {
	down := NewBus()
	down.Close()
	outbox := newFakeOutbox()
	notifier := NewNotifier(down, outbox)
	assert.NoError(t, notifier.Publish(context.Background(), Deleted(6)))

	dispatcher := NewDispatcher(down, outbox, 10)
	dispatcher.Drain(context.Background())

	assert.Equal(t, 1, outbox.size(), "undelivered rows stay pending")
	rows, _ := outbox.Pending(context.Background(), 10)
	assert.Equal(t, 1, rows[0].Attempts)
}
