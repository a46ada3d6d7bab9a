package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"spaceship-manager/internal/model"
)

func TestInMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewBus()
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	e := SpaceshipEvent{ChangeKind: KindCreate, RecordID: 1, Name: "Falcon"}
	assert.NoError(t, bus.Publish(e))

	select {
	case got := <-events:
		assert.Equal(t, e, got)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestInMemoryBus_FanOut(t *testing.T) {
	bus := NewBus()
	first, stopFirst := bus.Subscribe()
	defer stopFirst()
	second, stopSecond := bus.Subscribe()
	defer stopSecond()

	assert.NoError(t, bus.Publish(Deleted(9)))

	for _, ch := range []<-chan SpaceshipEvent{first, second} {
		select {
		case got := <-ch:
			assert.Equal(t, KindDelete, got.ChangeKind)
			assert.Equal(t, int64(9), got.RecordID)
		case <-time.After(time.Second):
			t.Fatal("subscriber missed the event")
		}
	}
}

func TestInMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	events, unsubscribe := bus.Subscribe()
	unsubscribe()

	_, open := <-events
	assert.False(t, open, "channel must be closed after unsubscribe")

	// Publishing after the only subscriber left is still fine.
	assert.NoError(t, bus.Publish(Deleted(1)))
}

func TestInMemoryBus_Close(t *testing.T) {
	bus := NewBus()
	events, _ := bus.Subscribe()

	bus.Close()

	_, open := <-events
	assert.False(t, open)
	assert.ErrorIs(t, bus.Publish(Deleted(1)), model.ErrBusClosed)
}

func TestInMemoryBus_SlowSubscriberDoesNotBlock(t *testing.T) {
	bus := NewBus()
	_, unsubscribe := bus.Subscribe() // never drained
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			_ = bus.Publish(Deleted(int64(i)))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}
}
