package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spaceship-manager/internal/event"
)

func TestHubBroadcastsChangeEvents(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()

	hub := NewHub(bus)
	go hub.Run()

	client := &Client{hub: hub, send: make(chan []byte, 1)}
	require.True(t, hub.attach(client))

	require.NoError(t, bus.Publish(event.SpaceshipEvent{ChangeKind: event.KindCreate, RecordID: 7}))

	select {
	case message := <-client.send:
		assert.Contains(t, string(message), `"changeKind":"CREATE"`)
		assert.Contains(t, string(message), `"recordId":7`)
	case <-time.After(time.Second):
		t.Fatal("expected a broadcast message")
	}
}

func TestHubStopsAcceptingAfterBusClose(t *testing.T) {
	bus := event.NewBus()
	hub := NewHub(bus)

	stopped := make(chan struct{})
	go func() {
		hub.Run()
		close(stopped)
	}()

	bus.Close()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop after the bus closed")
	}

	// Late registrations are refused instead of blocking forever, and a
	// deferred detach from a read loop returns immediately.
	client := &Client{hub: hub, send: make(chan []byte, 1)}
	assert.False(t, hub.attach(client))
	hub.detach(client)
}
