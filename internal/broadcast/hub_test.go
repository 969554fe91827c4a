package broadcast

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	return hub, cancel
}

func waitForSubscribers(t *testing.T, hub *Hub, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == want
	}, time.Second, 5*time.Millisecond)
}

func receive(t *testing.T, client *Client) []byte {
	t.Helper()
	select {
	case msg, ok := <-client.send:
		require.True(t, ok, "send channel closed")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHub_FansOutToAllSubscribers(t *testing.T) {
	hub, cancel := newTestHub(t)
	defer cancel()

	a := NewClient("a", nil, hub)
	b := NewClient("b", nil, hub)
	hub.Register(a)
	hub.Register(b)
	waitForSubscribers(t, hub, 2)

	hub.Publish(NewRecipeEvent(ActionCreate, map[string]any{"id": 1}))

	for _, client := range []*Client{a, b} {
		var event Event
		require.NoError(t, json.Unmarshal(receive(t, client), &event))
		assert.Equal(t, EventRecipeUpdate, event.Type)
		assert.Equal(t, string(ActionCreate), event.Data["action"])
	}
}

func TestHub_LateSubscriberMissesEarlierEvents(t *testing.T) {
	hub, cancel := newTestHub(t)
	defer cancel()

	early := NewClient("early", nil, hub)
	hub.Register(early)
	waitForSubscribers(t, hub, 1)

	hub.Publish(NewRecipeEvent(ActionUpdate, map[string]any{"id": 1}))
	receive(t, early)

	late := NewClient("late", nil, hub)
	hub.Register(late)
	waitForSubscribers(t, hub, 2)

	select {
	case msg := <-late.send:
		t.Fatalf("late subscriber received replayed event: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_DropsSlowSubscriber(t *testing.T) {
	hub, cancel := newTestHub(t)
	defer cancel()

	slow := NewClient("slow", nil, hub)
	hub.Register(slow)
	waitForSubscribers(t, hub, 1)

	// Fill the send buffer without draining; the overflowing publish must
	// evict the client instead of stalling delivery.
	for i := 0; i < cap(slow.send)+1; i++ {
		hub.Publish(NewRecipeEvent(ActionRate, map[string]any{"seq": i}))
	}

	waitForSubscribers(t, hub, 0)
	require.Eventually(t, func() bool {
		for {
			select {
			case _, ok := <-slow.send:
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	}, time.Second, 5*time.Millisecond, "send channel should be drained and closed")
}

func TestHub_UnregisterClosesSendChannel(t *testing.T) {
	hub, cancel := newTestHub(t)
	defer cancel()

	client := NewClient("c", nil, hub)
	hub.Register(client)
	waitForSubscribers(t, hub, 1)

	hub.Unregister(client)
	waitForSubscribers(t, hub, 0)

	_, ok := <-client.send
	assert.False(t, ok)
}

func TestHub_PublishWithoutSubscribersDoesNotBlock(t *testing.T) {
	hub, cancel := newTestHub(t)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			hub.Publish(NewUserEvent(ActionRegister, map[string]any{"seq": i}))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked with no subscribers")
	}
}

func TestHub_ShutdownDisconnectsEveryone(t *testing.T) {
	hub, cancel := newTestHub(t)

	a := NewClient("a", nil, hub)
	b := NewClient("b", nil, hub)
	hub.Register(a)
	hub.Register(b)
	waitForSubscribers(t, hub, 2)

	cancel()
	waitForSubscribers(t, hub, 0)
}
