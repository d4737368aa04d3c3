package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/testutil"
)

func newRunningHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	t.Cleanup(hub.Close)
	return hub
}

func receive(t *testing.T, sub *Subscription) model.SessionEvent {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return model.SessionEvent{}
	}
}

func TestHub_SubscribeAndPublish(t *testing.T) {
	hub := newRunningHub(t)

	sub := hub.Subscribe("test", nil)
	assert.Equal(t, 1, hub.SubscriberCount())

	hub.Publish(model.SessionEvent{Type: model.EventSignedOut, SessionID: "s1"})

	ev := receive(t, sub)
	assert.Equal(t, model.EventSignedOut, ev.Type)
	assert.Equal(t, model.SessionID("s1"), ev.SessionID)
}

func TestHub_FilterSkipsUnwantedEvents(t *testing.T) {
	hub := newRunningHub(t)

	sub := hub.Subscribe("s1-only", func(ev model.SessionEvent) bool { return ev.SessionID == "s1" })

	hub.Publish(model.SessionEvent{Type: model.EventSignedOut, SessionID: "s2"})
	hub.Publish(model.SessionEvent{Type: model.EventSignedOut, SessionID: "s1"})

	ev := receive(t, sub)
	assert.Equal(t, model.SessionID("s1"), ev.SessionID)
}

func TestHub_FansOutToMultipleSubscribers(t *testing.T) {
	hub := newRunningHub(t)

	subs := []*Subscription{hub.Subscribe("a", nil), hub.Subscribe("b", nil), hub.Subscribe("c", nil)}
	hub.Publish(model.SessionEvent{Type: model.EventIdentityUpdated, IdentityID: "u1"})

	for _, sub := range subs {
		assert.Equal(t, model.EventIdentityUpdated, receive(t, sub).Type)
	}
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := newRunningHub(t)

	sub := hub.Subscribe("test", nil)
	hub.Unsubscribe(sub)

	_, ok := <-sub.Events()
	assert.False(t, ok)
	assert.Equal(t, 0, hub.SubscriberCount())
}

func TestHub_CloseDisconnectsSubscribers(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	stopped := make(chan struct{})
	go func() {
		hub.Run()
		close(stopped)
	}()

	sub := hub.Subscribe("test", nil)
	hub.Close()
	hub.Close()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	_, ok := <-sub.Events()
	assert.False(t, ok)
}

func TestHub_SubscribeAfterCloseReturnsClosedSubscription(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	hub.Close()

	sub := hub.Subscribe("late", nil)
	_, ok := <-sub.Events()
	assert.False(t, ok)

	// Must not block
	hub.Unsubscribe(sub)
	hub.Publish(model.SessionEvent{Type: model.EventSignedOut})
}
