package ws

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func newTestHub() *Hub {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewHub(logger)
}

func TestNotifyReachesRecipientsOnly(t *testing.T) {
	hub := newTestHub()
	go hub.Run()

	alice := &Client{hub: hub, send: make(chan []byte, 1), email: "a@x.com"}
	bob := &Client{hub: hub, send: make(chan []byte, 1), email: "b@x.com"}
	carol := &Client{hub: hub, send: make(chan []byte, 1), email: "c@x.com"}

	hub.register <- alice
	hub.register <- bob
	hub.register <- carol

	hub.Notify([]string{"a@x.com", "b@x.com"}, map[string]string{"type": "new_message"})

	for _, c := range []*Client{alice, bob} {
		select {
		case payload := <-c.send:
			if len(payload) == 0 {
				t.Errorf("%s received an empty payload", c.email)
			}
		case <-time.After(time.Second):
			t.Errorf("%s did not receive the event", c.email)
		}
	}

	select {
	case <-carol.send:
		t.Error("carol should not receive the event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := newTestHub()
	go hub.Run()

	client := &Client{hub: hub, send: make(chan []byte, 1), email: "a@x.com"}
	hub.register <- client
	hub.unregister <- client

	hub.Notify([]string{"a@x.com"}, map[string]string{"type": "new_message"})

	// The send channel is closed on unregister.
	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected the send channel to be closed without payload")
		}
	case <-time.After(time.Second):
		t.Error("send channel was not closed")
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := newTestHub()
	go hub.Run()

	// Unbuffered send channel with no reader: the first event must evict
	// the client instead of blocking the hub.
	client := &Client{hub: hub, send: make(chan []byte), email: "a@x.com"}
	hub.register <- client

	hub.Notify([]string{"a@x.com"}, map[string]string{"type": "new_message"})
	hub.Notify([]string{"a@x.com"}, map[string]string{"type": "new_message"})

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected the send channel to be closed")
		}
	case <-time.After(time.Second):
		t.Error("slow client was not evicted")
	}
}
