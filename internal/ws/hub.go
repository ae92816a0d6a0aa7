package ws

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// event is an outbound payload addressed to a set of user emails.
type event struct {
	recipients map[string]bool
	payload    []byte
}

// Hub fans realtime events out to connected clients. Persistence never goes
// through the hub: the service saves first, handlers notify afterwards, so a
// dropped event only costs a live update, never a stored message.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Outbound events to deliver.
	notify chan event

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	log *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		notify:     make(chan event),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case ev := <-h.notify:
			for client := range h.clients {
				if !ev.recipients[client.email] {
					continue
				}
				select {
				case client.send <- ev.payload:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Notify delivers payload to every connected client logged in as one of the
// given emails. Clients that are offline simply miss the event; the stored
// conversation is the source of truth.
func (h *Hub) Notify(emails []string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.WithError(err).Error("could not encode realtime event")
		return
	}
	recipients := make(map[string]bool, len(emails))
	for _, e := range emails {
		recipients[e] = true
	}
	h.notify <- event{recipients: recipients, payload: data}
}
