// Package broadcast fans lock-state snapshots out to every connected
// console client.
package broadcast

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/AliceO2Group/detlockd/internal/lockservice"
)

// Message is one lock-state notification. IDs are ulids, so consumers
// can order messages that arrive out of band.
type Message struct {
	ID    string               `json:"id"`
	Time  time.Time            `json:"time"`
	Locks lockservice.Snapshot `json:"locks"`
}

var _ lockservice.Publisher = (*Hub)(nil)

// Hub is the in-process fan-out of lock snapshots to subscriber
// channels. Delivery is best effort: a subscriber that cannot keep up
// has messages dropped rather than stalling the publisher.
type Hub struct {
	log zerolog.Logger

	mu   sync.Mutex
	subs map[string]chan Message
}

// NewHub creates a hub with no subscribers.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:  log,
		subs: make(map[string]chan Message),
	}
}

// Subscribe registers a consumer and returns its id together with the
// channel messages arrive on. The channel is closed by Unsubscribe.
func (h *Hub) Subscribe() (string, <-chan Message) {
	id := uuid.NewString()
	ch := make(chan Message, 16)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	h.log.Debug().Str("subscriber", id).Msg("subscribed to lock broadcasts")
	return id, ch
}

// Unsubscribe removes a consumer and closes its channel. Unknown ids
// are ignored.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	ch, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
		close(ch)
	}
	h.mu.Unlock()

	if ok {
		h.log.Debug().Str("subscriber", id).Msg("unsubscribed from lock broadcasts")
	}
}

// Publish implements lockservice.Publisher. Sends never block.
func (h *Hub) Publish(snap lockservice.Snapshot) {
	msg := Message{
		ID:    ulid.Make().String(),
		Time:  time.Now(),
		Locks: snap,
	}

	h.mu.Lock()
	for id, ch := range h.subs {
		select {
		case ch <- msg:
		default:
			h.log.Warn().
				Str("subscriber", id).
				Msg("dropping lock broadcast, subscriber is slow")
		}
	}
	h.mu.Unlock()
}

var _ lockservice.Publisher = (Fanout)(nil)

// Fanout delivers every snapshot to each wrapped publisher in order.
type Fanout []lockservice.Publisher

// Publish implements lockservice.Publisher.
func (f Fanout) Publish(snap lockservice.Snapshot) {
	for _, p := range f {
		p.Publish(snap)
	}
}
