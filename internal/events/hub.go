// ABOUTME: In-process change feed for record store mutations.
// ABOUTME: Fans out events to subscribers without blocking the publisher.
package events

import (
	"sync"
	"time"

	"github.com/harperreed/healthlog/internal/models"
	"github.com/oklog/ulid/v2"
)

// Kind identifies what changed in the store.
type Kind string

const (
	KindUpserted Kind = "upserted"
	KindDeleted  Kind = "deleted"
	// KindReloaded means the backing file changed outside this process.
	KindReloaded Kind = "reloaded"
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 16

// Event reports one successful store mutation. IDs sort in creation order.
type Event struct {
	ID   string    `json:"id"`
	Kind Kind      `json:"kind"`
	Date string    `json:"date,omitempty"`
	At   time.Time `json:"at"`
}

func newEvent(kind Kind, date string) Event {
	return Event{ID: ulid.Make().String(), Kind: kind, Date: date, At: time.Now().UTC()}
}

// Upserted returns the event for a record written on date.
func Upserted(date time.Time) Event {
	return newEvent(KindUpserted, models.FormatDate(date))
}

// Deleted returns the event for a delete of date.
func Deleted(date time.Time) Event {
	return newEvent(KindDeleted, models.FormatDate(date))
}

// Reloaded returns the event for an external change to the store.
func Reloaded() Event {
	return newEvent(KindReloaded, "")
}

// Hub delivers events to every current subscriber.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
	closed bool
}

// NewHub creates a hub whose subscribers each queue up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{subs: make(map[*Subscription]struct{}), buffer: buffer}
}

// Subscription is one subscriber's event queue.
type Subscription struct {
	hub *Hub
	ch  chan Event
}

// C returns the channel events arrive on. It is closed by Close or Hub.Close.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Close unsubscribes. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if _, ok := s.hub.subs[s]; ok {
		delete(s.hub.subs, s)
		close(s.ch)
	}
}

// Subscribe registers a new subscriber. Subscribing to a closed hub returns
// a subscription whose channel is already closed.
func (h *Hub) Subscribe() *Subscription {
	s := &Subscription{hub: h, ch: make(chan Event, h.buffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(s.ch)
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

// Publish queues e for every subscriber and returns how many received it.
// A subscriber whose queue is full misses the event; clients re-fetch the
// whole store on the next one, so nothing is lost but a redraw.
func (h *Hub) Publish(e Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for s := range h.subs {
		select {
		case s.ch <- e:
			delivered++
		default:
		}
	}
	return delivered
}

// Len returns the number of active subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close closes every subscription and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		delete(h.subs, s)
		close(s.ch)
	}
}
