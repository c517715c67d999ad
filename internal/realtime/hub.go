package realtime

import (
	"sync"

	"github.com/gorilla/websocket"

	"mechbook/internal/modules/booking"
)

// envelope is the wire shape pushed to subscribers.
type envelope struct {
	Type  string               `json:"type"`
	Event booking.BookingEvent `json:"event"`
}

// subscriber owns one websocket. gorilla/websocket permits a single
// concurrent writer per connection, so every write goes through the
// subscriber's mutex.
type subscriber struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (s *subscriber) send(msg envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.WriteJSON(msg)
}

// Hub keeps one live connection per user and fans booking events out to the
// two participants of the booking. Last connection wins; a stale socket is
// closed on re-register.
type Hub struct {
	mu   sync.RWMutex
	subs map[int64]*subscriber
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int64]*subscriber)}
}

func (h *Hub) Register(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.subs[userID]; ok {
		_ = old.ws.Close()
	}
	h.subs[userID] = &subscriber{ws: conn}
}

func (h *Hub) Unregister(userID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub, ok := h.subs[userID]; ok {
		_ = sub.ws.Close()
		delete(h.subs, userID)
	}
}

func (h *Hub) Online(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.subs[userID]
	return ok
}

// PublishBookingUpdate delivers the event to both sides of the booking.
// Offline users simply miss it; the API remains the source of truth.
func (h *Hub) PublishBookingUpdate(ev booking.BookingEvent) {
	msg := envelope{Type: "booking_update", Event: ev}
	h.deliver(ev.CustomerID, msg)
	if ev.MechanicID != ev.CustomerID {
		h.deliver(ev.MechanicID, msg)
	}
}

// deliver writes to one user's connection and drops it on a failed write.
// The drop only removes the exact subscriber that failed, never a fresh
// connection registered in the meantime.
func (h *Hub) deliver(userID int64, msg envelope) {
	h.mu.RLock()
	sub, ok := h.subs[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	if err := sub.send(msg); err != nil {
		h.dropIf(userID, sub)
	}
}

func (h *Hub) dropIf(userID int64, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.subs[userID]; ok && cur == sub {
		_ = cur.ws.Close()
		delete(h.subs, userID)
	}
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, sub := range h.subs {
		_ = sub.ws.Close()
		delete(h.subs, userID)
	}
}
