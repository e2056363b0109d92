// Package notify pushes transient console notifications to websocket
// subscribers.
package notify

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Kind of a notification.
type Kind string

const (
	KindSuccess        Kind = "success"
	KindError          Kind = "error"
	KindInfo           Kind = "info"
	KindSessionExpired Kind = "session_expired"
)

// Notification is one toast.
type Notification struct {
	Kind     Kind      `json:"type"`
	Message  string    `json:"message"`
	Redirect string    `json:"redirect,omitempty"`
	At       time.Time `json:"at"`
}

var now = func() time.Time { return time.Now().UTC() }

// Hub tracks subscriber connections and fans notifications out to them.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscriber]struct{}
	logger      *zap.Logger
}

// NewHub builds an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{subscribers: make(map[*Subscriber]struct{}), logger: logger}
}

// Add registers a subscriber.
func (h *Hub) Add(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[s] = struct{}{}
}

// Remove drops a subscriber.
func (h *Hub) Remove(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, s)
}

// Count returns the number of live subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Publish sends n to every subscriber. Slow subscribers drop messages
// rather than block the publisher.
func (h *Hub) Publish(n Notification) {
	if n.At.IsZero() {
		n.At = now()
	}
	data, err := json.Marshal(n)
	if err != nil {
		h.logger.Error("encode notification", zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subscribers {
		s.Send(data)
	}
}

// Notify publishes a toast of the given kind.
func (h *Hub) Notify(kind Kind, message string) {
	h.Publish(Notification{Kind: kind, Message: message})
}

// SessionExpired tells subscribers to return to the login screen.
func (h *Hub) SessionExpired() {
	h.Publish(Notification{Kind: KindSessionExpired, Message: "Session expired. Please log in again.", Redirect: "/login"})
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]*Subscriber, 0, len(h.subscribers))
	for s := range h.subscribers {
		subs = append(subs, s)
	}
	h.subscribers = make(map[*Subscriber]struct{})
	h.mu.Unlock()
	for _, s := range subs {
		s.Close()
	}
}
