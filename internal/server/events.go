package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// =============================================================================
// Event Hub - Server-Sent Events
// =============================================================================

// Event is a single server-sent message. Version increases per topic so
// clients can detect missed updates after a reconnect.
type Event struct {
	Topic   string `json:"topic"`
	Type    string `json:"type"`
	Data    any    `json:"data,omitempty"`
	Version int64  `json:"version"`
}

// Topics published by the server.
const (
	TopicGraph     = "graph"     // dataset rebuilt (watch mode, filter change)
	TopicHighlight = "highlight" // highlight mode entered or cleared
	TopicLOD       = "lod"       // zoom level applied
)

// Hub fans events out to SSE subscribers. Each topic keeps its latest event
// so a new subscriber immediately learns the current state.
type Hub struct {
	mu      sync.RWMutex
	nextID  int
	subs    map[int]chan Event
	latest  map[string]Event
	version map[string]int64
	closed  bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs:    make(map[int]chan Event),
		latest:  make(map[string]Event),
		version: make(map[string]int64),
	}
}

// Publish sends an event to all subscribers and records it as the topic's
// latest state. Slow subscribers drop events rather than block the server.
func (h *Hub) Publish(topic, eventType string, data any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	h.version[topic]++
	ev := Event{Topic: topic, Type: eventType, Data: data, Version: h.version[topic]}
	h.latest[topic] = ev

	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a new subscriber and replays the latest event of every
// topic. The returned cancel function must be called when the subscriber is
// done.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	ch := make(chan Event, 16)
	for _, ev := range h.latest {
		ch <- ev
	}
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Close shuts the hub down and disconnects all subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// SubscriberCount reports the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// WriteSSE writes one event in Server-Sent Events wire format and flushes.
func WriteSSE(w http.ResponseWriter, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
