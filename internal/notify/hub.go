// Package notify is the best-effort realtime channel: per-note event
// fan-out with no delivery guarantee, surfaced over SSE.
package notify

import (
	"sync"
)

// Event is one realtime notification for a note.
type Event struct {
	Type   string `json:"type"`
	NoteID string `json:"noteId"`
}

// Hub fans events out to per-note subscribers. Publishing never blocks:
// a subscriber with a full buffer misses the event (fire-and-forget, same
// guarantee as the socket transport it replaces).
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers interest in a note's events. The returned cancel
// function must be called to release the subscription.
func (h *Hub) Subscribe(noteID string) (<-chan Event, func()) {
	ch := make(chan Event, 4)

	h.mu.Lock()
	if h.subs[noteID] == nil {
		h.subs[noteID] = make(map[chan Event]struct{})
	}
	h.subs[noteID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[noteID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, noteID)
			}
		}
		h.mu.Unlock()
	}

	return ch, cancel
}

// Publish delivers the event to current subscribers without blocking.
func (h *Hub) Publish(noteID, event string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[noteID] {
		select {
		case ch <- Event{Type: event, NoteID: noteID}:
		default:
			// slow subscriber; drop
		}
	}
}
