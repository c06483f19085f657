package eeg

import (
	"log/slog"
	"sync"
)

// Hub fans posted readings out to every live subscriber. A subscriber
// that falls behind loses messages rather than blocking the publisher.
type Hub struct {
	mu      sync.Mutex
	clients map[chan []byte]struct{}
	buffer  int
	closed  bool
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{clients: map[chan []byte]struct{}{}, buffer: buffer}
}

// Subscribe returns a message channel and the func that releases it. The
// channel is closed on release or when the hub closes.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, h.buffer)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
	}
}

// Close ends every subscription so open streams return.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
}

// Publish delivers msg to every subscriber and returns how many got it.
func (h *Hub) Publish(msg []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	delivered := 0
	for ch := range h.clients {
		select {
		case ch <- msg:
			delivered++
		default:
			slog.Debug("muse subscriber behind, dropping message")
		}
	}
	return delivered
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
