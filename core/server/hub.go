package server

import (
	"sync"

	"github.com/tristendillon/depcheck/core/logger"
	"github.com/tristendillon/depcheck/core/models"
)

// Hub fans report payloads out to live subscribers.
type Hub struct {
	mutex       sync.Mutex
	subscribers map[chan models.ReportPayload]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[chan models.ReportPayload]struct{})}
}

// Subscribe registers a listener. The returned func unregisters it and must
// be called once the listener is done.
func (h *Hub) Subscribe() (<-chan models.ReportPayload, func()) {
	ch := make(chan models.ReportPayload, 4)

	h.mutex.Lock()
	h.subscribers[ch] = struct{}{}
	h.mutex.Unlock()

	return ch, func() {
		h.mutex.Lock()
		defer h.mutex.Unlock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
	}
}

// Broadcast never blocks. A subscriber that is too slow misses the update.
func (h *Hub) Broadcast(payload models.ReportPayload) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for ch := range h.subscribers {
		select {
		case ch <- payload:
		default:
			logger.Debug("Dropping live update for slow subscriber")
		}
	}
}

func (h *Hub) Len() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.subscribers)
}
