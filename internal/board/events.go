package board

import (
	"sync"

	"go.uber.org/zap"
)

type EventType string

const (
	EventLoading        EventType = "loading"
	EventLoaded         EventType = "loaded"
	EventOrderChanged   EventType = "order_changed"
	EventExpenseChanged EventType = "expense_changed"
	EventCustomerAdded  EventType = "customer_added"
	EventVendorAdded    EventType = "vendor_added"
	EventMetrics        EventType = "metrics"
	EventModal          EventType = "modal"
	EventDrag           EventType = "drag"
	EventWorkflowTab    EventType = "workflow_tab"
	EventError          EventType = "error"
)

// Event tells subscribers which part of the state changed.
type Event struct {
	Type EventType `json:"event"`
	ID   string    `json:"id,omitempty"`
}

// Hub fans store events out to subscribers. Sends never block: a subscriber
// whose buffer is full misses the event.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextID      int
	buffer      int
	log         *zap.Logger
}

func NewHub(buffer int, log *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = 1
	}
	return &Hub{
		subscribers: make(map[int]chan Event),
		buffer:      buffer,
		log:         log,
	}
}

// Subscribe registers a listener. The returned cancel func closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Event, h.buffer)
	h.subscribers[id] = ch
	h.log.Debug("Subscriber registered", zap.Int("subscriber", id), zap.Int("total", len(h.subscribers)))

	var once sync.Once
	return ch, func() {
		once.Do(func() { h.unsubscribe(id) })
	}
}

func (h *Hub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subscribers[id]; ok {
		close(ch)
		delete(h.subscribers, id)
		h.log.Debug("Subscriber removed", zap.Int("subscriber", id), zap.Int("total", len(h.subscribers)))
	}
}

func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			h.log.Warn("Subscriber buffer full, dropping event",
				zap.Int("subscriber", id), zap.String("event", string(event.Type)))
		}
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
