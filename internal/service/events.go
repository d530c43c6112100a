package service

import "sync"

// EventType defines the type of event
type EventType string

const (
	EventNetworksLoaded     EventType = "networks_loaded"
	EventInventoryReloaded  EventType = "inventory_reloaded"
	EventTopologyClassified EventType = "topology_classified"
	EventAnomaliesDetected  EventType = "anomalies_detected"
	EventNetworkRemoved     EventType = "network_removed"
)

// Event represents an event that occurred in the system
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Name is the SSE event name
func (e Event) Name() string {
	return string(e.Type)
}

// AnomalyReport is the payload of EventAnomaliesDetected
type AnomalyReport struct {
	Network   string   `json:"network"`
	Reasons   []string `json:"reasons"`
	Anomalies []string `json:"anomalies"`
}

// EventBus allows publishing and subscribing to events.
// It is safe for concurrent use.
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Unsubscribe removes a subscriber; the channel is not closed
func (eb *EventBus) Unsubscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for i, sub := range eb.subscribers {
		if sub == ch {
			eb.subscribers = append(eb.subscribers[:i:i], eb.subscribers[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
