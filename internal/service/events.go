package service

// EventType names a run lifecycle event
type EventType string

const (
	EventCollectStarted   EventType = "collect_started"
	EventSnapshotTaken    EventType = "snapshot_taken"
	EventCollectFailed    EventType = "collect_failed"
	EventInventoryChanged EventType = "inventory_changed"
)

// Event is published at each stage of a collection run
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventName is used as the SSE event field
func (e Event) EventName() string {
	return string(e.Type)
}

// Publisher delivers events to subscribers. Publishing never blocks.
type Publisher interface {
	Broadcast(event interface{})
}

type nopPublisher struct{}

func (nopPublisher) Broadcast(interface{}) {}
