package amqp

import (
	"encoding/json"
	"time"
)

// ChangeMessage tells the sync worker that an entity changed locally.
// It carries only identifiers; the worker reads the full payload from the
// outbox.
type ChangeMessage struct {
	Entity    string    `json:"entity"`
	Op        string    `json:"op"`
	OutboxID  string    `json:"outboxId"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage creates a change notification for an outbox entry.
func NewChangeMessage(entity, op, outboxID string) *ChangeMessage {
	return &ChangeMessage{
		Entity:    entity,
		Op:        op,
		OutboxID:  outboxID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
