package amqp

import (
	"testing"
	"time"
)

func TestChangeMessageJSONRoundTrip(t *testing.T) {
	msg := NewChangeMessage("debts", "create", "3f8c2c1e-outbox-id")

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error: %v", err)
	}

	back, err := ChangeMessageFromJSON(body)
	if err != nil {
		t.Fatalf("ChangeMessageFromJSON() error: %v", err)
	}

	if back.Entity != "debts" || back.Op != "create" || back.OutboxID != "3f8c2c1e-outbox-id" {
		t.Errorf("round trip lost fields: %+v", back)
	}
	if back.Timestamp.IsZero() || time.Since(back.Timestamp) > time.Minute {
		t.Errorf("unexpected timestamp: %v", back.Timestamp)
	}
}

func TestChangeMessageFromJSONInvalid(t *testing.T) {
	if _, err := ChangeMessageFromJSON([]byte(`{not json`)); err == nil {
		t.Error("invalid JSON should fail")
	}
}
