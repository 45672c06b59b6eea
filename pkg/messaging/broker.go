package messaging

import (
	"context"
	"encoding/json"
	"fmt"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewMessage encodes payload into a typed message.
func NewMessage(msgType string, payload interface{}) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal %s payload: %w", msgType, err)
	}
	return Message{Type: msgType, Payload: raw}, nil
}

// Decode parses a message received from a Broker subscription.
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return msg, nil
}
