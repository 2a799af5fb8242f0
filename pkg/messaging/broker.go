package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Channels fanned out by the queue core.
const (
	ChannelVisitChanged = "queue.visit_changed"
	ChannelNewCall      = "display.new_call"
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
