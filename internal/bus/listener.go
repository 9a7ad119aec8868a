package bus

import (
	"context"
	"log"
	"time"

	"agro-telemetry-backend/internal/codec"
	"agro-telemetry-backend/internal/store"
)

// Listener applies decoded bus messages as writes. Failures are terminal per
// message: they are logged and the message is dropped, with no retry, no
// buffering and no backpressure toward the broker.
type Listener struct {
	store store.Store
}

// NewListener creates a listener backed by the given store.
func NewListener(s store.Store) *Listener {
	return &Listener{store: s}
}

// Run subscribes the listener to the telemetry topic pattern. It returns once
// the subscription is registered; message handling continues on the client's
// own goroutines until the process exits.
func (l *Listener) Run(ctx context.Context, client *Client, topic string) error {
	err := client.Subscribe(topic, func(topic string, payload []byte) {
		l.Handle(ctx, topic, payload, time.Now().UTC())
	})
	if err != nil {
		return err
	}
	log.Printf("telemetry listener subscribed to %q", topic)
	return nil
}

// Handle processes one inbound message: decode, append the reading, refresh
// the machine registry. The two writes are independent best-effort.
func (l *Listener) Handle(ctx context.Context, topic string, payload []byte, receivedAt time.Time) {
	reading, err := codec.Decode(topic, payload, receivedAt)
	if err != nil {
		log.Printf("dropping bus message: %v", err)
		return
	}

	if err := l.store.AppendReading(ctx, &reading); err != nil {
		log.Printf("failed to append reading for machine %d: %v", reading.MachineID, err)
	}

	err = l.store.TouchMachine(ctx, reading.MachineID, store.DefaultMachineName(reading.MachineID), reading.TS, "online")
	if err != nil {
		log.Printf("failed to update machine %d: %v", reading.MachineID, err)
	}
}
