package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaNotifier publishes booking events to a single topic, keyed by
// trip id so events for one trip stay ordered within a partition.
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		MaxAttempts:            5,
		WriteTimeout:           10 * time.Second,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &KafkaNotifier{writer: w}
}

func (n *KafkaNotifier) BookingConfirmed(ctx context.Context, ev BookingEvent) {
	ev.Event = EventBookingConfirmed
	n.publish(ctx, ev)
}

func (n *KafkaNotifier) BookingCancelled(ctx context.Context, ev BookingEvent) {
	ev.Event = EventBookingCancelled
	n.publish(ctx, ev)
}

func (n *KafkaNotifier) publish(ctx context.Context, ev BookingEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[NOTIFY] action=%s booking_id=%s msg=marshal failed: %v", ev.Event, ev.BookingID, err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(ev.TripID),
		Value: payload,
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		// best-effort: the booking transaction already committed
		log.Printf("[NOTIFY] action=%s booking_id=%s msg=publish failed: %v", ev.Event, ev.BookingID, err)
	}
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
