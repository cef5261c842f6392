package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
	log    *logger.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *logger.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// ConsumeBookingEvents decodes each message and hands it to handler until ctx
// is cancelled. Undecodable messages are logged and skipped.
func (c *Consumer) ConsumeBookingEvents(ctx context.Context, handler func(context.Context, BookingEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		event, ok := DecodeBookingEvent(msg.Value)
		if !ok {
			c.log.Warn("skipping undecodable booking event", "topic", msg.Topic, "offset", msg.Offset)
			continue
		}
		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

func DecodeBookingEvent(data []byte) (BookingEvent, bool) {
	var event BookingEvent
	if err := json.Unmarshal(data, &event); err != nil || event.Type == "" {
		return BookingEvent{}, false
	}
	return event, true
}
