package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
	EventBookingExpired   = "booking_expired"
)

type BookingEvent struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	BookingID       int64     `json:"booking_id"`
	UserID          int64     `json:"user_id"`
	FlightID        int64     `json:"flight_id"`
	Seats           int       `json:"seats"`
	Status          string    `json:"status"`
	TotalPriceCents int64     `json:"total_price_cents"`
	ExpiresAt       time.Time `json:"expires_at"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *domain.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		ID:              uuid.NewString(),
		Type:            eventType,
		BookingID:       b.ID,
		UserID:          b.UserID,
		FlightID:        b.FlightID,
		Seats:           b.SeatCount(),
		Status:          string(b.Status),
		TotalPriceCents: b.TotalPriceCents,
		ExpiresAt:       b.ExpiresAt,
		OccurredAt:      at,
	}
}

// Key partitions events by booking so one booking's events stay ordered.
func (e BookingEvent) Key() string {
	return fmt.Sprintf("booking-%d", e.BookingID)
}

type Producer struct {
	writer *kafka.Writer
	log    *logger.Logger
}

func NewProducer(brokers []string, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: writer, log: log}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.log.Debug("published kafka message", "topic", topic, "key", key)
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
