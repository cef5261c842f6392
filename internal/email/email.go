package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/logger"
)

// Sender delivers booking notifications. Delivery is a structured log line
// until a mail provider is wired in.
type Sender struct {
	log *logger.Logger
}

func NewSender(log *logger.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	subject, ok := Subject(event)
	if !ok {
		return nil
	}
	s.log.InfoContext(ctx, "notification sent",
		"user_id", event.UserID,
		"booking_id", event.BookingID,
		"subject", subject,
	)
	return nil
}

// Subject returns the notification subject for an event type; unknown types get none.
func Subject(event kafka.BookingEvent) (string, bool) {
	switch event.Type {
	case kafka.EventBookingCreated:
		return fmt.Sprintf("Booking #%d is on hold until %s", event.BookingID, event.ExpiresAt.Format("15:04 MST")), true
	case kafka.EventBookingConfirmed:
		return fmt.Sprintf("Booking #%d is confirmed", event.BookingID), true
	case kafka.EventBookingCancelled:
		return fmt.Sprintf("Booking #%d was cancelled", event.BookingID), true
	case kafka.EventBookingExpired:
		return fmt.Sprintf("Booking #%d expired before payment", event.BookingID), true
	}
	return "", false
}
