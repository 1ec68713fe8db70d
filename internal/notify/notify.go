// Package notify tells staff about new bookings, orders and messages.
package notify

import (
	"context"
	"time"
)

const (
	BookingCreated = "booking.created"
	OrderCreated   = "order.created"
	MessageCreated = "message.created"
)

type Event struct {
	Type string `json:"type"`
	At   string `json:"at"`
	Data any    `json:"data"`
}

func NewEvent(typ string, data any) Event {
	return Event{Type: typ, At: time.Now().UTC().Format(time.RFC3339), Data: data}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
