// Package events publishes engine lifecycle events over NATS. Delivery to
// end users (push, mail fan-out) is the subscribers' concern; the engine
// only states what happened.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

const (
	SubjectReservationCreated   = "playvenue.reservation.created"
	SubjectReservationCancelled = "playvenue.reservation.cancelled"
	SubjectWaitlistPromoted     = "playvenue.waitlist.promoted"
)

// ReservationEvent is the payload for reservation lifecycle subjects.
type ReservationEvent struct {
	ReservationID string `json:"reservation_id"`
	ResourceID    string `json:"resource_id"`
	FacilityID    string `json:"facility_id"`
	RequesterID   string `json:"requester_id"`
	Date          string `json:"date"`
	StartMin      int    `json:"start_min"`
	EndMin        int    `json:"end_min"`
	ContactEmail  string `json:"contact_email,omitempty"`
}

// WaitlistEvent is the payload for waitlist promotion.
type WaitlistEvent struct {
	EntryID      string `json:"entry_id"`
	ResourceID   string `json:"resource_id"`
	RequesterID  string `json:"requester_id"`
	Date         string `json:"date"`
	StartMin     int    `json:"start_min"`
	EndMin       int    `json:"end_min"`
	ContactEmail string `json:"contact_email,omitempty"`
}

// Publisher wraps a NATS connection. A nil Publisher is a no-op, so services
// stay testable without a broker.
type Publisher struct {
	nc *nats.Conn
}

func NewPublisher(nc *nats.Conn) *Publisher {
	return &Publisher{nc: nc}
}

// Publish sends payload as JSON on subject.id. Publish failures are logged
// and swallowed: eventing is best-effort and never fails a booking write.
func (p *Publisher) Publish(ctx context.Context, subject, id string, payload any) {
	if p == nil || p.nc == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("events: marshal failed", "subject", subject, "err", err)
		return
	}
	if err := p.nc.Publish(fmt.Sprintf("%s.%s", subject, id), data); err != nil {
		slog.Warn("events: publish failed", "subject", subject, "id", id, "err", err)
	}
}
